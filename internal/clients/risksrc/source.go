// Package risksrc defines the hazard-source boundary. Each source delivers
// records already normalized to risk.Point; field-level parsing of raw feeds
// happens upstream of this engine.
package risksrc

import (
	"context"

	"github.com/dpup/lanewatch/internal/lib/risk"
)

// Source is one independent hazard feed. Fetch must honor ctx cancellation
// so a slow source can be abandoned without leaking its connection.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]risk.Point, error)
}

package config

import (
	"time"

	"github.com/dpup/lanewatch/internal/lib/legs"
)

// Config represents the complete server configuration.
type Config struct {
	LandRouter LandRouterConfig `yaml:"land_router"`
	Ports      PortsConfig      `yaml:"ports"`
	Risks      RisksConfig      `yaml:"risks"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

// LandRouterConfig holds the external road/rail routing provider settings.
type LandRouterConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PortsConfig holds port lookup settings. With UseStatic set (or no base
// URL), the bundled static table resolves ports instead of the live service.
type PortsConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UseStatic bool          `yaml:"use_static"`
	Timeout   time.Duration `yaml:"timeout"`
}

// RisksConfig holds hazard aggregation settings.
type RisksConfig struct {
	Sources         []SourceConfig `yaml:"sources"`
	SourceTimeout   time.Duration  `yaml:"source_timeout"`
	CacheTTL        time.Duration  `yaml:"cache_ttl"`
	BaseThresholdKm float64        `yaml:"base_threshold_km"`
}

// SourceConfig describes one hazard feed endpoint.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// MonitorConfig drives the periodic warm-up of the cached counters for a
// configured set of routes, keeping responses fresh between client calls.
type MonitorConfig struct {
	Enabled     bool             `yaml:"enabled"`
	UserID      string           `yaml:"user_id"`
	ThresholdKm float64          `yaml:"threshold_km"`
	Interval    time.Duration    `yaml:"interval"`
	Routes      []MonitoredRoute `yaml:"routes"`
}

// MonitoredRoute is one shipment monitored from configuration.
type MonitoredRoute struct {
	Name      string           `yaml:"name"`
	GoodsType string           `yaml:"goods_type"`
	Stages    []MonitoredStage `yaml:"stages"`
}

// MonitoredStage is one transport leg of a monitored shipment.
type MonitoredStage struct {
	Mode        string       `yaml:"mode"`
	Source      LocationYAML `yaml:"source"`
	Destination LocationYAML `yaml:"destination"`
}

// LocationYAML represents a named coordinate in YAML config.
type LocationYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Code      string  `yaml:"code"`
}

// ToLocation converts a LocationYAML to the shipment model.
func (l LocationYAML) ToLocation() legs.Location {
	return legs.Location{
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Code:      l.Code,
	}
}

// ToRoute converts a MonitoredRoute to the shipment model.
func (m MonitoredRoute) ToRoute() legs.ShippingRoute {
	route := legs.ShippingRoute{
		Name:      m.Name,
		GoodsType: m.GoodsType,
	}
	for _, stage := range m.Stages {
		route.Stages = append(route.Stages, legs.Stage{
			Transport: &legs.Transport{
				Source:      stage.Source.ToLocation(),
				Destination: stage.Destination.ToLocation(),
				Mode:        legs.Mode(stage.Mode),
			},
		})
	}
	route.EnsureID()
	return route
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		LandRouter: LandRouterConfig{
			Timeout: 30 * time.Second,
		},
		Ports: PortsConfig{
			UseStatic: true,
			Timeout:   30 * time.Second,
		},
		Risks: RisksConfig{
			SourceTimeout:   3 * time.Second,
			CacheTTL:        60 * time.Second,
			BaseThresholdKm: 50,
		},
		Monitor: MonitorConfig{
			Enabled:     false,
			UserID:      "monitor",
			ThresholdKm: 50,
			Interval:    time.Minute,
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/dpup/prefab"

	"github.com/dpup/lanewatch/internal/cache"
	"github.com/dpup/lanewatch/internal/clients/landrouter"
	"github.com/dpup/lanewatch/internal/clients/ports"
	"github.com/dpup/lanewatch/internal/clients/risksrc"
	"github.com/dpup/lanewatch/internal/config"
	"github.com/dpup/lanewatch/internal/lib/geo"
	"github.com/dpup/lanewatch/internal/lib/legs"
	"github.com/dpup/lanewatch/internal/lib/risk"
	"github.com/dpup/lanewatch/internal/seanet"
	"github.com/dpup/lanewatch/internal/services"
)

func main() {
	appConfig := loadConfig()

	// The lane network is the one thing that must load cleanly; every
	// sea-route call depends on it.
	network, err := seanet.LoadDefaultNetwork()
	if err != nil {
		log.Fatalf("Failed to load sea-lane network: %v", err)
	}
	log.Printf("Sea-lane network loaded: %d segments, %d vertices", network.SegmentCount(), network.VertexCount())

	resultCache := cache.New()
	resultCache.StartPeriodicCleanup(context.Background(), 5*appConfig.Risks.CacheTTL)

	seaRouteService := services.NewSeaRouteService(network)

	var landRouter legs.LandRouter
	if appConfig.LandRouter.BaseURL != "" {
		landRouter = landrouter.NewClient(appConfig.LandRouter.BaseURL, appConfig.LandRouter.Timeout)
	} else {
		log.Printf("No land router configured; road and rail legs fall back to straight lines")
	}

	var portLookup legs.PortLookup
	if appConfig.Ports.UseStatic || appConfig.Ports.BaseURL == "" {
		portLookup = ports.NewStaticLookup()
	} else {
		portLookup = ports.NewClient(appConfig.Ports.BaseURL, appConfig.Ports.Timeout)
	}

	extractor := legs.NewExtractor(landRouter, seaRouteService, portLookup)
	correlator := risk.NewCorrelator(extractor)

	sources := make([]risksrc.Source, 0, len(appConfig.Risks.Sources))
	for _, sc := range appConfig.Risks.Sources {
		sources = append(sources, risksrc.NewHTTPSource(sc.Name, sc.URL))
	}

	risksService := services.NewRisksService(sources, correlator, resultCache,
		appConfig.Risks.SourceTimeout, appConfig.Risks.CacheTTL)

	refresh := services.NewPeriodicRefreshService(risksService, appConfig.Monitor)
	refresh.Start(context.Background())

	log.Printf("lanewatch starting: %d hazard sources, base threshold %.0fkm",
		len(sources), appConfig.Risks.BaseThresholdKm)

	h := &handlers{
		seaRoutes: seaRouteService,
		risks:     risksService,
		extractor: extractor,
		threshold: appConfig.Risks.BaseThresholdKm,
	}

	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/api/v1/searoute", h.seaRoute),
		prefab.WithHTTPHandlerFunc("/api/v1/routes/correlate", h.correlate),
		prefab.WithHTTPHandlerFunc("/api/v1/risks/nearby", h.countNearby),
		prefab.WithHTTPHandlerFunc("/api/v1/risks/routes-at-risk", h.countRoutesAtRisk),
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration through Prefab's config system, layered
// over the compiled-in defaults.
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	if err := prefab.Config.Unmarshal("landRouter", &appConfig.LandRouter); err != nil {
		log.Fatalf("Failed to unmarshal landRouter section: %v", err)
	}
	if err := prefab.Config.Unmarshal("ports", &appConfig.Ports); err != nil {
		log.Fatalf("Failed to unmarshal ports section: %v", err)
	}
	if err := prefab.Config.Unmarshal("risks", &appConfig.Risks); err != nil {
		log.Fatalf("Failed to unmarshal risks section: %v", err)
	}
	if err := prefab.Config.Unmarshal("monitor", &appConfig.Monitor); err != nil {
		log.Fatalf("Failed to unmarshal monitor section: %v", err)
	}

	return appConfig
}

type handlers struct {
	seaRoutes *services.SeaRouteService
	risks     *services.RisksService
	extractor *legs.Extractor
	threshold float64
}

// seaRoute computes a maritime route between two coordinate pairs. The JSON
// response carries coordinates in [lon,lat] order, the GeoJSON convention
// mapping clients expect; the conversion happens only here at the boundary.
func (h *handlers) seaRoute(w http.ResponseWriter, r *http.Request) {
	origin, err1 := queryPosition(r, "from_lat", "from_lng")
	destination, err2 := queryPosition(r, "to_lat", "to_lng")
	if err1 != nil || err2 != nil {
		http.Error(w, "from_lat, from_lng, to_lat, to_lng are required", http.StatusBadRequest)
		return
	}

	result, err := h.seaRoutes.ComputeSeaRoute(r.Context(), origin, destination)
	if errors.Is(err, seanet.ErrNoRoute) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"found": false})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	coordinates := make([][2]float64, len(result.Points))
	for i, p := range result.Points {
		coordinates[i] = [2]float64{p.Longitude, p.Latitude}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"found":       true,
		"coordinates": coordinates,
		"length":      result.LengthNauticalMile,
		"length_unit": result.LengthUnit,
	})
}

// correlateRequest is the body for the correlate and counter endpoints.
type correlateRequest struct {
	UserID      string               `json:"user_id"`
	ThresholdKm float64              `json:"threshold_km"`
	Route       *legs.ShippingRoute  `json:"route,omitempty"`
	Routes      []legs.ShippingRoute `json:"routes,omitempty"`
}

func (h *handlers) correlate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Route == nil {
		http.Error(w, "route is required", http.StatusBadRequest)
		return
	}
	req.Route.EnsureID()

	allRisks := h.risks.FetchAllRisks(r.Context())
	matches, err := h.risks.CorrelateRouteRisks(r.Context(), *req.Route, allRisks, h.thresholdOr(req.ThresholdKm))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"route_id": req.Route.ID,
		"risks":    matches,
		"gaps":     h.extractor.StageGaps(*req.Route),
	})
}

func (h *handlers) countNearby(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.risks.CountNearbyRisks)
}

func (h *handlers) countRoutesAtRisk(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.risks.CountRoutesAtRisk)
}

func (h *handlers) counter(w http.ResponseWriter, r *http.Request,
	count func(context.Context, string, []legs.ShippingRoute, float64) (int, error)) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	value, err := count(r.Context(), req.UserID, req.Routes, h.thresholdOr(req.ThresholdKm))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": value})
}

func (h *handlers) decodeRequest(w http.ResponseWriter, r *http.Request) (*correlateRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	var req correlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (h *handlers) thresholdOr(km float64) float64 {
	if km > 0 {
		return km
	}
	return h.threshold
}

func queryPosition(r *http.Request, latKey, lngKey string) (geo.Position, error) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get(latKey), 64)
	if err != nil {
		return geo.Position{}, err
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get(lngKey), 64)
	if err != nil {
		return geo.Position{}, err
	}
	return geo.NewPosition(lat, lng)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/stablecore/sce/internal/engine"
	"github.com/stablecore/sce/internal/logger"
	"github.com/stablecore/sce/internal/types"
	"github.com/stablecore/sce/internal/utils"
)

var webLogger = logger.GetForComponent("web_server")

// EventReader exposes recorded engine events for the API.
type EventReader interface {
	RecentEvents(limit int) ([]types.EventRecord, error)
	EventsForParticipant(participant string, limit int) ([]types.EventRecord, error)
}

// WebServer handles HTTP requests for engine data
type WebServer struct {
	router *mux.Router
	port   string
	engine *engine.Engine
	events EventReader
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, eng *engine.Engine, events EventReader) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		engine: eng,
		events: events,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/assets", ws.handleGetAssets).Methods("GET")
	api.HandleFunc("/accounts", ws.handleGetAccounts).Methods("GET")
	api.HandleFunc("/accounts/{participant}", ws.handleGetAccount).Methods("GET")
	api.HandleFunc("/events", ws.handleGetEvents).Methods("GET")
	api.HandleFunc("/events/{participant}", ws.handleGetParticipantEvents).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":            runtime.Version(),
			"goroutines_count":   runtime.NumGoroutine(),
			"total_alloc_bytes":  memStats.TotalAlloc,
			"heap_objects_count": memStats.HeapObjects,
			"alloc_bytes":        memStats.Alloc,
			"sys_bytes":          memStats.Sys,
			"gc_cycles":          memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "sce-synthetic-collateral-engine",
			"version": "1.0.0",
		},
		"engine_status": map[string]interface{}{
			"approved_assets":    ws.engine.ListApprovedAssets(),
			"participants_count": len(ws.engine.Participants()),
		},
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAssets returns the approved collateral assets
func (ws *WebServer) handleGetAssets(w http.ResponseWriter, r *http.Request) {
	assets := ws.engine.ListApprovedAssets()
	response := map[string]interface{}{
		"assets": assets,
		"count":  len(assets),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAccounts returns every participant the ledger has seen
func (ws *WebServer) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	participants := ws.engine.Participants()
	response := map[string]interface{}{
		"participants": participants,
		"count":        len(participants),
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAccount returns a participant's position, valuation and health factor
func (ws *WebServer) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	participant := vars["participant"]

	info, err := ws.engine.AccountInfo(r.Context(), participant)
	if err != nil {
		webLogger.Error().Err(err).Str("participant", participant).Msg("Failed to get account info")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve account info")
		return
	}

	healthFactor, err := ws.engine.HealthFactor(r.Context(), participant)
	if err != nil {
		webLogger.Error().Err(err).Str("participant", participant).Msg("Failed to get health factor")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve health factor")
		return
	}

	position := ws.engine.Position(participant)
	collateral := make(map[string]string, len(position.Collateral))
	for asset, amount := range position.Collateral {
		collateral[asset] = amount.String()
	}

	response := map[string]interface{}{
		"participant":          participant,
		"debt":                 info.Debt.String(),
		"collateral_value_usd": info.CollateralValueUSD.String(),
		"collateral":           collateral,
		"health_factor":        healthFactor.String(),
	}

	// A position with no debt reports the sentinel maximum; skip the float
	// rendering there since it does not fit a float64.
	if healthFactor.Equal(types.MaxHealthFactor) {
		response["health_factor_display"] = "inf"
	} else if hf, convErr := utils.SDKIntToFloat64(healthFactor, 18); convErr == nil {
		response["health_factor_display"] = hf
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetEvents returns recent engine events
func (ws *WebServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	events, err := ws.events.RecentEvents(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"events": events,
		"count":  len(events),
		"limit":  limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetParticipantEvents returns recent events touching a participant
func (ws *WebServer) handleGetParticipantEvents(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	participant := vars["participant"]
	limit := parseLimit(r, 20)

	events, err := ws.events.EventsForParticipant(participant, limit)
	if err != nil {
		webLogger.Error().Err(err).Str("participant", participant).Msg("Failed to get participant events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"participant": participant,
		"events":      events,
		"count":       len(events),
		"limit":       limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func parseLimit(r *http.Request, fallback int) int {
	limit := fallback
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	return limit
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

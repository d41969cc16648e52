package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/walksafe/server/internal/config"
	"github.com/walksafe/server/internal/lib/geo"
	"github.com/walksafe/server/internal/lib/kmlout"
	"github.com/walksafe/server/internal/lib/route"
	"github.com/walksafe/server/internal/lib/scoring"
	"github.com/walksafe/server/internal/services"
)

// handlers holds the HTTP endpoints backed by the safety service
type handlers struct {
	safety *services.SafetyService
}

func newHandlers(safety *services.SafetyService) *handlers {
	return &handlers{safety: safety}
}

// scoreRouteRequest is the body for POST /api/v1/safety/score
type scoreRouteRequest struct {
	Route struct {
		ID     string      `json:"id"`
		Points []geo.Point `json:"points"`
	} `json:"route"`
}

// rankRoutesRequest is the body for POST /api/v1/safety/rank
type rankRoutesRequest struct {
	Start geo.Point `json:"start"`
	End   geo.Point `json:"end"`
}

// scoreRoute scores a caller-supplied route. With ?format=kml the response
// is a KML document instead of JSON.
func (h *handlers) scoreRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req scoreRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	points, err := validatePoints(req.Route.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := req.Route.ID
	if id == "" {
		id = "route"
	}

	resp, err := h.safety.ScoreRoute(r.Context(), route.Route{ID: id, Points: points}, time.Now())
	if err != nil {
		log.Printf("ScoreRoute failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "kml" {
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		entry := scoring.RankedRoute{Route: resp.Route, Score: resp.Score}
		if err := kmlout.Write(w, entry); err != nil {
			log.Printf("Failed to write KML response: %v", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// rankRoutes plans walking routes between two points and returns them
// ordered safest-first.
func (h *handlers) rankRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req rankRoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if _, err := validatePoints([]geo.Point{req.Start, req.End}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.safety.RankRoutes(r.Context(), req.Start, req.End, time.Now())
	if err != nil {
		log.Printf("RankRoutes failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// listAreas returns the configured monitored areas
func (h *handlers) listAreas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Areas []config.MonitoredArea `json:"areas"`
	}{Areas: h.safety.Areas()})
}

// validatePoints rejects coordinates outside valid ranges
func validatePoints(points []geo.Point) ([]geo.Point, error) {
	validated := make([]geo.Point, 0, len(points))
	for i, p := range points {
		point, err := geo.NewPoint(p.Latitude, p.Longitude)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		validated = append(validated, point)
	}
	return validated, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

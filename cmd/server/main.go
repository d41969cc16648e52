package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/dpup/prefab"

	"github.com/walksafe/server/internal/cache"
	"github.com/walksafe/server/internal/clients/crimedata"
	"github.com/walksafe/server/internal/clients/osrm"
	"github.com/walksafe/server/internal/clients/overpass"
	"github.com/walksafe/server/internal/config"
	"github.com/walksafe/server/internal/services"
)

func main() {
	// Load configuration using Prefab's config system
	appConfig := loadConfig()

	// Initialize cache
	cacheInstance := cache.New()
	featureStore := cache.NewFeatureStore(cacheInstance)

	// Initialize external clients
	overpassClient := overpass.NewClient(appConfig.Overpass.Endpoint, appConfig.Overpass.Timeout)
	osrmClient := osrm.NewClient(appConfig.Routing.BaseURL)
	crimeLoader := crimedata.NewLoader(appConfig.CrimeData.Path)

	safetyService := services.NewSafetyService(overpassClient, osrmClient, crimeLoader, featureStore, appConfig)

	log.Printf("Walk safety API server starting")
	log.Printf("Monitored areas: %d", len(appConfig.Areas))
	log.Printf("Crime data: %s", appConfig.CrimeData.Path)

	ctx := context.Background()
	cacheInstance.StartPeriodicCleanup(ctx, time.Hour)

	// Keep monitored area features warm so interactive requests hit cache
	periodicRefresh := services.NewPeriodicRefreshService(safetyService, appConfig)
	if err := periodicRefresh.Start(ctx); err != nil {
		log.Printf("Failed to start periodic refresh: %v", err)
	}

	// Create Prefab server with JSON handlers
	// Server configuration (port, etc.) is loaded from prefab.yaml/env vars
	h := newHandlers(safetyService)
	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandlerFunc("/api/v1/safety/score", h.scoreRoute),
		prefab.WithHTTPHandlerFunc("/api/v1/safety/rank", h.rankRoutes),
		prefab.WithHTTPHandlerFunc("/api/v1/areas", h.listAreas),
	)

	// Start the server (blocks until shutdown)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration using Prefab's config system, layering
// prefab.yaml and PF__-prefixed environment variables over the defaults.
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	sections := map[string]interface{}{
		"overpass":   &appConfig.Overpass,
		"routing":    &appConfig.Routing,
		"crime_data": &appConfig.CrimeData,
		"scoring":    &appConfig.Scoring,
		"areas":      &appConfig.Areas,
	}
	for key, target := range sections {
		if err := prefab.Config.Unmarshal(key, target); err != nil {
			log.Fatalf("Failed to unmarshal %s config section: %v", key, err)
		}
	}

	return appConfig
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>walksafe</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #000;
            color: #0f0;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
    </style>
</head>
<body>
<pre>
<span class="header">walksafe</span>

Pedestrian route safety API: scores walking routes by street lighting,
historical crime incidents, and police station proximity.

<span class="header">API Endpoints:</span>

  POST /api/v1/safety/score   - Score a single route (add ?format=kml for KML)
  POST /api/v1/safety/rank    - Plan and rank walking routes between two points
  <a href="/api/v1/areas">GET  /api/v1/areas</a>          - List monitored areas

<span class="header">Data Sources:</span>
  • OpenStreetMap Overpass API  - Street lamps and police stations
  • OSRM                        - Pedestrian routing with alternatives
  • Crime incident CSV extract  - Historical incident records

<span class="header">Example Usage:</span>
  curl -X POST /api/v1/safety/rank -d '{"start":{"lat":-33.8731,"lng":151.2065},"end":{"lat":-33.8830,"lng":151.2167}}'
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}

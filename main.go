package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
)

type RouteRequest struct {
	Start Point `json:"start"`
	Goal  Point `json:"goal"`
}

type RouteResponse struct {
	Path    []Point `json:"path"`
	Edges   []int   `json:"edges,omitempty"`
	Length  float64 `json:"length,omitempty"`
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
}

type SnapRequest struct {
	Position  Point   `json:"position"`
	Proximity float64 `json:"proximity,omitempty"`
}

type LoadMeshRequest struct {
	File      string     `json:"file,omitempty"`
	Format    string     `json:"format,omitempty"` // "json" (default) or "geojson"
	Triangles [][3]Point `json:"triangles,omitempty"`
	Force     bool       `json:"force,omitempty"`
}

var (
	globalNavmesh *Navmesh
	globalStatic  *StaticGeometry
	meshMutex     sync.RWMutex
	serverConfig  Config
)

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.3f, %.3f, %.3f)\n", req.Start.X, req.Start.Y, req.Start.Z)
	log.Printf("   Goal:  (%.3f, %.3f, %.3f)\n", req.Goal.X, req.Goal.Y, req.Goal.Z)

	meshMutex.RLock()
	mesh := globalNavmesh
	meshMutex.RUnlock()

	if mesh == nil {
		log.Println("❌ Navmesh not available")
		http.Error(w, "Navmesh not loaded. Call /loadMesh first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	log.Println("🔍 Running A* on edge graph...")
	finder := &Pathfinder{Mesh: mesh, MaxExpansions: serverConfig.MaxExpansions}

	meshMutex.RLock()
	path, err := finder.RequestPath(req.Start, req.Goal)
	meshMutex.RUnlock()

	response := RouteResponse{Success: err == nil}
	switch {
	case err == nil:
		response.Path = path.Points
		response.Edges = path.Edges
		response.Length = path.Length
		log.Printf("✅ Path found with %d waypoints (%d edge crossings)\n", len(path.Points), len(path.Edges))
		log.Printf("   Length: %.2f\n", path.Length)
	case errors.Is(err, ErrInvalidPosition):
		log.Printf("❌ Invalid position: %v\n", err)
		response.Message = "Invalid start or goal position"
	case errors.Is(err, ErrNoTriangleFound):
		log.Println("❌ No triangle found (empty navmesh?)")
		response.Message = "No triangle found near start or goal"
	case errors.Is(err, ErrSearchBudgetExceeded):
		log.Println("❌ Search budget exceeded")
		response.Message = "Search budget exceeded"
	default:
		log.Println("❌ No path found")
		response.Message = "No path found between start and goal"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
	log.Println("========================================")
}

// POST /snap - Snap a position onto the nearest mesh or static feature
func snapHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SnapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Proximity <= 0 {
		req.Proximity = serverConfig.SnapProximity
	}

	meshMutex.RLock()
	mesh := globalNavmesh
	static := globalStatic
	meshMutex.RUnlock()

	if mesh == nil {
		http.Error(w, "Navmesh not loaded. Call /loadMesh first", http.StatusBadRequest)
		return
	}

	meshMutex.RLock()
	var provider NearestPointProvider
	if static != nil {
		provider = static
	}
	snapped := SnapPosition(mesh, provider, req.Position, req.Proximity)
	meshMutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"position": snapped,
	})
}

// POST /loadMesh - Load or replace the navmesh from a file or inline triangles
func loadMeshHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Load mesh request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoadMeshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	meshMutex.RLock()
	alreadyLoaded := globalNavmesh != nil
	meshMutex.RUnlock()

	if alreadyLoaded && !req.Force {
		log.Println("⚠️  Navmesh already loaded")
		log.Println("   To replace it, set force:true in the request")
		log.Println("========================================")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Navmesh already loaded",
			"message": "A mesh is already loaded. Set 'force: true' to replace it.",
		})
		return
	}

	var (
		mesh *Navmesh
		err  error
	)
	switch {
	case len(req.Triangles) > 0:
		mesh = NewNavmesh()
		skipped := 0
		for _, corners := range req.Triangles {
			if _, addErr := mesh.AddTriangle(corners[0], corners[1], corners[2]); addErr != nil {
				log.Printf("⚠️  Skipping triangle: %v\n", addErr)
				skipped++
			}
		}
		log.Printf("   Inline triangles: %d accepted, %d skipped\n", mesh.NumTriangles(), skipped)
	case req.Format == "geojson":
		mesh, err = LoadNavmeshGeoJSON(req.File)
	default:
		mesh, err = LoadNavmesh(req.File)
	}

	if err != nil {
		log.Printf("❌ Failed to load mesh: %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	meshMutex.Lock()
	globalNavmesh = mesh
	meshMutex.Unlock()

	log.Printf("✅ Navmesh loaded: %d triangles, %d edges\n", mesh.NumTriangles(), mesh.NumEdges())
	log.Println("========================================")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":      true,
		"numTriangles": mesh.NumTriangles(),
		"numEdges":     mesh.NumEdges(),
	})
}

// GET /getMeshLines - Get mesh edges as line strings for visualization
func getMeshLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	meshMutex.RLock()
	defer meshMutex.RUnlock()

	if globalNavmesh == nil {
		http.Error(w, "Navmesh not loaded. Call /loadMesh first", http.StatusBadRequest)
		return
	}

	lines := globalNavmesh.EdgeLines()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numEdges": len(lines),
	})
}

// GET /queryRegion - Triangles intersecting an axis-aligned box
func queryRegionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parse := func(key string) float64 {
		v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
		return v
	}
	min := Point{X: parse("minX"), Y: parse("minY"), Z: parse("minZ")}
	max := Point{X: parse("maxX"), Y: parse("maxY"), Z: parse("maxZ")}

	meshMutex.RLock()
	defer meshMutex.RUnlock()

	if globalNavmesh == nil {
		http.Error(w, "Navmesh not loaded. Call /loadMesh first", http.StatusBadRequest)
		return
	}

	type regionTriangle struct {
		ID      int      `json:"id"`
		Corners [3]Point `json:"corners"`
	}
	var triangles []regionTriangle
	for _, entry := range globalNavmesh.spatialIndex().QueryRegion(min, max) {
		triangles = append(triangles, regionTriangle{ID: entry.ID, Corners: entry.Triangle.Corners})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"triangles": triangles,
	})
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	meshMutex.RLock()
	hasMesh := globalNavmesh != nil
	numTriangles := 0
	numEdges := 0
	if globalNavmesh != nil {
		numTriangles = globalNavmesh.NumTriangles()
		numEdges = globalNavmesh.NumEdges()
	}
	meshMutex.RUnlock()

	status := "ready"
	if !hasMesh {
		status = "waiting for navmesh"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       status,
		"hasMesh":      hasMesh,
		"numTriangles": numTriangles,
		"numEdges":     numEdges,
	})
}

func main() {
	log.Println("========================================")
	log.Println("🚀 Navmesh Planner Server")
	log.Println("========================================")

	cfg, err := LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	serverConfig = cfg

	log.Println("Checking for existing navmesh file...")
	if mesh, err := LoadNavmesh(cfg.MeshFile); err == nil {
		meshMutex.Lock()
		globalNavmesh = mesh
		meshMutex.Unlock()
		log.Printf("✅ Loaded existing navmesh from %s\n", cfg.MeshFile)
	} else {
		log.Println("ℹ️  No existing navmesh found (this is normal on first run)")
		log.Println("   Call /loadMesh to load one")
	}

	if cfg.StaticGeometryFile != "" {
		if static, err := LoadStaticGeometry(cfg.StaticGeometryFile); err == nil {
			meshMutex.Lock()
			globalStatic = static
			meshMutex.Unlock()
		} else {
			log.Printf("⚠️  %v\n", err)
		}
	}
	log.Println("")

	http.HandleFunc("/route", corsMiddleware(routeHandler))
	http.HandleFunc("/snap", corsMiddleware(snapHandler))
	http.HandleFunc("/loadMesh", corsMiddleware(loadMeshHandler))
	http.HandleFunc("/getMeshLines", corsMiddleware(getMeshLinesHandler))
	http.HandleFunc("/queryRegion", corsMiddleware(queryRegionHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))

	log.Printf("Server starting on %s\n", cfg.Listen)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /loadMesh       - Load or replace the navmesh")
	log.Println("  POST /route          - Compute a route between two positions")
	log.Println("  POST /snap           - Snap a position onto mesh/static features")
	log.Println("  GET  /getMeshLines   - Get mesh edges for visualization")
	log.Println("  GET  /queryRegion    - Triangles intersecting a bounding box")
	log.Println("  GET  /health         - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		log.Fatal(err)
	}
}

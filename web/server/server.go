package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/df07/go-radiosity-lightmap/pkg/core"
	"github.com/df07/go-radiosity-lightmap/pkg/lightmap"
	"github.com/df07/go-radiosity-lightmap/pkg/loaders"
	"github.com/df07/go-radiosity-lightmap/pkg/renderer"
	"github.com/df07/go-radiosity-lightmap/pkg/scene"
	"github.com/gorilla/websocket"
	"golang.org/x/image/draw"
)

const (
	maxLightmapScale = 32
	consoleBuffer    = 100
)

// Server handles web requests for the lightmap viewer
type Server struct {
	port      int
	staticDir string
	config    scene.Config
	process   *renderer.BuildProcess
	viewer    *renderer.Viewer
	upgrader  websocket.Upgrader

	// Console messages are fanned out to every open stream
	console    chan ConsoleMessage
	consoleMu  sync.Mutex
	consoleSub map[chan ConsoleMessage]struct{}
}

// NewServer creates a web server exposing the scene shared by process and viewer
func NewServer(port int, config scene.Config, process *renderer.BuildProcess, viewer *renderer.Viewer) *Server {
	return &Server{
		port:       port,
		staticDir:  "static/",
		config:     config,
		process:    process,
		viewer:     viewer,
		console:    make(chan ConsoleMessage, consoleBuffer),
		consoleSub: make(map[chan ConsoleMessage]struct{}),
	}
}

// SceneResponse describes the active scene
type SceneResponse struct {
	Name    string   `json:"name"`
	Meshes  []string `json:"meshes"`
	Lights  []string `json:"lights"`
	Running bool     `json:"running"`
}

// StatsResponse represents the lightmap statistics of the active scene
type StatsResponse struct {
	Scene      string                   `json:"scene"`
	Iterations uint64                   `json:"iterations"`
	FrameIndex uint64                   `json:"frameIndex"`
	Lightmaps  []renderer.LightmapStats `json:"lightmaps"`
}

// ConsoleChannel returns the channel console messages are published on
func (s *Server) ConsoleChannel() chan<- ConsoleMessage {
	return s.console
}

// Handler returns the HTTP handler serving the API and static files
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/lightmap", s.handleLightmap)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

// Start serves until ctx is done, then shuts the listener down
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}

	go s.runConsole(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	core.Logger().Info("starting web server", "url", "http://localhost"+addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the discovered scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListScenes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scenes: "+err.Error())
		return
	}
	writeJSON(w, response)
}

// handleScene reports the active scene on GET and switches scenes on POST
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "Missing scene name")
			return
		}
		if err := s.loadScene(name); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, loaders.ErrUnknownScene) {
				status = http.StatusNotFound
			}
			writeError(w, status, err.Error())
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	sceneObj := s.viewer.Scene()
	if sceneObj == nil {
		writeError(w, http.StatusNotFound, "No scene loaded")
		return
	}

	response := SceneResponse{Name: sceneObj.Name, Running: s.process.Running()}
	sceneObj.Lock()
	for _, object := range sceneObj.Meshes() {
		response.Meshes = append(response.Meshes, object.Name)
	}
	for _, light := range sceneObj.Lights() {
		response.Lights = append(response.Lights, light.Name)
	}
	sceneObj.Unlock()
	writeJSON(w, response)
}

// loadScene builds the named scene and hands it to the build process and the viewer
func (s *Server) loadScene(name string) error {
	sceneObj, err := loaders.LoadScene(name, s.config)
	if err != nil {
		return err
	}
	s.process.SetScene(sceneObj)
	s.viewer.SetScene(sceneObj)
	core.Logger().Info("scene loaded", "scene", sceneObj.Name)
	return nil
}

// handleStats returns the lightmap statistics of the active scene
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sceneObj := s.viewer.Scene()
	if sceneObj == nil {
		writeError(w, http.StatusNotFound, "No scene loaded")
		return
	}

	frameIndex, _ := s.viewer.LastFrameIndex()
	writeJSON(w, StatsResponse{
		Scene:      sceneObj.Name,
		Iterations: s.process.Iterations(),
		FrameIndex: frameIndex,
		Lightmaps:  renderer.CollectStats(sceneObj),
	})
}

// handleLightmap returns the latest lightmap of a mesh as a PNG, magnified by scale
func (s *Server) handleLightmap(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mesh, err := parseIntParam(query, "mesh", 0, 0, 1<<16)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	scale, err := parseIntParam(query, "scale", 1, 1, maxLightmapScale)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, ok := s.lightmapImage(mesh)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No lightmap for mesh %d", mesh))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := png.Encode(w, scaleImage(img, scale)); err != nil {
		core.Logger().Warn("failed to encode lightmap", "mesh", mesh, "error", err)
	}
}

// lightmapImage prefers the image of the last rendered frame and falls back
// to the front buffer when no frame was rendered yet
func (s *Server) lightmapImage(mesh int) (image.Image, bool) {
	if frame, ok := s.viewer.Frame(mesh); ok && frame.Image != nil {
		return frame.Image, true
	}
	lm := s.meshLightmap(mesh)
	if lm == nil {
		return nil, false
	}
	return lm.Image(), true
}

// meshLightmap returns the lightmap of the mesh at index mesh of the active scene
func (s *Server) meshLightmap(mesh int) *lightmap.Lightmap {
	sceneObj := s.viewer.Scene()
	if sceneObj == nil {
		return nil
	}
	sceneObj.Lock()
	meshes := sceneObj.Meshes()
	sceneObj.Unlock()
	if mesh < 0 || mesh >= len(meshes) {
		return nil
	}
	return meshes[mesh].Mesh.Lightmap
}

// scaleImage magnifies img by an integer factor without filtering so texels stay visible
func scaleImage(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

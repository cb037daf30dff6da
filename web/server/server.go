package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/pkg/lights"
	"github.com/df07/go-path-integrator/pkg/loaders"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// Server streams progressive renders of the builtin scenes
type Server struct {
	port int
	mux  *http.ServeMux
}

// NewServer creates a server listening on port once started
func NewServer(port int) *Server {
	s := &Server{port: port, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	glog.Infof("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest is the scene and integrator setup shared by render and
// inspect requests
type RenderRequest struct {
	Scene               string  `json:"scene"`
	Integrator          string  `json:"integrator"`
	Width               int     `json:"width"`
	MaxSamples          int     `json:"maxSamples"`
	MaxPasses           int     `json:"maxPasses"`
	MaxDepth            int     `json:"maxDepth"`
	RRThreshold         float64 `json:"rrThreshold"`
	LightSampleStrategy string  `json:"lightSampleStrategy"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the builtin scenes with their default settings
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	type sceneInfo struct {
		Name            string `json:"name"`
		Width           int    `json:"width"`
		Height          int    `json:"height"`
		SamplesPerPixel int    `json:"samplesPerPixel"`
		Lights          int    `json:"lights"`
	}
	var scenes []sceneInfo
	for _, name := range scene.BuiltinNames() {
		sc, err := scene.Builtin(name)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		camera := geometry.NewCamera(sc.CameraConfig)
		scenes = append(scenes, sceneInfo{
			Name:            name,
			Width:           camera.Width(),
			Height:          camera.Height(),
			SamplesPerPixel: sc.SamplingConfig.SamplesPerPixel,
			Lights:          len(sc.Lights),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenes": scenes,
		"defaults": map[string]interface{}{
			"integrator":          "path",
			"maxDepth":            integrator.DefaultMaxDepth,
			"rrThreshold":         integrator.DefaultRRThreshold,
			"lightSampleStrategy": integrator.DefaultLightSampleStrategy,
		},
	})
}

// parseSceneParams reads the scene and integrator parameters of a request
func parseSceneParams(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{
		Scene:               values.Get("scene"),
		Integrator:          values.Get("integrator"),
		LightSampleStrategy: values.Get("lightSampleStrategy"),
	}
	if req.Scene == "" {
		req.Scene = "cornell"
	}
	switch req.Integrator {
	case "":
		req.Integrator = "path"
	case "path", "whitted":
	default:
		return nil, fmt.Errorf("unknown integrator %q", req.Integrator)
	}
	switch req.LightSampleStrategy {
	case "":
		req.LightSampleStrategy = integrator.DefaultLightSampleStrategy
	case lights.StrategyUniform, lights.StrategyPower, lights.StrategySpatial:
	default:
		return nil, fmt.Errorf("unknown light sample strategy %q", req.LightSampleStrategy)
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 0, 2000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", integrator.DefaultMaxDepth, 0, 1000); err != nil {
		return nil, err
	}
	if req.RRThreshold, err = parseFloatParam(values, "rrThreshold", integrator.DefaultRRThreshold, 0, 1000); err != nil {
		return nil, err
	}
	return req, nil
}

// createScene builds and preprocesses the requested builtin scene, resized
// to the requested width
func createScene(req *RenderRequest) (*scene.Scene, error) {
	sc, err := scene.Builtin(req.Scene)
	if err != nil {
		return nil, err
	}
	if req.Width > 0 {
		sc.CameraConfig.Width = req.Width
		sc.Camera = geometry.NewCamera(sc.CameraConfig)
	}
	if err := sc.Preprocess(); err != nil {
		return nil, fmt.Errorf("while preprocessing scene %s: %w", req.Scene, err)
	}
	return sc, nil
}

// integratorParams turns the request into scene file style parameters so
// the integrators read them the same way the command line does
func (req *RenderRequest) integratorParams() loaders.ParamSet {
	return loaders.ParamSet{
		"maxdepth":            {Type: "integer", Values: []string{strconv.Itoa(req.MaxDepth)}},
		"rrthreshold":         {Type: "float", Values: []string{strconv.FormatFloat(req.RRThreshold, 'g', -1, 64)}},
		"lightsamplestrategy": {Type: "string", Values: []string{req.LightSampleStrategy}},
	}
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
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("Error writing response: %v", err)
	}
}

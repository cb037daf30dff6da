package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"time"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/pkg/renderer"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// SSEEvent is one server-sent event. All events of a render go through a
// single writer goroutine.
type SSEEvent struct {
	Type string `json:"type"` // "console", "pass", "error", "complete"
	Data string `json:"data"` // JSON-encoded payload or plain message
}

// PassUpdate is sent after every progressive pass
type PassUpdate struct {
	PassNumber       int     `json:"passNumber"`
	TotalPasses      int     `json:"totalPasses"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	TotalSamples     int     `json:"totalSamples"`
	InvalidSamples   int     `json:"invalidSamples"`
	AverageLuminance float64 `json:"averageLuminance"`
	ElapsedMs        int64   `json:"elapsedMs"`
	ImageData        string  `json:"imageData"` // Base64 encoded PNG
}

// parseRenderRequest reads the scene parameters plus the pass settings
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req, err := parseSceneParams(values)
	if err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(values, "maxSamples", 64, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", 7, 1, 1000); err != nil {
		return nil, err
	}
	return req, nil
}

// passSchedule splits maxSamples over at most maxPasses passes. The first
// pass takes a single sample so a preview shows up quickly.
func passSchedule(maxSamples, maxPasses int) []int {
	if maxSamples <= 1 || maxPasses <= 1 {
		return []int{maxSamples}
	}
	schedule := []int{1}
	rest, passes := maxSamples-1, maxPasses-1
	for i := 0; i < passes; i++ {
		spp := rest / passes
		// Leftover samples go to the last passes
		if i >= passes-rest%passes {
			spp++
		}
		if spp > 0 {
			schedule = append(schedule, spp)
		}
	}
	return schedule
}

func newIntegrator(req *RenderRequest, film *renderer.Film) integrator.Integrator {
	params := req.integratorParams()
	if req.Integrator == "whitted" {
		return integrator.NewWhittedIntegrator(integrator.NewWhittedConfig(params, film.Bounds()))
	}
	return integrator.NewPathIntegrator(integrator.NewPathConfig(params, film.Bounds()), nil)
}

// handleRender renders a builtin scene in passes and streams every pass as
// a PNG over server-sent events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		writeSSEEvents(ctx, w, events)
		close(writerDone)
	}()
	defer func() {
		close(events)
		<-writerDone
	}()

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}
	logger := NewWebLogger(events)

	sc, err := createScene(req)
	if err != nil {
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: err.Error()})
		return
	}
	if err := renderPasses(ctx, sc, req, events, logger); err != nil {
		if ctx.Err() != nil {
			glog.Infof("Render of %s cancelled by client", req.Scene)
			return
		}
		sendEvent(ctx, events, SSEEvent{Type: "error", Data: fmt.Sprintf("Rendering failed: %v", err)})
		return
	}
	sendEvent(ctx, events, SSEEvent{Type: "complete", Data: "Rendering completed"})
}

// renderPasses accumulates every pass of the schedule into one film
func renderPasses(ctx context.Context, sc *scene.Scene, req *RenderRequest, events chan<- SSEEvent, logger *WebLogger) error {
	film := renderer.NewFilm(sc.SamplingConfig.Width, sc.SamplingConfig.Height)
	integ := newIntegrator(req, film)
	if err := integ.Preprocess(ctx, sc); err != nil {
		return err
	}
	logger.Printf("Rendering %s (%dx%d) with the %s integrator", req.Scene, film.Width, film.Height, integ.Name())

	start := time.Now()
	schedule := passSchedule(req.MaxSamples, req.MaxPasses)
	var total renderer.RenderStats
	for i, spp := range schedule {
		stats, err := renderer.New(sc, integ, renderer.Config{SamplesPerPixel: spp, TileSize: renderer.DefaultTileSize}).Render(ctx, film)
		if err != nil {
			return err
		}
		total.Merge(stats)

		img := film.Image()
		imageData, err := imageToBase64PNG(img)
		if err != nil {
			return fmt.Errorf("while encoding pass %d: %w", i+1, err)
		}
		update := PassUpdate{
			PassNumber:       i + 1,
			TotalPasses:      len(schedule),
			SamplesPerPixel:  film.MinSamples(integ.PixelBounds()),
			TotalSamples:     total.TotalSamples,
			InvalidSamples:   total.InvalidSamples,
			AverageLuminance: renderer.CalculateAverageLuminance(img),
			ElapsedMs:        time.Since(start).Milliseconds(),
			ImageData:        imageData,
		}
		data, err := json.Marshal(update)
		if err != nil {
			return fmt.Errorf("while marshaling pass %d: %w", i+1, err)
		}
		sendEvent(ctx, events, SSEEvent{Type: "pass", Data: string(data)})
		if total.InvalidSamples > 0 {
			logger.Warningf("Pass %d/%d: %d invalid samples so far", i+1, len(schedule), total.InvalidSamples)
		}
	}
	integrator.LogStats()
	logger.Printf("Finished %d passes in %v", len(schedule), time.Since(start).Round(time.Millisecond))
	return nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel is closed or the client
// goes away. After a failed write the remaining events are drained unsent.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	broken := false
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if broken {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				glog.V(1).Infof("Client write failed: %v", err)
				broken = true
				continue
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent queues an event unless the client has gone away
func sendEvent(ctx context.Context, events chan<- SSEEvent, event SSEEvent) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

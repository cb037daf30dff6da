package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/df07/go-path-integrator/pkg/integrator"
	"github.com/df07/go-path-integrator/pkg/loaders"
	"github.com/df07/go-path-integrator/pkg/renderer"
	"github.com/df07/go-path-integrator/pkg/scene"
)

// options holds the command line. Integrator flags only override the scene
// file when they appear in set.
type options struct {
	Scene               string
	Integrator          string
	SamplesPerPixel     int
	MaxDepth            int
	RRThreshold         float64
	LightSampleStrategy string
	PixelBounds         string
	Workers             int
	TileSize            int
	Seed                int64
	Output              string
	FilmOut             string
	Resume              string
	DebugFaces          string
	FlatAmbient         bool

	set map[string]bool
}

func main() {
	var o options
	flag.StringVar(&o.Scene, "scene", "cornell", "Builtin scene name or path to a .pbrt scene file. Builtins: "+strings.Join(scene.BuiltinNames(), ", "))
	flag.StringVar(&o.Integrator, "integrator", "", "Integrator: 'path' or 'whitted'. Defaults to the scene file's, else 'path'")
	flag.IntVar(&o.SamplesPerPixel, "spp", 0, "Samples per pixel added by this run. 0 uses the scene's sampler setting")
	flag.IntVar(&o.MaxDepth, "maxdepth", integrator.DefaultMaxDepth, "Maximum path depth")
	flag.Float64Var(&o.RRThreshold, "rrthreshold", integrator.DefaultRRThreshold, "Throughput below which Russian roulette starts")
	flag.StringVar(&o.LightSampleStrategy, "lightsamplestrategy", integrator.DefaultLightSampleStrategy, "Light sampling: uniform, power or spatial")
	flag.StringVar(&o.PixelBounds, "pixelbounds", "", "Render only pixels x0,x1,y0,y1")
	flag.IntVar(&o.Workers, "workers", 0, "Tiles rendered concurrently. 0 uses every CPU")
	flag.IntVar(&o.TileSize, "tile", renderer.DefaultTileSize, "Tile edge length in pixels")
	flag.Int64Var(&o.Seed, "seed", 0, "Random seed")
	flag.StringVar(&o.Output, "output", "", "PNG output path. Defaults to output/<scene>/render_<timestamp>.png")
	flag.StringVar(&o.FilmOut, "film-out", "", "Write the accumulated film to this file for later -resume")
	flag.StringVar(&o.Resume, "resume", "", "Continue rendering into a film written by -film-out")
	flag.StringVar(&o.DebugFaces, "debug-faces", "", "Write the first visible hit of every path to this CSV file")
	flag.BoolVar(&o.FlatAmbient, "flat-ambient", false, "Show a flat green where camera rays escape the scene")
	flag.Parse()
	defer glog.Flush()

	o.set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	glog.Infof("flags:")
	glog.Infof("scene: %v", o.Scene)
	glog.Infof("integrator: %v", o.Integrator)
	glog.Infof("spp: %v", o.SamplesPerPixel)
	glog.Infof("pixelbounds: %v", o.PixelBounds)
	glog.Infof("workers: %v", o.Workers)
	glog.Infof("resume: %v", o.Resume)

	if err := integrator.RegisterViews(); err != nil {
		glog.Exitf("Failed to register stats views: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, o); err != nil {
		glog.Flush()
		glog.Exitf("Render failed: %v", err)
	}
}

// run renders one image as described by o
func run(ctx context.Context, o options) (err error) {
	s, err := loadScene(o.Scene)
	if err != nil {
		return err
	}
	if err := s.Preprocess(); err != nil {
		return fmt.Errorf("while preprocessing scene: %w", err)
	}

	film, err := newFilm(s, o.Resume)
	if err != nil {
		return err
	}

	params := overrideParams(s.IntegratorParams, o)

	var faceWriter *integrator.FaceWriter
	if o.DebugFaces != "" {
		var closeFaces func() error
		if faceWriter, closeFaces, err = createFaceWriter(o.DebugFaces); err != nil {
			return err
		}
		// Cancelled and failed renders keep the faces written so far
		defer func() {
			if cerr := closeFaces(); err == nil {
				err = cerr
			}
		}()
	}

	integ, err := newIntegrator(integratorName(o, s), params, film, o, faceWriter)
	if err != nil {
		return err
	}
	if err := integ.Preprocess(ctx, s); err != nil {
		return fmt.Errorf("while preprocessing %s integrator: %w", integ.Name(), err)
	}

	spp := s.SamplingConfig.SamplesPerPixel
	if o.SamplesPerPixel > 0 {
		spp = o.SamplesPerPixel
	}
	r := renderer.New(s, integ, renderer.Config{
		SamplesPerPixel: spp,
		TileSize:        o.TileSize,
		NumWorkers:      o.Workers,
		Seed:            o.Seed,
	})
	stats, renderErr := r.Render(ctx, film)
	integrator.LogStats()

	// A cancelled render still leaves a resumable film
	if o.FilmOut != "" && (renderErr == nil || errors.Is(renderErr, context.Canceled)) {
		if err := renderer.SaveFilm(film, o.FilmOut); err != nil {
			return err
		}
		glog.Infof("Film saved as %s", o.FilmOut)
	}
	if renderErr != nil {
		return renderErr
	}

	if faceWriter != nil {
		if err := faceWriter.Err(); err != nil {
			return fmt.Errorf("while writing debug faces: %w", err)
		}
	}

	output := o.Output
	if output == "" {
		output = filepath.Join(createOutputDir(o.Scene), fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := savePNG(film, output); err != nil {
		return err
	}
	glog.Infof("Render saved as %s (%d samples, average luminance %.4f)", output, stats.TotalSamples, renderer.CalculateAverageLuminance(film.Image()))
	return nil
}

// createFaceWriter opens a buffered FaceWriter on name. The returned close
// func flushes the buffer before closing the file.
func createFaceWriter(name string) (*integrator.FaceWriter, func() error, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("while creating debug faces file: %w", err)
	}
	buf := bufio.NewWriter(f)
	closeFn := func() error {
		flushErr := buf.Flush()
		if err := f.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
		if flushErr != nil {
			return fmt.Errorf("while writing debug faces: %w", flushErr)
		}
		return nil
	}
	return integrator.NewFaceWriter(buf), closeFn, nil
}

// loadScene treats names ending in .pbrt, or naming an existing file, as
// scene files and everything else as a builtin scene
func loadScene(name string) (*scene.Scene, error) {
	if strings.HasSuffix(name, ".pbrt") {
		return scene.LoadFile(name)
	}
	if _, err := os.Stat(name); err == nil {
		return scene.LoadFile(name)
	}
	return scene.Builtin(name)
}

// newFilm creates an empty film for the scene's camera, or loads the film
// being resumed
func newFilm(s *scene.Scene, resume string) (*renderer.Film, error) {
	width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
	if resume == "" {
		return renderer.NewFilm(width, height), nil
	}
	film, err := renderer.LoadFilm(resume)
	if err != nil {
		return nil, err
	}
	if film.Width != width || film.Height != height {
		return nil, fmt.Errorf("film %s is %dx%d but the scene renders %dx%d", resume, film.Width, film.Height, width, height)
	}
	glog.Infof("Resuming %s with %d samples per pixel", resume, film.MinSamples(film.Bounds()))
	return film, nil
}

func integratorName(o options, s *scene.Scene) string {
	switch {
	case o.Integrator != "":
		return o.Integrator
	case s.IntegratorName != "":
		return s.IntegratorName
	}
	return "path"
}

func newIntegrator(name string, params loaders.ParamSet, film *renderer.Film, o options, faces *integrator.FaceWriter) (integrator.Integrator, error) {
	switch name {
	case "path":
		config := integrator.NewPathConfig(params, film.Bounds())
		config.FlatAmbientFallback = o.FlatAmbient
		config.WriteDebugFaces = faces != nil
		var observer integrator.PathObserver
		if faces != nil {
			observer = faces
		}
		return integrator.NewPathIntegrator(config, observer), nil
	case "whitted":
		return integrator.NewWhittedIntegrator(integrator.NewWhittedConfig(params, film.Bounds())), nil
	}
	return nil, fmt.Errorf("unknown integrator %q, want path or whitted", name)
}

// overrideParams returns a copy of the scene's integrator parameters with
// the integrator flags given on the command line replacing them. A malformed
// -pixelbounds is reported and renders the full frame.
func overrideParams(base loaders.ParamSet, o options) loaders.ParamSet {
	params := loaders.ParamSet{}
	for name, p := range base {
		params[name] = p
	}
	if o.set["maxdepth"] {
		params["maxdepth"] = loaders.Param{Type: "integer", Values: []string{strconv.Itoa(o.MaxDepth)}}
	}
	if o.set["rrthreshold"] {
		params["rrthreshold"] = loaders.Param{Type: "float", Values: []string{strconv.FormatFloat(o.RRThreshold, 'g', -1, 64)}}
	}
	if o.set["lightsamplestrategy"] {
		params["lightsamplestrategy"] = loaders.Param{Type: "string", Values: []string{o.LightSampleStrategy}}
	}
	if o.set["pixelbounds"] {
		values, err := parsePixelBounds(o.PixelBounds)
		if err != nil {
			glog.Errorf("Ignoring -pixelbounds, rendering the full frame: %v", err)
			delete(params, "pixelbounds")
		} else {
			params["pixelbounds"] = loaders.Param{Type: "integer", Values: values}
		}
	}
	return params
}

// parsePixelBounds splits "x0,x1,y0,y1" into four integers
func parsePixelBounds(s string) ([]string, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return nil, fmt.Errorf("-pixelbounds wants x0,x1,y0,y1, got %q", s)
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if _, err := strconv.Atoi(f); err != nil {
			return nil, fmt.Errorf("-pixelbounds value %q is not an integer", f)
		}
		fields[i] = f
	}
	return fields, nil
}

// createOutputDir returns output/<scene base name>, creating it if needed
func createOutputDir(sceneName string) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), ".pbrt")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	dir := filepath.Join("output", base)
	if err := os.MkdirAll(dir, 0755); err != nil {
		glog.Warningf("Could not create %s: %v", dir, err)
	}
	return dir
}

func savePNG(film *renderer.Film, name string) (err error) {
	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("while creating output directory: %w", err)
		}
	}
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating %s: %w", name, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("while closing %s: %w", name, cerr)
		}
	}()
	if err := png.Encode(out, film.Image()); err != nil {
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	return nil
}

package integrator

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/material"
)

// PathObserver is told about the first visible surface of every path that
// hits something and does not arrive through a specular bounce. It is called
// from many workers at once and must do its own locking.
type PathObserver interface {
	ObservePath(pixel image.Point, sampleIndex int, si *material.SurfaceInteraction, m material.Material)
}

// FaceWriter writes one CSV line per observed path: the pixel followed by
// the hit point and its geometric normal
type FaceWriter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewFaceWriter creates a FaceWriter writing to w
func NewFaceWriter(w io.Writer) *FaceWriter {
	return &FaceWriter{w: w}
}

// ObservePath implements PathObserver
func (f *FaceWriter) ObservePath(pixel image.Point, sampleIndex int, si *material.SurfaceInteraction, m material.Material) {
	p, n := si.Point, si.Normal
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return
	}
	_, f.err = fmt.Fprintf(f.w, "%d, %d, %g, %g, %g, %g, %g, %g\n", pixel.X, pixel.Y, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
}

// Err returns the first write error, if any
func (f *FaceWriter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// samplePosition returns the pixel and sample index the sampler is
// currently producing values for
func samplePosition(sampler core.Sampler) (image.Point, int) {
	if ps, ok := sampler.(core.PixelSampler); ok {
		return ps.CurrentPixel(), ps.CurrentSampleIndex()
	}
	return image.Point{}, 0
}

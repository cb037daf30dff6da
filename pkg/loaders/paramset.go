package loaders

import (
	"math"
	"strconv"

	"github.com/golang/glog"
	"golang.org/x/xerrors"

	"github.com/df07/go-path-integrator/pkg/core"
)

// Param is a typed parameter value list, e.g. "rgb Kd" [.5 .5 .5]
type Param struct {
	Type   string
	Values []string
}

// ParamSet maps parameter names to their values. Lookups that fail to
// parse are logged and treated as missing.
type ParamSet map[string]Param

// FindOneInt returns the first value of an integer parameter, or def
func (ps ParamSet) FindOneInt(name string, def int) int {
	values := ps.FindInt(name)
	if len(values) == 0 {
		return def
	}
	return values[0]
}

// FindInt returns every value of an integer parameter
func (ps ParamSet) FindInt(name string) []int {
	p, ok := ps[name]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(p.Values))
	for _, v := range p.Values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f != math.Trunc(f) {
			glog.Errorf("Parameter %q: %q is not an integer", name, v)
			return nil
		}
		out = append(out, int(f))
	}
	return out
}

// FindOneFloat returns the first value of a float parameter, or def
func (ps ParamSet) FindOneFloat(name string, def float64) float64 {
	values, err := ps.floats(name)
	if err != nil {
		glog.Errorf("Parameter %q: %v", name, err)
		return def
	}
	if len(values) == 0 {
		return def
	}
	return values[0]
}

// FindOneString returns the first value of a string parameter, or def
func (ps ParamSet) FindOneString(name, def string) string {
	p, ok := ps[name]
	if !ok || len(p.Values) == 0 {
		return def
	}
	return p.Values[0]
}

// FindRGB returns a color parameter
func (ps ParamSet) FindRGB(name string) (core.Vec3, bool) {
	return ps.findTriple(name)
}

// FindPoint3 returns a point or vector parameter
func (ps ParamSet) FindPoint3(name string) (core.Vec3, bool) {
	return ps.findTriple(name)
}

// FindPoint3s returns a list of points, e.g. the "P" array of a triangle
// mesh. A value count that is not a multiple of three is an error.
func (ps ParamSet) FindPoint3s(name string) ([]core.Vec3, error) {
	values, err := ps.floats(name)
	if err != nil {
		return nil, err
	}
	if len(values)%3 != 0 {
		return nil, xerrors.Errorf("parameter %q: %d values is not a list of points", name, len(values))
	}
	points := make([]core.Vec3, 0, len(values)/3)
	for i := 0; i < len(values); i += 3 {
		points = append(points, core.NewVec3(values[i], values[i+1], values[i+2]))
	}
	return points, nil
}

// FindBool returns the first value of a bool parameter, or def
func (ps ParamSet) FindBool(name string, def bool) bool {
	p, ok := ps[name]
	if !ok || len(p.Values) == 0 {
		return def
	}
	b, err := strconv.ParseBool(p.Values[0])
	if err != nil {
		glog.Errorf("Parameter %q: %q is not a bool", name, p.Values[0])
		return def
	}
	return b
}

func (ps ParamSet) findTriple(name string) (core.Vec3, bool) {
	values, err := ps.floats(name)
	if err != nil {
		glog.Errorf("Parameter %q: %v", name, err)
		return core.Vec3{}, false
	}
	switch len(values) {
	case 0:
		return core.Vec3{}, false
	case 1:
		// A single value is a gray color
		return core.Gray(values[0]), true
	case 3:
		return core.NewVec3(values[0], values[1], values[2]), true
	}
	glog.Errorf("Parameter %q: expected 3 values, got %d", name, len(values))
	return core.Vec3{}, false
}

func (ps ParamSet) floats(name string) ([]float64, error) {
	p, ok := ps[name]
	if !ok {
		return nil, nil
	}
	values, err := parseFloats(p.Values)
	if err != nil {
		return nil, xerrors.Errorf("while reading %q: %w", name, err)
	}
	return values, nil
}

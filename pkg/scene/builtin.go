package scene

import (
	"sort"

	"golang.org/x/xerrors"
)

var builtins = map[string]func() *Scene{
	"cornell":    NewCornellScene,
	"spheres":    NewSpheresScene,
	"spheregrid": NewSphereGridScene,
	"subsurface": NewSubsurfaceScene,
}

// Builtin returns a new instance of the named builtin scene
func Builtin(name string) (*Scene, error) {
	newScene, ok := builtins[name]
	if !ok {
		return nil, xerrors.Errorf("unknown scene %q, available: %v", name, BuiltinNames())
	}
	return newScene(), nil
}

// BuiltinNames lists the builtin scenes in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

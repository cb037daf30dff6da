package scene

import (
	"github.com/golang/glog"
	"golang.org/x/xerrors"

	"github.com/df07/go-path-integrator/pkg/core"
	"github.com/df07/go-path-integrator/pkg/geometry"
	"github.com/df07/go-path-integrator/pkg/loaders"
	"github.com/df07/go-path-integrator/pkg/material"
)

// LoadFile loads a scene file and converts it
func LoadFile(path string) (*Scene, error) {
	desc, err := loaders.LoadScene(path)
	if err != nil {
		return nil, err
	}
	s, err := FromDescription(desc)
	if err != nil {
		return nil, xerrors.Errorf("while converting %s: %w", path, err)
	}
	return s, nil
}

// FromDescription converts a parsed scene file into a scene. Materials are
// shared between shapes that reference the same Material directive.
func FromDescription(desc *loaders.SceneDescription) (*Scene, error) {
	s := &Scene{
		CameraConfig:     convertCamera(desc),
		SamplingConfig:   SamplingConfig{SamplesPerPixel: 16},
		IntegratorParams: loaders.ParamSet{},
	}
	if desc.Sampler != nil {
		s.SamplingConfig.SamplesPerPixel = desc.Sampler.Params.FindOneInt("pixelsamples", s.SamplingConfig.SamplesPerPixel)
	}
	if desc.Integrator != nil {
		if desc.Integrator.Subtype != "path" && desc.Integrator.Subtype != "whitted" {
			return nil, xerrors.Errorf("line %d: unsupported integrator %q", desc.Integrator.Line, desc.Integrator.Subtype)
		}
		s.IntegratorName = desc.Integrator.Subtype
		s.IntegratorParams = desc.Integrator.Params
	}
	s.Camera = geometry.NewCamera(s.CameraConfig)

	materials := map[*loaders.Statement]material.Material{}
	for _, shapeStmt := range desc.Shapes {
		var mat material.Material
		if shapeStmt.Material != nil {
			var ok bool
			if mat, ok = materials[shapeStmt.Material]; !ok {
				var err error
				if mat, err = convertMaterial(shapeStmt.Material, desc); err != nil {
					return nil, xerrors.Errorf("line %d: while converting material: %w", shapeStmt.Material.Line, err)
				}
				materials[shapeStmt.Material] = mat
			}
		}
		if err := s.addShape(&shapeStmt, mat, desc); err != nil {
			return nil, xerrors.Errorf("line %d: while converting shape: %w", shapeStmt.Line, err)
		}
	}

	for i := range desc.Lights {
		if err := s.addLight(&desc.Lights[i]); err != nil {
			return nil, xerrors.Errorf("line %d: while converting light: %w", desc.Lights[i].Line, err)
		}
	}

	if len(s.Lights) == 0 {
		glog.Warningf("Scene has no lights; the image will be black")
	}
	return s, nil
}

func convertCamera(desc *loaders.SceneDescription) geometry.CameraConfig {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, 1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        90.0,
	}
	if desc.LookAt != nil {
		config.Center = desc.LookAt.Eye
		config.LookAt = desc.LookAt.At
		config.Up = desc.LookAt.Up
	}
	if desc.Camera != nil {
		if desc.Camera.Subtype != "perspective" {
			glog.Warningf("Camera %q not supported, using perspective", desc.Camera.Subtype)
		}
		config.VFov = desc.Camera.Params.FindOneFloat("fov", config.VFov)
		config.Aperture = 2 * desc.Camera.Params.FindOneFloat("lensradius", 0)
		config.FocusDistance = desc.Camera.Params.FindOneFloat("focaldistance", 0)
	}
	if desc.Film != nil {
		width := desc.Film.Params.FindOneInt("xresolution", config.Width)
		height := desc.Film.Params.FindOneInt("yresolution", config.Width)
		if width > 0 && height > 0 {
			config.Width = width
			config.AspectRatio = float64(width) / float64(height)
		}
	}
	return config
}

func convertMaterial(stmt *loaders.Statement, desc *loaders.SceneDescription) (material.Material, error) {
	ps := stmt.Params
	switch stmt.Subtype {
	case "matte":
		if path := ps.FindOneString("Kd_map", ""); path != "" {
			texture, err := material.LoadImageTexture(desc.ResolvePath(path))
			if err != nil {
				return nil, xerrors.Errorf("while loading Kd_map: %w", err)
			}
			return material.NewTexturedLambertian(texture), nil
		}
		kd, ok := ps.FindRGB("Kd")
		if !ok {
			kd = core.Gray(0.5)
		}
		return material.NewLambertian(kd), nil
	case "mirror":
		kr, ok := ps.FindRGB("Kr")
		if !ok {
			kr = core.Gray(0.9)
		}
		return material.NewMirror(kr), nil
	case "glass":
		glass := material.NewDielectric(ps.FindOneFloat("eta", 1.5))
		if kr, ok := ps.FindRGB("Kr"); ok {
			glass.Reflectance = kr
		}
		if kt, ok := ps.FindRGB("Kt"); ok {
			glass.Transmittance = kt
		}
		return glass, nil
	case "subsurface":
		albedo, ok := ps.FindRGB("reflectance")
		if !ok {
			albedo = core.Gray(0.8)
		}
		mfp, ok := ps.FindRGB("mfp")
		if !ok {
			mfp = core.Gray(1)
		}
		m := material.NewSubsurface(ps.FindOneFloat("eta", 1.33), albedo, mfp)
		m.Scale = ps.FindOneFloat("scale", 1)
		return m, nil
	case "none", "":
		return nil, nil
	}
	return nil, xerrors.Errorf("unknown material %q", stmt.Subtype)
}

func (s *Scene) addShape(stmt *loaders.ShapeStatement, mat material.Material, desc *loaders.SceneDescription) error {
	ps := stmt.Params

	var emission core.Vec3
	twoSided := false
	if stmt.AreaLight != nil {
		if stmt.AreaLight.Subtype != "diffuse" {
			return xerrors.Errorf("unknown area light %q", stmt.AreaLight.Subtype)
		}
		var ok bool
		if emission, ok = stmt.AreaLight.Params.FindRGB("L"); !ok {
			emission = core.Gray(1)
		}
		twoSided = stmt.AreaLight.Params.FindBool("twosided", false)
	}

	switch stmt.Subtype {
	case "sphere":
		center, _ := ps.FindPoint3("center")
		radius := ps.FindOneFloat("radius", 1)
		if radius <= 0 {
			return xerrors.Errorf("sphere radius must be positive, got %g", radius)
		}
		if stmt.AreaLight != nil {
			s.AddSphereLight(center, radius, emission, mat).TwoSided = twoSided
			return nil
		}
		s.Shapes = append(s.Shapes, geometry.NewSphere(center, radius, mat))
	case "quad":
		corner, ok1 := ps.FindPoint3("corner")
		u, ok2 := ps.FindPoint3("u")
		v, ok3 := ps.FindPoint3("v")
		if !ok1 || !ok2 || !ok3 {
			return xerrors.New(`quad requires "corner", "u" and "v"`)
		}
		if u.Cross(v).IsBlack() {
			return xerrors.New("quad edges are parallel")
		}
		if stmt.AreaLight != nil {
			s.AddQuadLight(corner, u, v, emission, mat).TwoSided = twoSided
			return nil
		}
		s.Shapes = append(s.Shapes, geometry.NewQuad(corner, u, v, mat))
	case "disk":
		if stmt.AreaLight != nil {
			return xerrors.New("area lights on disks are not supported")
		}
		center, _ := ps.FindPoint3("center")
		normal, ok := ps.FindPoint3("normal")
		if !ok {
			normal = core.NewVec3(0, 1, 0)
		}
		radius := ps.FindOneFloat("radius", 1)
		if radius <= 0 || normal.IsBlack() {
			return xerrors.Errorf("disk needs a positive radius and a nonzero normal, got %g and %v", radius, normal)
		}
		s.Shapes = append(s.Shapes, geometry.NewDisc(center, normal, radius, mat))
	case "trianglemesh":
		if stmt.AreaLight != nil {
			return xerrors.New("area lights on triangle meshes are not supported")
		}
		points, err := ps.FindPoint3s("P")
		if err != nil {
			return err
		}
		indices := ps.FindInt("indices")
		if len(indices) == 0 && len(points) == 3 {
			indices = []int{0, 1, 2}
		}
		mesh, err := geometry.NewTriangleMesh(points, indices, mat)
		if err != nil {
			return xerrors.Errorf("while building triangle mesh: %w", err)
		}
		s.Shapes = append(s.Shapes, mesh)
	case "plymesh":
		if stmt.AreaLight != nil {
			return xerrors.New("area lights on triangle meshes are not supported")
		}
		filename := ps.FindOneString("filename", "")
		if filename == "" {
			return xerrors.New(`plymesh requires "filename"`)
		}
		ply, err := loaders.LoadPLY(desc.ResolvePath(filename))
		if err != nil {
			return err
		}
		mesh, err := geometry.NewTriangleMesh(ply.Vertices, ply.Indices, mat)
		if err != nil {
			return xerrors.Errorf("while building mesh from %s: %w", filename, err)
		}
		s.Shapes = append(s.Shapes, mesh)
	default:
		return xerrors.Errorf("unknown shape %q", stmt.Subtype)
	}
	return nil
}

func (s *Scene) addLight(stmt *loaders.Statement) error {
	ps := stmt.Params
	switch stmt.Subtype {
	case "point":
		intensity, ok := ps.FindRGB("I")
		if !ok {
			intensity = core.Gray(1)
		}
		from, _ := ps.FindPoint3("from")
		s.AddPointLight(from, intensity)
	case "spot":
		intensity, ok := ps.FindRGB("I")
		if !ok {
			intensity = core.Gray(1)
		}
		from, _ := ps.FindPoint3("from")
		to, ok := ps.FindPoint3("to")
		if !ok {
			to = from.Add(core.NewVec3(0, 0, 1))
		}
		if to.Subtract(from).LengthSquared() == 0 {
			return xerrors.New("spot light needs distinct from and to points")
		}
		s.AddSpotLight(from, to, intensity, ps.FindOneFloat("coneangle", 30), ps.FindOneFloat("conedeltaangle", 5))
	case "infinite":
		top, hasTop := ps.FindRGB("top")
		bottom, hasBottom := ps.FindRGB("bottom")
		if hasTop && hasBottom {
			s.AddGradientInfiniteLight(top, bottom)
			return nil
		}
		l, ok := ps.FindRGB("L")
		if !ok {
			l = core.Gray(1)
		}
		s.AddUniformInfiniteLight(l)
	default:
		return xerrors.Errorf("unknown light %q", stmt.Subtype)
	}
	return nil
}

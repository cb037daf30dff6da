package loaders

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"github.com/df07/go-path-integrator/pkg/core"
)

// Statement is one parsed scene-file directive such as
// `Material "matte" "rgb Kd" [.5 .5 .5]`
type Statement struct {
	Type    string   // Directive name (Camera, Material, Shape, ...)
	Subtype string   // Quoted name following the directive
	Params  ParamSet // Typed parameters
	Line    int      // Line the directive started on
}

// ShapeStatement is a Shape directive together with the graphics state that
// was active when it appeared
type ShapeStatement struct {
	Statement
	Material  *Statement // nil when no Material precedes the shape
	AreaLight *Statement // nil unless inside an AreaLightSource scope
}

// LookAt holds the viewing transform of the camera
type LookAt struct {
	Eye, At, Up core.Vec3
}

// SceneDescription is the content of a scene file
type SceneDescription struct {
	// Options block, before WorldBegin
	LookAt     *LookAt
	Camera     *Statement
	Film       *Statement
	Sampler    *Statement
	Integrator *Statement

	// World block
	Shapes []ShapeStatement
	Lights []Statement

	// BaseDir is the directory of the scene file, empty for scenes not
	// read from a file
	BaseDir string
}

// ResolvePath interprets a path named in the scene relative to the scene file
func (d *SceneDescription) ResolvePath(path string) string {
	if d.BaseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.BaseDir, path)
}

// graphicsState is saved by AttributeBegin and restored by AttributeEnd
type graphicsState struct {
	material  *Statement
	areaLight *Statement
}

// sceneParser accumulates continuation lines into statements and tracks
// the graphics state stack
type sceneParser struct {
	desc       *SceneDescription
	state      graphicsState
	stack      []graphicsState
	inWorld    bool
	pending    []string
	pendingAt  int
	lineNumber int
}

// ParseScene reads a scene description from r
func ParseScene(r io.Reader) (*SceneDescription, error) {
	p := &sceneParser{desc: &SceneDescription{}}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lineNumber++
		if err := p.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("while reading scene: %w", err)
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	if len(p.stack) != 0 {
		return nil, xerrors.Errorf("unbalanced AttributeBegin: %d block(s) left open", len(p.stack))
	}
	return p.desc, nil
}

// LoadScene opens and parses a scene file
func LoadScene(filename string) (*SceneDescription, error) {
	if filename == "" {
		return nil, xerrors.New("scene filename cannot be empty")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, xerrors.Errorf("while opening scene file: %w", err)
	}
	defer file.Close()

	desc, err := ParseScene(file)
	if err != nil {
		return nil, xerrors.Errorf("while parsing %s: %w", filename, err)
	}
	desc.BaseDir = filepath.Dir(filename)
	return desc, nil
}

func (p *sceneParser) processLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 && !strings.Contains(line[:i], `"`) {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.flush(); err != nil {
			return err
		}
		return p.block(line)
	}

	if isStatementStart(line) {
		if err := p.flush(); err != nil {
			return err
		}
		p.pending = []string{line}
		p.pendingAt = p.lineNumber
		return nil
	}
	if len(p.pending) == 0 {
		return xerrors.Errorf("line %d: unexpected continuation %q", p.lineNumber, line)
	}
	p.pending = append(p.pending, line)
	return nil
}

func (p *sceneParser) block(directive string) error {
	switch directive {
	case "WorldBegin":
		p.inWorld = true
		p.state = graphicsState{}
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stack = append(p.stack, p.state)
	case "AttributeEnd":
		if len(p.stack) == 0 {
			return xerrors.Errorf("line %d: AttributeEnd without AttributeBegin", p.lineNumber)
		}
		p.state = p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
	}
	return nil
}

// flush parses and routes the accumulated statement, if any
func (p *sceneParser) flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	text := strings.Join(p.pending, " ")
	p.pending = nil

	stmt, err := parseStatement(text)
	if err != nil {
		return xerrors.Errorf("line %d: while parsing %q: %w", p.pendingAt, text, err)
	}
	stmt.Line = p.pendingAt
	if err := p.route(stmt); err != nil {
		return xerrors.Errorf("line %d: %w", p.pendingAt, err)
	}
	return nil
}

func (p *sceneParser) route(stmt *Statement) error {
	if stmt.Type == "LookAt" {
		la, err := parseLookAt(stmt)
		if err != nil {
			return xerrors.Errorf("while parsing LookAt: %w", err)
		}
		p.desc.LookAt = la
		return nil
	}

	if !p.inWorld {
		switch stmt.Type {
		case "Camera":
			p.desc.Camera = stmt
		case "Film":
			p.desc.Film = stmt
		case "Sampler":
			p.desc.Sampler = stmt
		case "Integrator":
			p.desc.Integrator = stmt
		default:
			return xerrors.Errorf("%s is not allowed before WorldBegin", stmt.Type)
		}
		return nil
	}

	switch stmt.Type {
	case "Material":
		p.state.material = stmt
	case "AreaLightSource":
		p.state.areaLight = stmt
	case "LightSource":
		p.desc.Lights = append(p.desc.Lights, *stmt)
	case "Shape":
		p.desc.Shapes = append(p.desc.Shapes, ShapeStatement{
			Statement: *stmt,
			Material:  p.state.material,
			AreaLight: p.state.areaLight,
		})
	default:
		return xerrors.Errorf("%s is not allowed inside the world block", stmt.Type)
	}
	return nil
}

func parseLookAt(stmt *Statement) (*LookAt, error) {
	values, err := stmt.Params.floats("values")
	if err != nil {
		return nil, err
	}
	if len(values) != 9 {
		return nil, xerrors.Errorf("LookAt requires 9 values, got %d", len(values))
	}
	return &LookAt{
		Eye: core.NewVec3(values[0], values[1], values[2]),
		At:  core.NewVec3(values[3], values[4], values[5]),
		Up:  core.NewVec3(values[6], values[7], values[8]),
	}, nil
}

// tokenize splits a statement into tokens, keeping quoted strings and
// bracketed arrays whole
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	emit := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				emit()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			emit()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			emit()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			emit()
		default:
			current.WriteRune(char)
		}
	}
	emit()
	return tokens
}

// parseStatement parses `Type "subtype" "type name" value ...`. LookAt
// takes bare numbers instead.
func parseStatement(line string) (*Statement, error) {
	parts := tokenize(line)
	if len(parts) == 0 {
		return nil, xerrors.New("empty statement")
	}
	stmt := &Statement{Type: parts[0], Params: ParamSet{}}

	if stmt.Type == "LookAt" {
		stmt.Params["values"] = Param{Type: "float", Values: parts[1:]}
		return stmt, nil
	}

	parts = parts[1:]
	if len(parts) == 0 || !isQuoted(parts[0]) {
		return nil, xerrors.Errorf("%s requires a quoted name", stmt.Type)
	}
	stmt.Subtype = strings.Trim(parts[0], `"`)
	parts = parts[1:]

	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			return nil, xerrors.Errorf("expected parameter declaration, got %s", parts[i])
		}
		decl := strings.Fields(strings.Trim(parts[i], `"`))
		if len(decl) != 2 {
			return nil, xerrors.Errorf("malformed parameter declaration %s", parts[i])
		}
		if i+1 >= len(parts) {
			return nil, xerrors.Errorf("parameter %q has no value", decl[1])
		}
		i++

		var values []string
		if v := parts[i]; strings.HasPrefix(v, "[") {
			values = strings.Fields(strings.Trim(v, "[]"))
		} else {
			values = []string{v}
		}
		for j, v := range values {
			values[j] = strings.Trim(v, `"`)
		}
		stmt.Params[decl[1]] = Param{Type: decl[0], Values: values}
	}
	return stmt, nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}

// isStatementStart reports whether a line begins a new directive
func isStatementStart(line string) bool {
	for _, directive := range []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "Shape", "LightSource", "AreaLightSource",
	} {
		if strings.HasPrefix(line, directive+" ") || line == directive {
			return true
		}
	}
	return false
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, xerrors.Errorf("while parsing %q as a number: %w", v, err)
		}
		out[i] = f
	}
	return out, nil
}

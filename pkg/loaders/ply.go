package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/xerrors"

	"github.com/df07/go-path-integrator/pkg/core"
)

// PLYMesh is the triangle data of a PLY file. Polygons are fanned into
// triangles; every other property is skipped.
type PLYMesh struct {
	Vertices []core.Vec3
	Indices  []int // 3 per triangle
}

type plyProperty struct {
	name      string
	typ       string // value type, or the item type of a list
	countType string // set for list properties
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

var plyTypeSizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

// LoadPLY reads an ascii or binary PLY file
func LoadPLY(filename string) (*PLYMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, xerrors.Errorf("while opening PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, xerrors.Errorf("while reading %s: %w", filename, err)
	}
	glog.V(1).Infof("Loaded %s: %d vertices, %d triangles", filename, len(mesh.Vertices), len(mesh.Indices)/3)
	return mesh, nil
}

// ReadPLY parses PLY data from r
func ReadPLY(r io.Reader) (*PLYMesh, error) {
	br := bufio.NewReader(r)
	format, elements, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	var values plyValueReader
	switch format {
	case "ascii":
		s := bufio.NewScanner(br)
		s.Split(bufio.ScanWords)
		values = &asciiPLYReader{s: s}
	case "binary_little_endian":
		values = &binaryPLYReader{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryPLYReader{r: br, order: binary.BigEndian}
	default:
		return nil, xerrors.Errorf("unsupported PLY format %q", format)
	}

	mesh := &PLYMesh{}
	for _, e := range elements {
		if err := mesh.readElement(e, values); err != nil {
			return nil, xerrors.Errorf("while reading %s elements: %w", e.name, err)
		}
	}
	return mesh, nil
}

func readPLYHeader(br *bufio.Reader) (string, []plyElement, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return "", nil, xerrors.New("not a PLY file")
	}

	var format string
	var elements []plyElement
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return "", nil, xerrors.Errorf("while reading PLY header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "end_header":
			if format == "" {
				return "", nil, xerrors.New("PLY header has no format line")
			}
			return format, elements, nil
		case "format":
			if len(fields) < 2 {
				return "", nil, xerrors.Errorf("bad format line %q", strings.TrimSpace(line))
			}
			format = fields[1]
		case "element":
			if len(fields) != 3 {
				return "", nil, xerrors.Errorf("bad element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return "", nil, xerrors.Errorf("bad element count %q", fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(elements) == 0 {
				return "", nil, xerrors.New("PLY property before any element")
			}
			prop, err := parsePLYProperty(fields[1:])
			if err != nil {
				return "", nil, err
			}
			e := &elements[len(elements)-1]
			e.props = append(e.props, prop)
		case "comment", "obj_info":
		default:
			return "", nil, xerrors.Errorf("unknown PLY header line %q", strings.TrimSpace(line))
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	var prop plyProperty
	switch {
	case len(fields) == 4 && fields[0] == "list":
		prop = plyProperty{countType: fields[1], typ: fields[2], name: fields[3]}
		if plyTypeSizes[prop.countType] == 0 {
			return prop, xerrors.Errorf("unknown PLY type %q", prop.countType)
		}
	case len(fields) == 2:
		prop = plyProperty{typ: fields[0], name: fields[1]}
	default:
		return prop, xerrors.Errorf("bad property line %q", strings.Join(fields, " "))
	}
	if plyTypeSizes[prop.typ] == 0 {
		return prop, xerrors.Errorf("unknown PLY type %q", prop.typ)
	}
	return prop, nil
}

func (m *PLYMesh) readElement(e plyElement, values plyValueReader) error {
	isVertex, isFace := e.name == "vertex", e.name == "face"
	if isVertex {
		m.Vertices = make([]core.Vec3, 0, min(e.count, 1<<20))
	}
	var polygon []int
	for i := 0; i < e.count; i++ {
		var p core.Vec3
		for _, prop := range e.props {
			if prop.countType != "" {
				n, err := values.read(prop.countType)
				if err != nil {
					return err
				}
				if n < 0 || n > 1<<16 {
					return xerrors.Errorf("bad list length %g", n)
				}
				polygon = polygon[:0]
				for k := 0; k < int(n); k++ {
					v, err := values.read(prop.typ)
					if err != nil {
						return err
					}
					polygon = append(polygon, int(v))
				}
				if isFace && (prop.name == "vertex_indices" || prop.name == "vertex_index") {
					for k := 1; k+1 < len(polygon); k++ {
						m.Indices = append(m.Indices, polygon[0], polygon[k], polygon[k+1])
					}
				}
				continue
			}

			v, err := values.read(prop.typ)
			if err != nil {
				return err
			}
			if isVertex {
				switch prop.name {
				case "x":
					p.X = v
				case "y":
					p.Y = v
				case "z":
					p.Z = v
				}
			}
		}
		if isVertex {
			m.Vertices = append(m.Vertices, p)
		}
	}
	return nil
}

type plyValueReader interface {
	read(typ string) (float64, error)
}

type asciiPLYReader struct {
	s *bufio.Scanner
}

func (a *asciiPLYReader) read(typ string) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.s.Text(), 64)
}

type binaryPLYReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryPLYReader) read(typ string) (float64, error) {
	buf := b.buf[:plyTypeSizes[typ]]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	}
	return math.Float64frombits(b.order.Uint64(buf)), nil
}

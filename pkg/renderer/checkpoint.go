package renderer

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// filmLayoutVersion identifies the data layout following the header
const filmLayoutVersion = 1

// Limits on what ReadFilm accepts
const (
	maxFilmHeader = 1 << 20
	maxFilmPixels = 1 << 28
)

// WriteFilm stores the film's radiance sums and sample counts. The layout is
// an 8-byte little-endian header length, a protobuf Struct header, and a
// zlib stream with the sums followed by the counts.
func WriteFilm(f *Film, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"width":               f.Width,
		"height":              f.Height,
		"data_layout_version": filmLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}
	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}
	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	zipWriter := zlib.NewWriter(w)
	if err := binary.Write(zipWriter, binary.LittleEndian, f.sums); err != nil {
		return fmt.Errorf("while writing radiance sums: %w", err)
	}
	if err := binary.Write(zipWriter, binary.LittleEndian, f.counts); err != nil {
		return fmt.Errorf("while writing sample counts: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}
	return nil
}

// ReadFilm loads a film written by WriteFilm
func ReadFilm(in io.Reader) (*Film, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > maxFilmHeader {
		return nil, fmt.Errorf("header length %d exceeds %d bytes", headerLength, maxFilmHeader)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}
	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	fields := hdr.GetFields()
	if v := fields["data_layout_version"].GetNumberValue(); v != filmLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", v)
	}
	width := int(fields["width"].GetNumberValue())
	height := int(fields["height"].GetNumberValue())
	if width <= 0 || height <= 0 || width*height > maxFilmPixels {
		return nil, fmt.Errorf("bad film size %dx%d", width, height)
	}

	f := NewFilm(width, height)
	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, f.sums); err != nil {
		return nil, fmt.Errorf("while reading radiance sums: %w", err)
	}
	if err := binary.Read(zipReader, binary.LittleEndian, f.counts); err != nil {
		return nil, fmt.Errorf("while reading sample counts: %w", err)
	}
	// Reading to the end verifies the stream checksum
	if _, err := io.Copy(io.Discard, zipReader); err != nil {
		return nil, fmt.Errorf("while verifying film data: %w", err)
	}
	for i, c := range f.counts {
		if c < 0 || !f.sums[i].IsFinite() {
			return nil, fmt.Errorf("corrupt pixel %d: sum %v, count %g", i, f.sums[i], c)
		}
	}
	return f, nil
}

// SaveFilm writes the film to a file
func SaveFilm(f *Film, name string) (err error) {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating film file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("while closing film file: %w", cerr)
		}
	}()
	return WriteFilm(f, out)
}

// LoadFilm reads a film from a file
func LoadFilm(name string) (*Film, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening film file: %w", err)
	}
	defer in.Close()
	return ReadFilm(in)
}

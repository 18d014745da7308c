package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	npyMagic  = []byte("\x93NUMPY")
	descrRe   = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	fortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// LoadMatrix reads a 2-D little-endian float32 or float64 .npy file.
func LoadMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix '%s': %w", path, err)
	}
	defer f.Close()

	m, err := ReadMatrix(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix '%s': %w", path, err)
	}
	return m, nil
}

func ReadMatrix(r io.Reader) ([][]float32, error) {
	magic := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic[:len(npyMagic)]) != string(npyMagic) {
		return nil, fmt.Errorf("not a .npy file")
	}

	var headerLen int
	switch major := magic[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("unsupported .npy version %d", major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	descr, rows, cols, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}

	width := 4
	if descr == "<f8" {
		width = 8
	} else if descr != "<f4" {
		return nil, fmt.Errorf("unsupported dtype %q", descr)
	}

	buf := make([]byte, cols*width)
	out := make([][]float32, rows)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row := make([]float32, cols)
		for j := range row {
			if width == 4 {
				row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
			} else {
				row[j] = float32(math.Float64frombits(binary.LittleEndian.Uint64(buf[j*8:])))
			}
		}
		out[i] = row
	}
	return out, nil
}

func parseHeader(h string) (descr string, rows, cols int, err error) {
	m := descrRe.FindStringSubmatch(h)
	if m == nil {
		return "", 0, 0, fmt.Errorf("missing descr in header")
	}
	descr = m[1]

	if f := fortranRe.FindStringSubmatch(h); f != nil && f[1] == "True" {
		return "", 0, 0, fmt.Errorf("fortran order is not supported")
	}

	s := shapeRe.FindStringSubmatch(h)
	if s == nil {
		return "", 0, 0, fmt.Errorf("missing shape in header")
	}
	var dims []int
	for _, part := range strings.Split(s[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", 0, 0, fmt.Errorf("bad shape %q", s[1])
		}
		dims = append(dims, d)
	}
	if len(dims) != 2 {
		return "", 0, 0, fmt.Errorf("expected 2-D array, got shape (%s)", s[1])
	}
	return descr, dims[0], dims[1], nil
}

package bundle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumPy .npy format: a magic string, a version, a header length, then a
// Python dict literal describing dtype, memory order and shape, then the
// raw array data. See numpy/lib/format.py for the authoritative spec.
const npyMagic = "\x93NUMPY"

var errNPYTruncated = errors.New("npy: truncated file")

// parseNPY decodes a .npy dense array into a row-major [][]float32.
//
// Supported arrays: little-endian float32 ("<f4") or float64 ("<f8"),
// C-order, 1-D or 2-D shape. A 1-D array of n values is treated as n
// one-dimensional candidates. float64 data is narrowed to float32, which
// is lossless for values that originated as float32 embeddings.
func parseNPY(data []byte) ([][]float32, error) {
	if len(data) < len(npyMagic)+2 {
		return nil, errNPYTruncated
	}
	if string(data[:len(npyMagic)]) != npyMagic {
		return nil, errors.New("npy: bad magic")
	}

	major := data[6]
	var headerLen, headerStart int
	switch major {
	case 1:
		if len(data) < 10 {
			return nil, errNPYTruncated
		}
		headerLen = int(binary.LittleEndian.Uint16(data[8:10]))
		headerStart = 10
	case 2, 3:
		if len(data) < 12 {
			return nil, errNPYTruncated
		}
		headerLen = int(binary.LittleEndian.Uint32(data[8:12]))
		headerStart = 12
	default:
		return nil, fmt.Errorf("npy: unsupported format version %d.%d", major, data[7])
	}

	if headerStart+headerLen > len(data) {
		return nil, errNPYTruncated
	}
	header := string(data[headerStart : headerStart+headerLen])

	descr, err := headerString(header, "descr")
	if err != nil {
		return nil, err
	}
	fortran, err := headerBool(header, "fortran_order")
	if err != nil {
		return nil, err
	}
	if fortran {
		return nil, errors.New("npy: fortran-order arrays are not supported")
	}
	shape, err := headerShape(header)
	if err != nil {
		return nil, err
	}

	var itemSize int
	switch descr {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q", descr)
	}

	var rows, cols int
	switch len(shape) {
	case 1:
		rows, cols = shape[0], 1
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return nil, fmt.Errorf("npy: unsupported rank %d", len(shape))
	}
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("npy: invalid shape %v", shape)
	}

	payload := data[headerStart+headerLen:]
	if len(payload) < rows*cols*itemSize {
		return nil, errNPYTruncated
	}

	vectors := make([][]float32, rows)
	flat := make([]float32, rows*cols)
	for i := range flat {
		off := i * itemSize
		if itemSize == 4 {
			flat[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
		} else {
			flat[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])))
		}
	}
	for r := 0; r < rows; r++ {
		vectors[r] = flat[r*cols : (r+1)*cols]
	}
	return vectors, nil
}

// headerString extracts a quoted value for key from the header dict, e.g.
// 'descr': '<f4'.
func headerString(header, key string) (string, error) {
	rest, err := headerValue(header, key)
	if err != nil {
		return "", err
	}
	if len(rest) == 0 || (rest[0] != '\'' && rest[0] != '"') {
		return "", fmt.Errorf("npy: malformed header value for %q", key)
	}
	quote := rest[0]
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return "", fmt.Errorf("npy: malformed header value for %q", key)
	}
	return rest[1 : 1+end], nil
}

// headerBool extracts a True/False value for key from the header dict.
func headerBool(header, key string) (bool, error) {
	rest, err := headerValue(header, key)
	if err != nil {
		return false, err
	}
	switch {
	case strings.HasPrefix(rest, "True"):
		return true, nil
	case strings.HasPrefix(rest, "False"):
		return false, nil
	default:
		return false, fmt.Errorf("npy: malformed header value for %q", key)
	}
}

// headerShape extracts the shape tuple, e.g. (1000, 384) or (1000,).
func headerShape(header string) ([]int, error) {
	rest, err := headerValue(header, "shape")
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 || rest[0] != '(' {
		return nil, errors.New("npy: malformed shape")
	}
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return nil, errors.New("npy: malformed shape")
	}

	var shape []int
	for _, part := range strings.Split(rest[1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("npy: malformed shape: %w", err)
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 {
		return nil, errors.New("npy: malformed shape")
	}
	return shape, nil
}

// headerValue returns the header text following "'key':".
func headerValue(header, key string) (string, error) {
	marker := "'" + key + "'"
	i := strings.Index(header, marker)
	if i < 0 {
		return "", fmt.Errorf("npy: header missing %q", key)
	}
	rest := header[i+len(marker):]
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("npy: malformed header near %q", key)
	}
	return strings.TrimLeft(rest[1:], " \t"), nil
}

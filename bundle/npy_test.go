package bundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// npyBytes serializes vectors as a .npy array, padding the header to a
// 64-byte boundary the way numpy.save does.
func npyBytes(t *testing.T, descr string, shape []int, values []float64) []byte {
	t.Helper()

	shapeStr := ""
	for _, n := range shape {
		shapeStr += fmt.Sprintf("%d, ", n)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	buf := []byte(npyMagic)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)

	for _, v := range values {
		switch descr {
		case "<f4":
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
		case "<f8":
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		default:
			t.Fatalf("unsupported test dtype %q", descr)
		}
	}
	return buf
}

func TestParseNPY(t *testing.T) {
	t.Run("Float32Matrix", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
		vectors, err := parseNPY(data)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, vectors)
	})

	t.Run("Float64Matrix", func(t *testing.T) {
		data := npyBytes(t, "<f8", []int{2, 2}, []float64{0.5, 1.5, -2.5, 3})
		vectors, err := parseNPY(data)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.5, 1.5}, {-2.5, 3}}, vectors)
	})

	t.Run("Rank1", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{3}, []float64{7, 8, 9})
		vectors, err := parseNPY(data)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{7}, {8}, {9}}, vectors)
	})

	t.Run("EmptyMatrix", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{0, 4}, nil)
		vectors, err := parseNPY(data)
		require.NoError(t, err)
		assert.Empty(t, vectors)
	})

	t.Run("Version2Header", func(t *testing.T) {
		header := "{'descr': '<f4', 'fortran_order': False, 'shape': (1, 2), }\n"
		buf := []byte(npyMagic)
		buf = append(buf, 2, 0)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(header)))
		buf = append(buf, header...)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(1.5))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(2.5))

		vectors, err := parseNPY(buf)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1.5, 2.5}}, vectors)
	})

	t.Run("BadMagic", func(t *testing.T) {
		_, err := parseNPY([]byte("NOTNUMPY-at-all"))
		assert.ErrorContains(t, err, "bad magic")
	})

	t.Run("Truncated", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
		_, err := parseNPY(data[:len(data)-4])
		assert.ErrorIs(t, err, errNPYTruncated)
	})

	t.Run("FortranOrder", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{1, 1}, []float64{1})
		idx := bytes.Index(data, []byte("False"))
		require.GreaterOrEqual(t, idx, 0)
		copy(data[idx:], []byte("True ")) // same length, header stays aligned
		_, err := parseNPY(data)
		assert.ErrorContains(t, err, "fortran-order")
	})

	t.Run("UnsupportedDtype", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{1, 1}, []float64{1})
		idx := bytes.Index(data, []byte("<f4"))
		require.GreaterOrEqual(t, idx, 0)
		copy(data[idx:], []byte("<i8"))
		_, err := parseNPY(data)
		assert.ErrorContains(t, err, "unsupported dtype")
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		data := npyBytes(t, "<f4", []int{1, 1}, []float64{1})
		data[6] = 9
		_, err := parseNPY(data)
		assert.ErrorContains(t, err, "unsupported format version")
	})
}

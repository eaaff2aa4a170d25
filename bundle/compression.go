package bundle

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var compressExts = []string{".zst", ".gz", ".lz4"}

// splitCompressExt splits a trailing compression extension off name.
// It returns the logical name and the extension ("" when uncompressed).
func splitCompressExt(name string) (string, string) {
	for _, ext := range compressExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), ext
		}
	}
	return name, ""
}

// decompress undoes the compression signalled by name's extension and
// returns the payload together with the logical (stripped) name.
func decompress(name string, data []byte) ([]byte, string, error) {
	logical, ext := splitCompressExt(name)
	switch ext {
	case "":
		return data, logical, nil
	case ".zst":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd decompress %q: %w", name, err)
		}
		return out, logical, nil
	case ".gz":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("gzip decompress %q: %w", name, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, "", fmt.Errorf("gzip decompress %q: %w", name, err)
		}
		return out, logical, nil
	case ".lz4":
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, "", fmt.Errorf("lz4 decompress %q: %w", name, err)
		}
		return out, logical, nil
	default:
		return nil, "", fmt.Errorf("unsupported compression %q", ext)
	}
}

package codec

import (
	"fmt"
	"io"
)

// RankedResult is one rendered output row: a candidate label and its
// squared L2 distance to the query.
type RankedResult struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// DecodeQuery parses a query embedding given as a JSON number array,
// e.g. `[0.1, 0.2, 0.3]`.
func DecodeQuery(data []byte) ([]float32, error) {
	var query []float32
	if err := Default.Unmarshal(data, &query); err != nil {
		return nil, fmt.Errorf("decode query embedding: %w", err)
	}
	return query, nil
}

// EncodeResults writes the ranked results to w as a JSON array followed
// by a newline. An empty result set renders as `[]`, not `null`.
func EncodeResults(w io.Writer, results []RankedResult) error {
	if results == nil {
		results = []RankedResult{}
	}
	data, err := Default.Marshal(results)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

package vecquery_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/vecquery"
)

func Example() {
	ctx := context.Background()

	idx, err := vecquery.New(
		[][]float32{{0, 0}, {1, 0}, {5, 5}},
		[]string{"origin", "east", "far"},
	)
	if err != nil {
		log.Fatal(err)
	}

	results, err := idx.Search(ctx, []float32{0.1, 0}, 2)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		fmt.Printf("%s %.2f\n", r.Label, r.Score)
	}
	// Output:
	// origin 0.01
	// east 0.81
}

package pipeline_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/serdegraph/pkg/cache"
	"github.com/matzehuels/serdegraph/pkg/pipeline"
)

func ExampleRunner_Execute() {
	model := []byte(`{
  "declarations": [
    {"id": "a::Foo", "kind": "struct", "public": true, "serialize": true, "deserialize": true, "fields": ["Bar"]},
    {"id": "a::Bar", "kind": "enum", "public": true, "serialize": true, "deserialize": true}
  ]
}`)

	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
	res, err := runner.Execute(context.Background(), pipeline.Options{
		Model:   model,
		Formats: []string{pipeline.FormatDOT},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, n := range res.Build.Nodes {
		fmt.Println(n.ID, n.Category, n.Strong)
	}
	fmt.Println(res.Stats.Edges, "edge,", len(res.Artifacts), "artifact")
	// Output:
	// a::Bar green []
	// a::Foo green [a::Bar]
	// 1 edge, 1 artifact
}

package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/serdegraph/pkg/builder"
	sgio "github.com/matzehuels/serdegraph/pkg/io"
	"github.com/matzehuels/serdegraph/pkg/observability"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// Build classifies and links the types of m with the rules in opts. Like
// [builder.Build] it returns a partial result together with an
// *errors.UnresolvedReferences when some references stay unresolved.
func Build(ctx context.Context, m *sgio.Model, opts Options) (*builder.Result, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, m.Registry.Len())

	res, err := builder.Build(ctx, m.Registry, resolve.New(m.Registry, opts.Rules), builder.Options{
		OnlyJSON: opts.OnlyJSON,
		FailFast: opts.FailFast,
		Workers:  opts.Workers,
		Logger:   opts.Logger,
	})

	var nodes, edges, unresolved int
	if res != nil {
		nodes, edges, unresolved = len(res.Nodes), len(res.Edges), len(res.Unresolved)
	}
	hooks.OnBuildComplete(ctx, nodes, edges, unresolved, time.Since(start), err)
	return res, err
}

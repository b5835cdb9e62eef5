package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/serdegraph/pkg/cache"
	errs "github.com/matzehuels/serdegraph/pkg/errors"
	sgio "github.com/matzehuels/serdegraph/pkg/io"
	"github.com/matzehuels/serdegraph/pkg/observability"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

// ReadModel returns the raw model bytes of opts, reading ModelPath when
// Model is unset.
func ReadModel(opts Options) ([]byte, error) {
	if opts.Model != nil {
		return opts.Model, nil
	}
	data, err := os.ReadFile(opts.ModelPath)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "model %s", opts.ModelPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return data, nil
}

// Load decodes raw into a frozen registry. Orphan impls are logged, or
// rejected when opts.StrictImpls is set.
func Load(ctx context.Context, raw []byte, opts Options) (*sgio.Model, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.ModelPath)

	m, err := sgio.ReadModel(bytes.NewReader(raw), sgio.ReadOptions{StrictImpls: opts.StrictImpls})
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, opts.ModelPath, 0, 0, time.Since(start), err)
		return nil, err
	}
	warnOrphans(opts, m.Orphans)
	observability.Pipeline().OnLoadComplete(ctx, opts.ModelPath, m.Registry.Len(), len(m.Orphans), time.Since(start), nil)
	return m, nil
}

func warnOrphans(opts Options, orphans []string) {
	for _, id := range orphans {
		opts.Logger.Warn("impl for undeclared type dropped", "type", id)
	}
}

// rulesHash identifies a rule set by its TOML encoding.
func rulesHash(r *resolve.Rules) (string, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return "", fmt.Errorf("encode rules: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

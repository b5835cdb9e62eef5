package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/serdegraph/pkg/buildinfo"
	"github.com/matzehuels/serdegraph/pkg/builder"
	sgio "github.com/matzehuels/serdegraph/pkg/io"
	"github.com/matzehuels/serdegraph/pkg/observability"
	"github.com/matzehuels/serdegraph/pkg/render/drawio"
	"github.com/matzehuels/serdegraph/pkg/render/nodelink"
)

// Render produces every format in formats from res. runID is embedded in
// the JSON report.
func Render(ctx context.Context, res *builder.Result, formats []string, opts Options, runID string) (map[string][]byte, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)

	r := &renderer{res: res, opts: opts, runID: runID}
	artifacts := make(map[string][]byte, len(formats))
	for _, f := range formats {
		data, err := r.render(ctx, f)
		if err != nil {
			err = fmt.Errorf("render %s: %w", f, err)
			hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
			return nil, err
		}
		artifacts[f] = data
	}
	hooks.OnRenderComplete(ctx, formats, time.Since(start), nil)
	return artifacts, nil
}

// renderer shares the DOT source between the DOT, SVG and PNG outputs.
type renderer struct {
	res   *builder.Result
	opts  Options
	runID string
	dot   string
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		err := drawio.Write(r.res, &buf, drawio.Options{
			NoHeader:  r.opts.NoHeader,
			OnlyJSON:  r.opts.OnlyJSON,
			Title:     r.opts.Title,
			Namespace: r.opts.Namespace,
		})
		return buf.Bytes(), err
	case FormatJSON:
		var buf bytes.Buffer
		err := sgio.WriteReport(r.res, &buf, sgio.ReportOptions{RunID: r.runID, Generator: buildinfo.Generator()})
		return buf.Bytes(), err
	case FormatDOT, FormatSVG, FormatPNG:
		dot, err := r.dotSource()
		if err != nil {
			return nil, err
		}
		switch format {
		case FormatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			return nodelink.RenderPNG(ctx, dot)
		}
		return []byte(dot), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func (r *renderer) dotSource() (string, error) {
	if r.dot != "" {
		return r.dot, nil
	}
	g, err := r.res.Graph()
	if err != nil {
		return "", err
	}
	r.dot = nodelink.ToDOT(g, nodelink.Options{Detailed: r.opts.Detailed, RankDir: r.opts.RankDir})
	return r.dot, nil
}

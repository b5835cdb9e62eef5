// Package drawio writes classification results in the draw.io CSV import
// format.
//
// Each public type becomes one row:
//
//	block::Block,rectangle,green,"block/header::Header,block/height::Height",""
//
// The columns are the type ID, the shape (rectangle for structs, ellipse for
// enums), the style name (the classification category) and the strong and
// weak edge targets. The header block maps every category to a fill colour,
// declares the two edge styles (solid for strong, dotted for weak) and adds
// a legend node. Paste the output into Arrange > Insert > Advanced > CSV.
package drawio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/registry"
)

const (
	// DefaultTitle is the diagram title written in the header.
	DefaultTitle = "Tendermint public JSON-serializable structures"
	// DefaultNamespace prefixes draw.io cell IDs.
	DefaultNamespace = "tendermint-"
)

// Options configures CSV output.
type Options struct {
	// NoHeader omits the draw.io preamble and legend.
	NoHeader bool
	// OnlyJSON leaves the weak column empty.
	OnlyJSON bool
	// Title and Namespace customize the header. Empty values use the
	// defaults.
	Title     string
	Namespace string
}

// Shape returns the draw.io shape for a declaration kind.
func Shape(k registry.Kind) string {
	switch k {
	case registry.KindStruct:
		return "rectangle"
	case registry.KindEnum:
		return "ellipse"
	}
	return "rhombus"
}

// Write writes res as draw.io CSV. Rows follow the order of res.Nodes.
func Write(res *builder.Result, w io.Writer, opts Options) error {
	bw := bufio.NewWriter(w)
	if !opts.NoHeader {
		title, ns := opts.Title, opts.Namespace
		if title == "" {
			title = DefaultTitle
		}
		if ns == "" {
			ns = DefaultNamespace
		}
		r := strings.NewReplacer("{title}", title, "{namespace}", ns)
		if _, err := r.WriteString(bw, header); err != nil {
			return err
		}
		bw.WriteString("\n")
	}

	for _, n := range res.Nodes {
		weak := strings.Join(n.Weak, ",")
		if opts.OnlyJSON {
			weak = ""
		}
		bw.WriteString(n.ID)
		bw.WriteByte(',')
		bw.WriteString(Shape(n.Kind))
		bw.WriteByte(',')
		bw.WriteString(n.Category.String())
		bw.WriteByte(',')
		bw.WriteString(strconv.Quote(strings.Join(n.Strong, ",")))
		bw.WriteByte(',')
		bw.WriteString(strconv.Quote(weak))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

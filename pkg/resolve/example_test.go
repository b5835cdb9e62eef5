package resolve_test

import (
	"fmt"

	"github.com/matzehuels/serdegraph/pkg/registry"
	"github.com/matzehuels/serdegraph/pkg/resolve"
)

func ExampleResolver_Resolve() {
	reg := registry.New()
	for _, id := range []string{"block::Block", "block/height::Height", "block/commit::Commit"} {
		_ = reg.Declare(registry.Declaration{ID: id, Kind: registry.KindStruct, Public: true})
	}
	reg.Freeze()

	r := resolve.New(reg, resolve.DefaultRules())
	res, _ := r.Resolve("block/commit::Commit", "Height")
	fmt.Println(res.Target, res.Rule)

	_, err := r.Resolve("block::Block", "Unknown")
	fmt.Println(err)
	// Output:
	// block/height::Height super-module
	// could not resolve struct or enum: block::Block, field: Unknown
}

package resolve

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/serdegraph/pkg/errors"
	"github.com/matzehuels/serdegraph/pkg/ident"
)

// Rules is the declarative part of resolution: everything that is specific
// to one target codebase rather than to its naming conventions.
//
// Rules can be loaded from TOML:
//
//	domains = ["abci"]
//
//	[snake_overrides]
//	AppHash = "hash"
//
//	[[pairs]]
//	source    = "block/id::Id"
//	reference = "PartSetHeader"
//	target    = "block/parts::Header"
//
//	[[skips]]
//	source    = "genesis::Genesis"
//	reference = "AppState"
type Rules struct {
	// Domains are top-level module folders that relative and bare
	// references may be rooted under (domain-qualified and
	// domain-shortened rules). Tried in order.
	Domains []string `toml:"domains"`

	// SnakeOverrides replace the general CamelCase conversion for specific
	// short names.
	SnakeOverrides map[string]string `toml:"snake_overrides"`

	// Pairs map a literal (source, reference) to a target. An empty Source
	// matches every source.
	Pairs []Pair `toml:"pairs"`

	// Skips name references that intentionally produce no edge.
	Skips []Skip `toml:"skips"`
}

// Pair is a named-pair exception.
type Pair struct {
	Source    string `toml:"source,omitempty"`
	Reference string `toml:"reference"`
	Target    string `toml:"target"`
}

// Skip is a known non-resolvable field, usually a foreign type.
type Skip struct {
	Source    string `toml:"source"`
	Reference string `toml:"reference"`
}

// matches reports whether the pair applies to source and ref.
func (p Pair) matches(source, ref string) bool {
	return (p.Source == "" || p.Source == source) && p.Reference == ref
}

// DefaultRules returns the built-in exception table for the tendermint-rs
// type tree.
func DefaultRules() *Rules {
	return &Rules{
		Domains: []string{"abci"},
		SnakeOverrides: map[string]string{
			"AppHash": "hash",
			"Type":    "msg_type",
		},
		Pairs: []Pair{
			{Source: "node/info::Info", Reference: "Channels", Target: "channel::Channels"},
			{Source: "block/id::Id", Reference: "PartSetHeader", Target: "block/parts::Header"},
			{Source: "vote/canonical_vote::CanonicalVote", Reference: "super::Type", Target: "vote::Type"},
			{Reference: "ChainId", Target: "chain/id::Id"},
			{Reference: "Height", Target: "block/height::Height"},
			{Reference: "Round", Target: "block/round::Round"},
			{Reference: "BlockId", Target: "block/id::Id"},
			{Reference: "SignedHeader", Target: "block/signed_header::SignedHeader"},
		},
		Skips: []Skip{
			{Source: "genesis::Genesis", Reference: "AppState"},
			{Source: "private_key::PrivateKey", Reference: "Ed25519"},
			{Source: "public_key::PublicKey", Reference: "Ed25519"},
			{Source: "public_key::PublicKey", Reference: "Secp256k1"},
			{Source: "timeout::Timeout", Reference: "Duration"},
			{Source: "time::Time", Reference: "Utc"},
			{Source: "time::Time", Reference: "DateTime"},
			{Source: "proposal/sign_proposal::SignedProposalResponse", Reference: "RemoteSignerError"},
			{Source: "vote/sign_vote::SignedVoteResponse", Reference: "RemoteSignerError"},
			{Source: "public_key/pub_key_response::PubKeyResponse", Reference: "RemoteSignerError"},
			{Source: "signature::Signature", Reference: "Ed25519Signature"},
			{Source: "validator::SimpleValidator", Reference: "tendermint_proto::crypto::PublicKey"},
		},
	}
}

// Empty returns a rule set with no exceptions: only the naming conventions
// apply.
func Empty() *Rules { return &Rules{} }

// LoadRules reads rules from a TOML file.
func LoadRules(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "rules file %s", path)
		}
		return nil, err
	}
	defer f.Close()

	r, err := DecodeRules(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidRules, err, "load rules %s", path)
	}
	return r, nil
}

// DecodeRules decodes and validates TOML rules.
func DecodeRules(r io.Reader) (*Rules, error) {
	var rules Rules
	md, err := toml.NewDecoder(r).Decode(&rules)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidRules, err, "decode rules")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidRules, "unknown key %q", undec[0].String())
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Encode writes the rules as TOML.
func (r *Rules) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(r)
}

// Validate checks the table for entries that could never match and for
// ambiguous duplicates.
func (r *Rules) Validate() error {
	for _, d := range r.Domains {
		if d == "" || strings.Contains(d, ident.NamespaceSep) {
			return errs.New(errs.ErrCodeInvalidRules, "invalid domain %q", d)
		}
	}
	for name, snake := range r.SnakeOverrides {
		if name == "" || snake == "" {
			return errs.New(errs.ErrCodeInvalidRules, "snake override %q -> %q: both sides required", name, snake)
		}
	}

	type key struct{ source, ref string }
	seen := make(map[key]bool)
	for i, p := range r.Pairs {
		if p.Reference == "" {
			return errs.New(errs.ErrCodeInvalidRules, "pair %d: reference is required", i)
		}
		if _, err := ident.Decompose(p.Target); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidRules, err, "pair %d: target", i)
		}
		if p.Source != "" {
			if _, err := ident.Decompose(p.Source); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidRules, err, "pair %d: source", i)
			}
		}
		k := key{p.Source, p.Reference}
		if seen[k] {
			return errs.New(errs.ErrCodeInvalidRules, "pair %d: duplicate entry for %s/%s", i, p.Source, p.Reference)
		}
		seen[k] = true
	}

	clear(seen)
	for i, s := range r.Skips {
		if s.Reference == "" {
			return errs.New(errs.ErrCodeInvalidRules, "skip %d: reference is required", i)
		}
		if _, err := ident.Decompose(s.Source); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidRules, err, "skip %d: source", i)
		}
		k := key{s.Source, s.Reference}
		if seen[k] {
			return errs.New(errs.ErrCodeInvalidRules, "skip %d: duplicate entry for %s/%s", i, s.Source, s.Reference)
		}
		seen[k] = true
	}
	return nil
}

// Merge returns a copy of r with other's entries appended. Overrides in
// other win.
func (r *Rules) Merge(other *Rules) *Rules {
	out := &Rules{
		Domains:        slices.Clone(r.Domains),
		SnakeOverrides: make(map[string]string, len(r.SnakeOverrides)+len(other.SnakeOverrides)),
		Pairs:          slices.Concat(r.Pairs, other.Pairs),
		Skips:          slices.Concat(r.Skips, other.Skips),
	}
	for _, d := range other.Domains {
		if !slices.Contains(out.Domains, d) {
			out.Domains = append(out.Domains, d)
		}
	}
	for k, v := range r.SnakeOverrides {
		out.SnakeOverrides[k] = v
	}
	for k, v := range other.SnakeOverrides {
		out.SnakeOverrides[k] = v
	}
	return out
}

package cache

// ReportKeyOpts holds the build options that change a report.
type ReportKeyOpts struct {
	RulesHash   string `json:"rules"`
	OnlyJSON    bool   `json:"only_json"`
	StrictImpls bool   `json:"strict_impls"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	NoHeader  bool   `json:"no_header,omitempty"`
	Title     string `json:"title,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	RankDir   string `json:"rankdir,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always yield the same key.
type Keyer interface {
	// ReportKey keys the JSON report built from a model.
	ReportKey(modelHash string, opts ReportKeyOpts) string
	// ArtifactKey keys one rendered output of a report.
	ArtifactKey(reportHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "report:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(modelHash string, opts ReportKeyOpts) string {
	return hashKey("report", modelHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(reportHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", reportHash, opts)
}

package matcher

const (
	defaultMinAutoFix     = 0.85
	defaultSlugThreshold  = 0.9
	defaultIndexThreshold = 0.8
	defaultAutoRepairMin  = 85
)

// Policy controls strategy acceptance thresholds. Similarity thresholds are
// on a 0-1 scale.
type Policy struct {
	// MinAutoFix is the Levenshtein fallback floor and the confidence below
	// which an accepted index match still needs review.
	MinAutoFix float64
	// SlugThreshold must be exceeded by slug similarity.
	SlugThreshold float64
	// IndexThreshold must be exceeded by an index match.
	IndexThreshold float64
	// AutoRepairConfidence is the 0-100 floor BatchMatchOrphans uses for the
	// auto repair list.
	AutoRepairConfidence int
}

// DefaultPolicy returns the standard matcher thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinAutoFix:           defaultMinAutoFix,
		SlugThreshold:        defaultSlugThreshold,
		IndexThreshold:       defaultIndexThreshold,
		AutoRepairConfidence: defaultAutoRepairMin,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MinAutoFix <= 0 || p.MinAutoFix > 1 {
		p.MinAutoFix = def.MinAutoFix
	}
	if p.SlugThreshold <= 0 || p.SlugThreshold > 1 {
		p.SlugThreshold = def.SlugThreshold
	}
	if p.IndexThreshold <= 0 || p.IndexThreshold > 1 {
		p.IndexThreshold = def.IndexThreshold
	}
	if p.AutoRepairConfidence <= 0 || p.AutoRepairConfidence > 100 {
		p.AutoRepairConfidence = def.AutoRepairConfidence
	}
	return p
}

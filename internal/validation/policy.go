package validation

const (
	defaultSuggestThreshold    = 0.7
	defaultAutoRepairThreshold = 0.85
)

// Policy holds the thresholds used by the room-aware validators.
type Policy struct {
	// SuggestThreshold is the similarity a near miss must exceed before an
	// entry slug is suggested.
	SuggestThreshold float64
	// AutoRepairThreshold is the 0-1 confidence CheckCanonical requires to
	// mark a filename auto-repairable.
	AutoRepairThreshold float64
}

// DefaultPolicy returns the standard validation thresholds.
func DefaultPolicy() Policy {
	return Policy{
		SuggestThreshold:    defaultSuggestThreshold,
		AutoRepairThreshold: defaultAutoRepairThreshold,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.SuggestThreshold <= 0 || p.SuggestThreshold > 1 {
		p.SuggestThreshold = def.SuggestThreshold
	}
	if p.AutoRepairThreshold <= 0 || p.AutoRepairThreshold > 1 {
		p.AutoRepairThreshold = def.AutoRepairThreshold
	}
	return p
}

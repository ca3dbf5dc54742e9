package governance

const (
	defaultAutoApprove        = 0.85
	defaultGovernanceApprove  = 0.70
	defaultIntegrityThreshold = 60
)

// Policy holds the approval floors. Confidence floors are fractions; the
// integrity threshold is an average room score between 0 and 100.
type Policy struct {
	AutoApprove        float64
	GovernanceApprove  float64
	IntegrityThreshold int
}

// DefaultPolicy returns the standard floors.
func DefaultPolicy() Policy {
	return Policy{
		AutoApprove:        defaultAutoApprove,
		GovernanceApprove:  defaultGovernanceApprove,
		IntegrityThreshold: defaultIntegrityThreshold,
	}
}

func (p Policy) normalized() Policy {
	if p.AutoApprove <= 0 || p.AutoApprove > 1 {
		p.AutoApprove = defaultAutoApprove
	}
	if p.GovernanceApprove <= 0 || p.GovernanceApprove > p.AutoApprove {
		p.GovernanceApprove = min(defaultGovernanceApprove, p.AutoApprove)
	}
	if p.IntegrityThreshold < 0 || p.IntegrityThreshold > 100 {
		p.IntegrityThreshold = defaultIntegrityThreshold
	}
	return p
}

func percent(fraction float64) int {
	return int(fraction*100 + 0.5)
}

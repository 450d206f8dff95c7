package score

import (
	"billscan/internal/domain"
	"billscan/internal/validator"
)

// Band thresholds, inclusive lower bounds on the normalized 0-1 scale.
const (
	highThreshold   = 0.8
	mediumThreshold = 0.6
)

// Normalize reconciles the scoring gateway's ambiguous confidence scale. The
// upstream model sometimes reports 0-1 fractions and sometimes 0-100
// percentages; anything above 1 is read as a percentage. This is applied
// exactly once, here, at the boundary where scores enter the system —
// downstream code only ever sees 0-1 values.
func Normalize(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BandFor buckets a normalized confidence into its display tier.
func BandFor(v float64) domain.ConfidenceBand {
	switch {
	case v >= highThreshold:
		return domain.BandHigh
	case v >= mediumThreshold:
		return domain.BandMedium
	default:
		return domain.BandLow
	}
}

// FieldScore is one field's normalized confidence with its display band.
type FieldScore struct {
	Confidence float64               `json:"confidence"`
	Band       domain.ConfidenceBand `json:"band"`
	Reasoning  string                `json:"reasoning,omitempty"`
}

// ScoreSet holds normalized per-field scores keyed by canonical and alias
// field names, mirroring the validation result set's naming. Alias entries
// share the canonical entries' pointers.
type ScoreSet struct {
	Fields  map[string]*FieldScore `json:"fields"`
	Overall *FieldScore            `json:"overall_confidence,omitempty"`
}

// Get returns a field's score by canonical or alias name.
func (s *ScoreSet) Get(name string) *FieldScore {
	return s.Fields[validator.Canonical(name)]
}

// Merge normalizes a raw score set and fans it out onto the canonical+alias
// field-name set used by the validation engine. Incoming keys may themselves
// use either naming convention; both resolve to one shared entry.
func Merge(raw map[string]domain.ConfidenceScore, overall *domain.ConfidenceScore) *ScoreSet {
	set := &ScoreSet{Fields: make(map[string]*FieldScore, len(raw))}

	for name, cs := range raw {
		canon := validator.Canonical(name)
		conf := Normalize(cs.Confidence)
		fs := &FieldScore{
			Confidence: conf,
			Band:       BandFor(conf),
			Reasoning:  cs.Reasoning,
		}
		// Last write wins if upstream sends both names for one field.
		set.Fields[canon] = fs
	}

	for alias, canon := range validator.Aliases {
		if fs, ok := set.Fields[canon]; ok {
			set.Fields[alias] = fs
		}
	}

	if overall != nil {
		conf := Normalize(overall.Confidence)
		set.Overall = &FieldScore{
			Confidence: conf,
			Band:       BandFor(conf),
			Reasoning:  overall.Reasoning,
		}
	}

	return set
}

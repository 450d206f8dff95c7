package validator

// Summary holds aggregate counts over a validation result set. Each canonical
// field counts once; aliases are views, not extra entries. AllValid ignores
// warnings: a set with warnings but no errors is still all-valid.
type Summary struct {
	Total    int  `json:"total"`
	Valid    int  `json:"valid"`
	Warnings int  `json:"warnings"`
	Errors   int  `json:"errors"`
	AllValid bool `json:"all_valid"`
}

// Summarize computes the summary for a result set.
func Summarize(results Results) Summary {
	s := Summary{}
	for _, field := range CanonicalFields {
		res, ok := results[field]
		if !ok {
			continue
		}
		s.Total++
		if res.Valid {
			s.Valid++
		}
		if res.Error != "" {
			s.Errors++
		}
		if res.Warning != "" {
			s.Warnings++
		}
	}
	s.AllValid = s.Errors == 0
	return s
}

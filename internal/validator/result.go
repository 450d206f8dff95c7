package validator

// Result is the validation outcome for a single canonical field. A warning is
// informational and never flips Valid to false; only Error does.
type Result struct {
	Value        string   `json:"value"`
	Valid        bool     `json:"valid"`
	Error        string   `json:"error,omitempty"`
	Warning      string   `json:"warning,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

// Results maps field names to validation results. Legacy alias names are
// present alongside their canonical counterparts and point at the identical
// *Result, so the two names can never drift apart.
type Results map[string]*Result

// CanonicalFields lists the canonical field names in display order.
var CanonicalFields = []string{
	"vendor_name",
	"reference_number",
	"transaction_date",
	"payment_due_date",
	"total_amount",
	"currency",
	"customer_name",
}

// Aliases maps legacy field names, still used by older consumers, to their
// canonical counterparts.
var Aliases = map[string]string{
	"invoice_number": "reference_number",
	"invoice_date":   "transaction_date",
	"amount_due":     "total_amount",
	"due_date":       "payment_due_date",
}

// Canonical resolves a field name to its canonical form. Unknown names are
// returned unchanged.
func Canonical(name string) string {
	if canon, ok := Aliases[name]; ok {
		return canon
	}
	return name
}

// Get returns the result for a field by canonical or alias name.
func (r Results) Get(name string) *Result {
	return r[Canonical(name)]
}

// withAliases inserts alias keys sharing the canonical entries' pointers.
func (r Results) withAliases() Results {
	for alias, canon := range Aliases {
		if res, ok := r[canon]; ok {
			r[alias] = res
		}
	}
	return r
}

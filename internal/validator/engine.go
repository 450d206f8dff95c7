package validator

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"billscan/internal/domain"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Known ISO 4217 currency codes (common subset).
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "INR": true,
	"AUD": true, "CAD": true, "CHF": true, "CNY": true, "SGD": true,
	"AED": true, "SAR": true, "HKD": true, "MYR": true, "THB": true,
	"NZD": true, "SEK": true, "NOK": true, "DKK": true, "ZAR": true,
}

const (
	dateRangeYearsPast   = 5
	dateRangeYearsFuture = 2
)

// Engine runs the deterministic field validation rules. It performs no I/O;
// the same input and clock always produce the same output. The clock only
// affects the transaction-date plausibility window.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithNow overrides the engine's clock. For tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Validate maps an extracted field set to a validation result set. Every
// canonical field gets exactly one Result; alias names share the canonical
// pointers. Warnings never mark a field invalid.
func (e *Engine) Validate(f *domain.ExtractedFields) Results {
	now := e.now().UTC()

	results := Results{
		"vendor_name":      validateVendorName(f.VendorName),
		"reference_number": validateReferenceNumber(f.ReferenceNumber),
		"currency":         validateCurrency(f.Currency),
		"customer_name":    validateCustomerName(f.CustomerName),
		"total_amount":     validateTotalAmount(f.TotalAmount, f.LineItems),
	}

	txn, txnDate := validateDate(f.TransactionDate, now)
	results["transaction_date"] = txn
	results["payment_due_date"] = validateDueDate(f.PaymentDueDate, txnDate, now)

	return results.withAliases()
}

func validateVendorName(v string) *Result {
	trimmed := strings.TrimSpace(v)
	if len(trimmed) < 2 {
		return &Result{Value: trimmed, Valid: false, Error: "vendor name is missing or too short"}
	}
	return &Result{Value: trimmed, Valid: true}
}

func validateReferenceNumber(v domain.FlexString) *Result {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return &Result{Value: s, Valid: false, Error: "reference number is missing"}
	}
	return &Result{Value: s, Valid: true}
}

// validateDate checks the strict YYYY-MM-DD format and that the value is a
// real calendar date. Dates far outside the expected window get a warning but
// stay valid; a receipt from six years ago is unusual, not impossible.
func validateDate(v string, now time.Time) (*Result, *time.Time) {
	s := strings.TrimSpace(v)
	if s == "" {
		return &Result{Value: s, Valid: false, Error: "transaction date is missing"}, nil
	}
	if !datePattern.MatchString(s) {
		return &Result{Value: s, Valid: false, Error: fmt.Sprintf("date %q is not in YYYY-MM-DD format", s)}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return &Result{Value: s, Valid: false, Error: fmt.Sprintf("date %q is not a real calendar date", s)}, nil
	}

	res := &Result{Value: s, Valid: true}
	earliest := now.AddDate(-dateRangeYearsPast, 0, 0)
	latest := now.AddDate(dateRangeYearsFuture, 0, 0)
	if t.Before(earliest) || t.After(latest) {
		res.Warning = fmt.Sprintf("date %s is outside the expected range (%d years past to %d years ahead)", s, dateRangeYearsPast, dateRangeYearsFuture)
	}
	return res, &t
}

// validateDueDate applies the date-format rule only when a due date is
// present, then requires due >= transaction. Equal dates are valid. When the
// transaction date itself is unusable the ordering check degrades to a
// warning.
func validateDueDate(v string, txnDate *time.Time, now time.Time) *Result {
	s := strings.TrimSpace(v)
	if s == "" {
		return &Result{Value: s, Valid: true}
	}

	res, due := validateDate(s, now)
	if !res.Valid {
		return res
	}

	if txnDate == nil {
		res.Warning = "cannot check ordering: transaction date is missing or invalid"
		return res
	}
	if due.Before(*txnDate) {
		return &Result{
			Value: s, Valid: false,
			Error: fmt.Sprintf("payment due date %s is before transaction date %s", s, txnDate.Format("2006-01-02")),
		}
	}
	return res
}

func validateTotalAmount(v domain.FlexString, items []domain.LineItem) *Result {
	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return &Result{Value: raw, Valid: false, Error: "total amount is missing"}
	}

	total, ok := ParseAmount(raw)
	if !ok {
		return &Result{Value: raw, Valid: false, Error: fmt.Sprintf("total amount %q is not a number", raw)}
	}
	if total <= 0 {
		return &Result{Value: raw, Valid: false, NumericValue: &total, Error: "total amount must be greater than zero"}
	}

	res := &Result{Value: raw, Valid: true, NumericValue: &total}

	if len(items) > 0 {
		var sum float64
		summable := true
		for _, item := range items {
			amt, ok := ParseAmount(item.Amount.String())
			if !ok {
				summable = false
				break
			}
			sum += amt
		}
		if summable {
			if diff := math.Abs(sum - total); diff > sumTolerance(total) {
				res.Warning = fmt.Sprintf("line items sum to %.2f but total is %.2f (difference %.2f)", sum, total, diff)
			}
		} else {
			res.Warning = "line item amounts could not all be parsed; sum check skipped"
		}
	}

	return res
}

func validateCurrency(v string) *Result {
	s := strings.ToUpper(strings.TrimSpace(v))
	if s == "" {
		return &Result{Value: "USD", Valid: true, Warning: "currency missing, defaulted to USD"}
	}
	res := &Result{Value: s, Valid: true}
	if !knownCurrencies[s] {
		res.Warning = fmt.Sprintf("currency %q is not a recognized ISO 4217 code", s)
	}
	return res
}

func validateCustomerName(v string) *Result {
	s := strings.TrimSpace(v)
	if s == "" {
		return &Result{Value: s, Valid: true, Warning: "customer name not found on document"}
	}
	return &Result{Value: s, Valid: true}
}

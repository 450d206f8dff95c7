package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"billscan/internal/validator"
)

func TestSummarize_MixedResults(t *testing.T) {
	f := validFields()
	f.ReferenceNumber = "" // error
	f.Currency = ""        // warning (defaulted)
	f.CustomerName = ""    // warning
	results := testEngine().Validate(f)

	s := validator.Summarize(results)
	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 6, s.Valid)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 2, s.Warnings)
	assert.False(t, s.AllValid)
}

func TestSummarize_WarningsDoNotBreakAllValid(t *testing.T) {
	f := validFields()
	f.CustomerName = ""
	s := validator.Summarize(testEngine().Validate(f))

	assert.Equal(t, 1, s.Warnings)
	assert.Zero(t, s.Errors)
	assert.True(t, s.AllValid, "warnings alone leave the set all-valid")
}

func TestSummarize_AliasesNotDoubleCounted(t *testing.T) {
	results := testEngine().Validate(validFields())

	// The result set carries alias keys, but the summary counts canonical
	// fields only.
	assert.Greater(t, len(results), len(validator.CanonicalFields))
	s := validator.Summarize(results)
	assert.Equal(t, len(validator.CanonicalFields), s.Total)
}

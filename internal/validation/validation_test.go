package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChain(t *testing.T) {
	require.NotNil(t, New())

	chain := New(FailFast())
	require.True(t, chain.failFast)

	chain2 := New(AllErrors())
	require.False(t, chain2.failFast)
}

func TestChainAddValidator(t *testing.T) {
	chain := New()
	require.Empty(t, chain.validators)
	chain.AddValidator(NewBooleanValidator(true, ""))
	require.Len(t, chain.validators, 1)
}

func TestChainAddAssertion(t *testing.T) {
	chain := New()
	require.Empty(t, chain.validators)
	chain.AddAssertion(true, "")
	require.Len(t, chain.validators, 1)
}

func TestChainValidateSingleFailure(t *testing.T) {
	chain := New().AddValidator(NewEmptyStringValidator("field", ""))
	require.Nil(t, chain.violations)
	err := chain.Validate()
	require.NotNil(t, chain.violations)
	require.EqualError(t, err, "the [field] is required")
}

func TestChainValidateFailFastStopsAtFirst(t *testing.T) {
	chain := New(FailFast()).
		AddValidator(NewEmptyStringValidator("field", "")).
		AddAssertion(false, "this is false")
	err := chain.Validate()
	require.Nil(t, chain.violations)
	require.EqualError(t, err, "the [field] is required")
}

func TestChainValidateAllErrorsJoinsEverything(t *testing.T) {
	chain := New(AllErrors()).
		AddValidator(NewEmptyStringValidator("field", "")).
		AddAssertion(false, "this is false")
	err := chain.Validate()
	require.NotNil(t, chain.violations)
	require.EqualError(t, err, "the [field] is required; this is false")
}

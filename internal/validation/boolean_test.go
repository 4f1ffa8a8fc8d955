package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBooleanValidatorOK(t *testing.T) {
	require.NoError(t, NewBooleanValidator(true, "unused").Validate())
}

func TestBooleanValidatorFails(t *testing.T) {
	err := NewBooleanValidator(false, "condition was false").Validate()
	require.EqualError(t, err, "condition was false")
}

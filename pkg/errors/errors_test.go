package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewInvalidCorpusError("facility fac-1 has invalid coordinates", fmt.Errorf("lat 123"))
	assert.Equal(t, "INVALID_CORPUS: facility fac-1 has invalid coordinates: lat 123", err.Error())

	plain := NewValidationError("limit must be numeric")
	assert.Equal(t, "VALIDATION: limit must be numeric", plain.Error())
}

func TestTypeOf_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", NewMissingLookupTableError("postal code"))
	assert.Equal(t, ErrorTypeMissingLookupTable, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewInvalidCorpusError("nil snapshot", nil)))
	assert.True(t, IsFatal(NewMissingLookupTableError("postal code")))
	assert.False(t, IsFatal(NewExternalError("embedder timed out", nil)))
	assert.False(t, IsFatal(nil))
}

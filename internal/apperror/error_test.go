package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppErrorThroughWrapping(t *testing.T) {
	base := NewInsufficientStock("m-1", 4, 3)
	wrapped := fmt.Errorf("record movement: %w", base)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(3), appErr.Details["available"])
	assert.True(t, HasCode(wrapped, CodeInsufficientStock))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatusFallback(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(NewNotFound("material", "x")))
	assert.True(t, IsNotFound(NewNotFound("entry", "y")))
	assert.False(t, IsNotFound(NewValidation("bad")))
}

func TestImportReadUnwraps(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewImportRead(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), CodeImportRead)
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("quantity must be positive").WithDetail("field", "quantity")
	assert.Equal(t, "quantity", err.Details["field"])
}

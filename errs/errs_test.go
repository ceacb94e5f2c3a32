package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseErrorClassifiesCauses(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
		is     func(error) bool
	}{
		{"record not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), http.StatusNotFound, IsNotFound},
		{"duplicate", errors.New("UNIQUE constraint failed: categories.name"), http.StatusConflict, IsAlreadyExists},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), http.StatusBadRequest, IsForeignKeyConstraintError},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, func(err error) bool {
			return errors.Is(err, ErrDatabaseConnection)
		}},
		{"other", errors.New("syntax error near FROM"), http.StatusInternalServerError, func(err error) bool {
			return errors.Is(err, ErrDatabaseQuery)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("query", "project", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.True(t, tt.is(err))
		})
	}
}

func TestStatusOfPlainErrorIs500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.Equal(t, http.StatusUnsupportedMediaType, StatusOf(fmt.Errorf("wrapped: %w", NewUnsupportedMediaTypeError("hero_media", "text/plain", []string{"image/png"}))))
}

func TestMessageAndFullError(t *testing.T) {
	err := NewInvalidFieldError("id", "must be a positive integer")
	assert.Equal(t, "invalid field id: must be a positive integer", err.Message())
	assert.True(t, IsInvalidFieldError(err))
	assert.True(t, IsValidation(err))

	wrapped := NewTransactionFailedError("update", NewStorageError("promote", "uploads/a.png", errors.New("disk full")))
	assert.True(t, IsTransactionFailedError(wrapped))
	assert.Equal(t, "transaction failed: transaction failed during update -> media storage failure: could not promote uploads/a.png -> disk full", wrapped.GetFullError())
	assert.False(t, IsStorageError(wrapped))

	assert.True(t, IsMaxBodySizeExceededError(NewMaxBodySizeExceededError(10)))
	assert.True(t, IsMalformedPayloadError(NewMalformedPayloadError("form", errors.New("eof"))))
	assert.False(t, IsValidation(NewInternalError("x")))
}

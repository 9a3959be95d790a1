package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		is     error
	}{
		{"not found", NotFoundError("rent", "r1"), http.StatusNotFound, ErrCodeNotFound, ErrNotFound},
		{"validation", ValidationError("leaseEnd must be after %s", "2025-01-01"), http.StatusBadRequest, ErrCodeValidation, ErrValidation},
		{"permission", PermissionError("rent:update"), http.StatusForbidden, ErrCodeForbidden, ErrPermissionDenied},
		{"store", StoreError("update rent", "r1", errors.New("boom")), http.StatusInternalServerError, ErrCodeInternal, ErrStore},
		{"wrapped", fmt.Errorf("renew: %w", NotFoundError("property", "p1")), http.StatusNotFound, ErrCodeNotFound, ErrNotFound},
		{"plain", errors.New("unexpected"), http.StatusInternalServerError, ErrCodeInternal, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleAppError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			if tc.is != nil {
				assert.ErrorIs(t, tc.err, tc.is)
			}
		})
	}
}

func TestStoreErrorKeepsRecordAndOperation(t *testing.T) {
	err := StoreError("commit batch", "rent-7", errors.New("connection reset"))
	assert.Contains(t, err.Error(), "commit batch")
	assert.Contains(t, err.Error(), "rent-7")
	assert.Contains(t, err.Error(), "connection reset")
}

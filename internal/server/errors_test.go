package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	cashsessiondomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", customerdomain.ErrInvalidName, http.StatusBadRequest},
		{"sale validation", saledomain.ErrEmptyCart, http.StatusBadRequest},
		{"not found", saledomain.ErrNotFound, http.StatusNotFound},
		{"conflict duplicate", customerdomain.ErrDuplicate, http.StatusConflict},
		{"conflict note exists", creditnotedomain.ErrNoteExists, http.StatusConflict},
		{"conflict session open", cashsessiondomain.ErrAlreadyOpen, http.StatusConflict},
		{"quota denied", fiscaldomain.ErrQuotaDenied, http.StatusForbidden},
		{"env unconfirmed", fiscaldomain.ErrEnvironmentUnconfirmed, http.StatusPreconditionFailed},
		{"no certificate", fiscaldomain.ErrNoCertificate, http.StatusPreconditionFailed},
		{"settings incomplete", fiscaldomain.ErrSettingsIncomplete, http.StatusPreconditionFailed},
		{"unknown", ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			require.Equal(t, tc.status, status)
		})
	}
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("name", "invalid_name", "invalid name"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	require.Equal(t, "invalid_name", payload.Errors[0].Code)
}

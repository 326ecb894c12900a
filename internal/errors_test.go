package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/isoforge/internal"
	"github.com/dmitrymomot/isoforge/pkg/service"
	"github.com/dmitrymomot/isoforge/pkg/view"
)

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		code int
	}{
		{name: "not authorized", err: fmt.Errorf("guard: %w", service.ErrNotAuthorized), code: http.StatusForbidden},
		{name: "module not found", err: fmt.Errorf("%w: %q", view.ErrModuleNotFound, "x"), code: http.StatusNotFound},
		{name: "no route", err: internal.ErrNoRoute, code: http.StatusNotFound},
		{name: "invalid vpath", err: view.ErrInvalidVPath, code: http.StatusBadRequest},
		{name: "explicit http error", err: internal.NewHTTPError(http.StatusTeapot, "tea"), code: http.StatusTeapot},
		{name: "anything else", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := internal.AsHTTPError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
		})
	}

	assert.Nil(t, internal.AsHTTPError(nil))
}

func TestHTTPError_Options(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	err := internal.ErrInternal("Something broke",
		internal.WithErrorTitle("Oops"),
		internal.WithErrorDetail("try later"),
		internal.WithCause(cause),
	)

	assert.Equal(t, "Something broke", err.Error())
	assert.Equal(t, "Oops", err.Title)
	assert.Equal(t, "try later", err.Detail)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", err.StatusText())
}

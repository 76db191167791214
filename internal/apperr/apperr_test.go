package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation -> 400", apperr.Validation("bad"), http.StatusBadRequest},
		{"not found -> 404", apperr.NotFound("missing"), http.StatusNotFound},
		{"conflict -> 409", apperr.Conflict("taken"), http.StatusConflict},
		{"backend -> 502", apperr.Backend("down", sql.ErrConnDone), http.StatusBadGateway},
		{"format -> 500", apperr.Format("metadata", errors.New("eof")), http.StatusInternalServerError},
		{"wrapped keeps kind", fmt.Errorf("ctx: %w", apperr.Forbidden("no")), http.StatusForbidden},
		{"plain error -> 500", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err))
		})
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := apperr.Backend("Failed to update order", errors.New("dial tcp: refused"))

	assert.Equal(t, "Failed to update order", apperr.Message(err))
	assert.Contains(t, err.Error(), "dial tcp")
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindBackend})
	assert.NotErrorIs(t, err, &apperr.Error{Kind: apperr.KindNotFound})
}

func TestFormatNotesField(t *testing.T) {
	err := apperr.Format("metadata", errors.New("unexpected end of JSON input"))

	assert.Equal(t, "Failed to load data", apperr.Message(err))
	assert.Contains(t, err.Error(), "field metadata")
	assert.True(t, apperr.IsKind(err, apperr.KindFormat))
}

func TestMessageForUnknownError(t *testing.T) {
	assert.Equal(t, "Something went wrong, please try again", apperr.Message(errors.New("x")))
	assert.False(t, apperr.IsKind(nil, apperr.KindInternal))
}

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/sociojustice/pkg/apperr"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindBadRequest:      http.StatusBadRequest,
		apperr.KindUnauthorized:    http.StatusUnauthorized,
		apperr.KindForbidden:       http.StatusForbidden,
		apperr.KindNotFound:        http.StatusNotFound,
		apperr.KindConflict:        http.StatusConflict,
		apperr.KindUpstreamAuth:    http.StatusInternalServerError,
		apperr.KindUpstreamRequest: http.StatusInternalServerError,
		apperr.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), string(kind))
	}
}

func TestFromAndKindOf(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(plain))
	assert.Equal(t, apperr.KindInternal, apperr.From(plain).Kind)
	assert.ErrorIs(t, apperr.From(plain), plain)

	wrapped := fmt.Errorf("load decision: %w", apperr.NotFound("decision not found"))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(wrapped))
	assert.Equal(t, "decision not found", apperr.From(wrapped).Message)
	assert.ErrorIs(t, wrapped, apperr.NotFound(""))
	assert.NotErrorIs(t, wrapped, apperr.BadRequest(""))

	assert.Nil(t, apperr.From(nil))
}

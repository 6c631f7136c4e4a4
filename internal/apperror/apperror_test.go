package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, Validation("bad", nil).HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Authorization("no").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, Authentication("who").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Server("boom", nil).HTTPStatus())
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("duplicate key")
	err := Server("could not create user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not create user", err.Error())
}

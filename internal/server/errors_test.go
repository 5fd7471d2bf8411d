package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/apply-engine/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "tier", Message: "must be 1, 2 or 3"}
	assert.Equal(t, "validation error: tier - must be 1, 2 or 3", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	req := types.TransitionRequest{Status: "archived"}
	invalid := req.Validate()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", types.ErrApplicationNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", types.ErrApplicationNotFound), http.StatusNotFound},
		{"field validation", fmt.Errorf("invalid transition: %w", invalid), http.StatusBadRequest},
		{"wrapped param", fmt.Errorf("parse: %w", &ErrValidation{Field: "limit"}), http.StatusBadRequest},
		{"other", errors.New("database is down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

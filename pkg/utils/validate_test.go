package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name   string   `json:"name" validate:"required"`
	Status string   `json:"status" validate:"omitempty,oneof=active inactive"`
	Fill   *float64 `json:"fill_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(&payload{Name: "BinA"}))

	over := 120.0
	fields := Validate(&payload{Status: "broken", Fill: &over})
	assert.Equal(t, map[string]string{
		"name":           "required",
		"status":         "oneof=active inactive",
		"fill_threshold": "lte=100",
	}, fields)
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
		code int
	}{
		{"valid", `{"name":"BinA"}`, true, http.StatusOK},
		{"malformed", `{"name":`, false, http.StatusBadRequest},
		{"invalid", `{"status":"active"}`, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			assert.Equal(t, tt.ok, DecodeAndValidate(rec, req, &p))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

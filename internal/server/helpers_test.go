package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathParam(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		suffix string
		want   string
	}{
		{"/api/market/quote/TSLA", "/api/market/quote/", "", "TSLA"},
		{"/api/market/quote/TSLA/extra", "/api/market/quote/", "", "TSLA"},
		{"/api/market/context/aapl", "/api/market/context/", "", "aapl"},
		{"/other/path", "/api/market/quote/", "", ""},
		{"/api/market/quote/", "/api/market/quote/", "", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.path, nil)
		assert.Equal(t, tt.want, PathParam(r, tt.prefix, tt.suffix), "path %s", tt.path)
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abcd"))
	assert.Equal(t, "*******3456", maskSecret("abcdefg3456"))
}

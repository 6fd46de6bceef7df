package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"0.0.0.0:9000":   "http://localhost:9000",
		"127.0.0.1:8080": "http://127.0.0.1:8080",
		"[::]:8080":      "http://localhost:8080",
		"example":        "http://example",
	}
	for addr, want := range tests {
		assert.Equal(t, want, viewerURL(addr), addr)
	}
}

func TestFrontendEmbedded(t *testing.T) {
	data, err := fs.ReadFile(getFrontendFS(), "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "/ws")
}

package tray

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserCommand(t *testing.T) {
	const url = "http://localhost:8080"
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
		{"darwin", "open", []string{url}},
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, url)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestIconIsICO(t *testing.T) {
	icon := GetIcon()
	require.GreaterOrEqual(t, len(icon), 6)

	var header struct {
		Reserved, Type, Count uint16
	}
	require.NoError(t, binary.Read(bytes.NewReader(icon), binary.LittleEndian, &header))
	assert.Equal(t, uint16(0), header.Reserved)
	assert.Equal(t, uint16(1), header.Type)
	assert.Positive(t, header.Count)
}

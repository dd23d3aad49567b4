package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalOrigin(t *testing.T) {
	tests := []struct {
		hostname string
		local    bool
	}{
		{"localhost", true},
		{"127.0.0.1", true},
		{"0.0.0.0", true},
		{"192.168.1.20", true},
		{"10.4.0.9", true},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"8.8.8.8", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.local, isLocalOrigin(tt.hostname))
		})
	}
}

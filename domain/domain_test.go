package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackend_Status(t *testing.T) {
	now := time.Now()
	timeout := 10 * time.Second

	tests := []struct {
		name     string
		backend  Backend
		expected BackendStatus
	}{
		{
			name:     "online",
			backend:  Backend{LastHeartbeat: now, ActiveConnections: 1, MaxConnections: 2},
			expected: BackendStatusOnline,
		},
		{
			name:     "full",
			backend:  Backend{LastHeartbeat: now, ActiveConnections: 2, MaxConnections: 2},
			expected: BackendStatusFull,
		},
		{
			name:     "offline beats full",
			backend:  Backend{LastHeartbeat: now.Add(-time.Minute), ActiveConnections: 2, MaxConnections: 2},
			expected: BackendStatusOffline,
		},
		{
			name:     "offline at exactly the timeout",
			backend:  Backend{LastHeartbeat: now.Add(-timeout), ActiveConnections: 0, MaxConnections: 2},
			expected: BackendStatusOffline,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.Status(now, timeout))
		})
	}
}

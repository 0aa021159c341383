package apps

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppNATCheckConfigDefaults(t *testing.T) {
	config, err := AppNATCheckConfigByArgs(io.Discard, nil)
	require.NoError(t, err)

	assert.Equal(t, "udp4", config.Network)
	assert.NotEmpty(t, config.Server)
	assert.Equal(t, 3*time.Second, config.Timeout)
	assert.False(t, config.Verbose)
}

func TestAppNATCheckConfigByArgs(t *testing.T) {
	config, err := AppNATCheckConfigByArgs(io.Discard, []string{
		"-s", "stun.example.org:3478",
		"-n", "udp6",
		"-l", ":40000",
		"-w", "5",
		"-v",
	})
	require.NoError(t, err)

	assert.Equal(t, "stun.example.org:3478", config.Server)
	assert.Equal(t, "udp6", config.Network)
	assert.Equal(t, ":40000", config.Bind)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.True(t, config.Verbose)
}

func TestAppNATCheckConfigBadFlag(t *testing.T) {
	_, err := AppNATCheckConfigByArgs(io.Discard, []string{"-bogus"})
	assert.Error(t, err)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", GetVersion())
}

func TestRootCmd(t *testing.T) {
	cmd := GetRootCmd()

	require.NotNil(t, cmd)
	assert.Equal(t, "mira", cmd.Use)
	assert.Equal(t, version, cmd.Version)
}

func TestRootCmd_HasStartCommand(t *testing.T) {
	names := make([]string, 0)
	for _, c := range GetRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "start")
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	flags := GetRootCmd().PersistentFlags()

	assert.NotNil(t, flags.Lookup("config"))
	assert.NotNil(t, flags.Lookup("log-level"))
}

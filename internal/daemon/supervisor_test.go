package daemon

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(run RunFunc) *Supervisor {
	sup := NewSupervisor(run, zerolog.Nop())
	sup.SetBackoff(time.Millisecond)
	return sup
}

func TestSupervisor_CleanShutdown(t *testing.T) {
	calls := 0
	sup := newTestSupervisor(func() error {
		calls++
		return nil
	})

	err := sup.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateStopped, sup.State())
}

func TestSupervisor_ExhaustsRestartBudget(t *testing.T) {
	calls := 0
	sup := newTestSupervisor(func() error {
		calls++
		return fmt.Errorf("fatal failure %d", calls)
	})

	err := sup.Run()

	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls, "no attempt beyond the budget")
	assert.Contains(t, err.Error(), "giving up")
	assert.Equal(t, StateStopped, sup.State())
}

func TestSupervisor_RecoversAfterFailures(t *testing.T) {
	calls := 0
	sup := newTestSupervisor(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("fatal failure %d", calls)
		}
		return nil
	})

	err := sup.Run()

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateStopped, sup.State())
}

func TestSupervisor_CustomBudget(t *testing.T) {
	calls := 0
	sup := newTestSupervisor(func() error {
		calls++
		return fmt.Errorf("always fatal")
	})
	sup.SetMaxAttempts(1)

	err := sup.Run()

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSupervisor_InitialState(t *testing.T) {
	sup := newTestSupervisor(func() error { return nil })
	assert.Equal(t, StateStarting, sup.State())
}

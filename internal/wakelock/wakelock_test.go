// ABOUTME: Tests for the wake lock inhibitor
// ABOUTME: Substitutes a harmless long-running command for the platform tool

package wakelock

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInhibitor_AcquireRelease(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	starts := 0
	i := NewWithCommand(func() (*exec.Cmd, error) {
		starts++
		return exec.Command(sleep, "60"), nil
	})

	require.NoError(t, i.Acquire())
	require.NoError(t, i.Acquire())
	assert.Equal(t, 1, starts)
	assert.True(t, i.Held())

	require.NoError(t, i.Release())
	assert.False(t, i.Held())
	require.NoError(t, i.Release())
}

func TestInhibitor_Unsupported(t *testing.T) {
	i := NewWithCommand(func() (*exec.Cmd, error) { return nil, ErrUnsupported })
	err := i.Acquire()
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.False(t, i.Held())
	assert.NoError(t, i.Release())
}

func TestInhibitor_StartFailure(t *testing.T) {
	i := NewWithCommand(func() (*exec.Cmd, error) {
		return exec.Command("/nonexistent/inhibitor"), nil
	})
	assert.ErrorContains(t, i.Acquire(), "start inhibitor")
}

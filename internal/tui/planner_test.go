package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomdive/fathom/internal/config"
)

func defaultPlanner() PlannerState {
	return NewPlannerState(config.PlannerConfig{
		PO2Ceiling: 1.4,
		Trimix:     false,
		TargetEAD:  30,
	})
}

func TestNewPlannerStateComputesInitialMix(t *testing.T) {
	s := defaultPlanner()

	require.NoError(t, s.Err)
	// 30m at pO2 1.4 yields EAN35.
	assert.Equal(t, "EAN35", s.Mix.Label())
}

func TestPlannerDepthStepsRecompute(t *testing.T) {
	s := defaultPlanner()

	s.HandleKey("right")
	assert.Equal(t, 31.0, s.Depth)
	require.NoError(t, s.Err)

	s.HandleKey("shift+left")
	assert.Equal(t, 26.0, s.Depth)

	// Depth never drops below the surface.
	for i := 0; i < 10; i++ {
		s.HandleKey("shift+left")
	}
	assert.Equal(t, 0.0, s.Depth)
	assert.Equal(t, "Oxygen", s.Mix.Label())
}

func TestPlannerPO2Clamped(t *testing.T) {
	s := defaultPlanner()

	for i := 0; i < 20; i++ {
		s.HandleKey("up")
	}
	assert.InDelta(t, 1.6, s.PO2Ceiling, 1e-9)

	for i := 0; i < 100; i++ {
		s.HandleKey("down")
	}
	assert.Greater(t, s.PO2Ceiling, 0.0)
	require.NoError(t, s.Err)
}

func TestPlannerTrimixToggle(t *testing.T) {
	s := defaultPlanner()
	s.SetDepth(50)
	require.NoError(t, s.Err)
	assert.Equal(t, 0.0, s.Mix.FHe)

	s.HandleKey("t")
	assert.True(t, s.Trimix)
	require.NoError(t, s.Err)
	assert.Greater(t, s.Mix.FHe, 0.0)
	assert.Equal(t, "Tx 23/24", s.Mix.Label())

	s.HandleKey("t")
	assert.False(t, s.Trimix)
	assert.Equal(t, 0.0, s.Mix.FHe)
}

func TestPlannerEADSteps(t *testing.T) {
	s := defaultPlanner()
	s.SetDepth(50)
	s.HandleKey("t")

	before := s.Mix.FHe
	s.HandleKey("[")
	assert.Equal(t, 29.0, s.TargetEAD)
	// Shallower target EAD requires more helium.
	assert.Greater(t, s.Mix.FHe, before)

	s.HandleKey("]")
	s.HandleKey("]")
	assert.Equal(t, 31.0, s.TargetEAD)
	assert.Less(t, s.Mix.FHe, before)
}

func TestPlannerDurationSteps(t *testing.T) {
	s := defaultPlanner()
	assert.Equal(t, 45, s.Duration)

	s.HandleKey(".")
	assert.Equal(t, 50, s.Duration)

	for i := 0; i < 20; i++ {
		s.HandleKey(",")
	}
	assert.Equal(t, 5, s.Duration)

	for i := 0; i < 100; i++ {
		s.HandleKey(".")
	}
	assert.Equal(t, 300, s.Duration)
}

func TestPlannerIgnoresUnmappedKeys(t *testing.T) {
	s := defaultPlanner()
	before := s

	s.HandleKey("z")
	s.HandleKey("enter")
	assert.Equal(t, before.Depth, s.Depth)
	assert.Equal(t, before.Mix, s.Mix)
}

func TestSetDepthClamped(t *testing.T) {
	s := defaultPlanner()

	s.SetDepth(-5)
	assert.Equal(t, 0.0, s.Depth)

	s.SetDepth(9999)
	assert.Equal(t, 200.0, s.Depth)
}

package gasmix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestSolveNitroxAt30m(t *testing.T) {
	mix, err := Solve(Request{Depth: 30, PO2Ceiling: 1.4})
	require.NoError(t, err)

	// ata = 4.0, fO2 = 1.4/4 = 0.35
	assert.InDelta(t, 0.35, mix.FO2, tol)
	assert.Zero(t, mix.FHe)
	assert.InDelta(t, 0.65, mix.FN2, tol)
	assert.Equal(t, "EAN35", mix.Label())
}

func TestSolveSurfaceClampsToPureOxygen(t *testing.T) {
	mix, err := Solve(Request{Depth: 0, PO2Ceiling: 1.4})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, mix.FO2, tol)
	assert.Zero(t, mix.FHe)
	assert.InDelta(t, 0.0, mix.FN2, tol)
	assert.Equal(t, "Oxygen", mix.Label())
}

func TestSolveTrimixAt50m(t *testing.T) {
	mix, err := Solve(Request{Depth: 50, PO2Ceiling: 1.4, Trimix: true, TargetEAD: 30})
	require.NoError(t, err)

	// ata = 6.0, fO2 = 1.4/6, maxPPN2 = 0.79*4 = 3.16, maxFN2 = 3.16/6
	assert.InDelta(t, 1.4/6.0, mix.FO2, tol)
	assert.InDelta(t, (1-1.4/6.0)-3.16/6.0, mix.FHe, tol)
	assert.InDelta(t, 3.16/6.0, mix.FN2, tol)
	assert.Equal(t, "Tx 23/24", mix.Label())
}

func TestSolveTrimixLooseEADNeedsNoHelium(t *testing.T) {
	// An EAD at or beyond the dive depth means air-level narcosis is
	// already acceptable, so the inert budget stays all nitrogen.
	mix, err := Solve(Request{Depth: 30, PO2Ceiling: 1.4, Trimix: true, TargetEAD: 30})
	require.NoError(t, err)

	assert.Zero(t, mix.FHe)
	assert.InDelta(t, 1.0, mix.FO2+mix.FN2, tol)
}

func TestSolveFractionsAlwaysSumToOne(t *testing.T) {
	cases := []Request{
		{Depth: 0, PO2Ceiling: 1.6},
		{Depth: 18, PO2Ceiling: 1.4},
		{Depth: 40, PO2Ceiling: 1.2},
		{Depth: 40, PO2Ceiling: 1.4, Trimix: true, TargetEAD: 0},
		{Depth: 60, PO2Ceiling: 1.3, Trimix: true, TargetEAD: 25},
		{Depth: 100, PO2Ceiling: 1.2, Trimix: true, TargetEAD: 30},
		{Depth: 5, PO2Ceiling: 99, Trimix: true, TargetEAD: 40},
	}
	for _, req := range cases {
		mix, err := Solve(req)
		require.NoError(t, err)

		assert.InDelta(t, 1.0, mix.FO2+mix.FHe+mix.FN2, tol, "request %+v", req)
		assert.GreaterOrEqual(t, mix.FO2, 0.0)
		assert.GreaterOrEqual(t, mix.FHe, 0.0)
		assert.GreaterOrEqual(t, mix.FN2, 0.0)
		assert.LessOrEqual(t, mix.FO2, 1.0, "fO2 must clamp at pure oxygen")
	}
}

func TestSolveHeliumMonotoneInTargetEAD(t *testing.T) {
	// Loosening the narcosis limit can only reduce the helium need.
	prev := math.Inf(1)
	for ead := 10.0; ead <= 60; ead += 5 {
		mix, err := Solve(Request{Depth: 60, PO2Ceiling: 1.3, Trimix: true, TargetEAD: ead})
		require.NoError(t, err)
		assert.LessOrEqual(t, mix.FHe, prev, "fHe increased at targetEAD=%.0f", ead)
		prev = mix.FHe
	}
}

func TestSolveRejectsInvalidRequests(t *testing.T) {
	bad := []Request{
		{Depth: -1, PO2Ceiling: 1.4},
		{Depth: 30, PO2Ceiling: 0},
		{Depth: 30, PO2Ceiling: -0.5},
		{Depth: 30, PO2Ceiling: 1.4, Trimix: true, TargetEAD: -10},
		{Depth: math.NaN(), PO2Ceiling: 1.4},
		{Depth: 30, PO2Ceiling: math.Inf(1)},
	}
	for _, req := range bad {
		_, err := Solve(req)
		require.Error(t, err, "request %+v", req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestLabelAirWindow(t *testing.T) {
	assert.Equal(t, "Air", Mix{FO2: 0.21, FN2: 0.79}.Label())
	assert.Equal(t, "Air", Mix{FO2: 0.205, FN2: 0.795}.Label())
	assert.Equal(t, "Air", Mix{FO2: 0.2149, FN2: 0.7851}.Label())
	assert.Equal(t, "EAN21", Mix{FO2: 0.215, FN2: 0.785}.Label())
	assert.Equal(t, "EAN20", Mix{FO2: 0.2049, FN2: 0.7951}.Label())
}

func TestLabelTruncatesNotRounds(t *testing.T) {
	assert.Equal(t, "EAN35", Mix{FO2: 0.3599, FN2: 0.6401}.Label())
	assert.Equal(t, "Tx 20/34", Mix{FO2: 0.2099, FHe: 0.3499, FN2: 0.4402}.Label())
}

func TestLabelHeliumThreshold(t *testing.T) {
	// Below 0.1% helium the blend is labeled as Nitrox, above as Trimix.
	assert.Equal(t, "EAN32", Mix{FO2: 0.32, FHe: 0.0005, FN2: 0.6795}.Label())
	assert.Equal(t, "Tx 32/0", Mix{FO2: 0.32, FHe: 0.002, FN2: 0.678}.Label())
}

func TestMaxOperatingDepth(t *testing.T) {
	assert.InDelta(t, 33.75, MaxOperatingDepth(Mix{FO2: 0.32}, 1.4), tol)
	assert.InDelta(t, 56.666666666666664, MaxOperatingDepth(Air, 1.4), tol)
	assert.True(t, math.IsInf(MaxOperatingDepth(Mix{}, 1.4), 1))
}

func TestEquivalentAirDepth(t *testing.T) {
	// EAN32 at 30 m: fN2 = 0.68, ata = 4 → (0.68*4/0.79 - 1) * 10
	assert.InDelta(t, (0.68*4/0.79-1)*10, EquivalentAirDepth(Mix{FO2: 0.32, FN2: 0.68}, 30), tol)
	// Air's EAD is the depth itself.
	assert.InDelta(t, 30, EquivalentAirDepth(Air, 30), tol)
	// Nitrogen-lean mixes near the surface clamp to zero.
	assert.Zero(t, EquivalentAirDepth(Mix{FO2: 0.5, FN2: 0.5}, 2))
}

func TestEquivalentNarcoticDepth(t *testing.T) {
	// No helium: END equals depth.
	assert.InDelta(t, 40, EquivalentNarcoticDepth(Air, 40), tol)
	// Tx 21/35 at 50 m: (1-0.35)*6*10 - 10 = 29
	assert.InDelta(t, 29, EquivalentNarcoticDepth(Mix{FO2: 0.21, FHe: 0.35, FN2: 0.44}, 50), tol)
	assert.Zero(t, EquivalentNarcoticDepth(Mix{FHe: 0.95, FO2: 0.05}, 0))
}

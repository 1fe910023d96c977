// Package gasmix implements partial-pressure gas blending for Nitrox
// and Trimix dive planning.
//
// The solver answers the "best mix" question: given a target depth and
// an oxygen partial-pressure ceiling, which oxygen/helium/nitrogen blend
// maximizes oxygen (shortening decompression) while keeping ppO2 at or
// below the ceiling and, for Trimix, keeping nitrogen narcosis at or
// below a chosen equivalent air depth.
//
// All computations are pure; the package holds no state.
package gasmix

import (
	"errors"
	"fmt"
	"math"
)

// MetersPerATA is the water-column depth corresponding to one atmosphere
// of pressure. The conventional rounded value of 10.0 m/atm is used
// rather than the exact seawater figure (~10.06 m/atm) so that computed
// labels match standard recreational dive tables.
const MetersPerATA = 10.0

// AirFN2 is the nitrogen fraction of air, the reference point for
// equivalent-air-depth narcosis math.
const AirFN2 = 0.79

// AirFO2 is the oxygen fraction of air. Mixes within half a percentage
// point of this are labeled plain "Air".
const AirFO2 = 0.21

// ErrInvalidRequest is returned (wrapped) for requests the solver cannot
// meaningfully answer: negative depths, non-positive ppO2 ceilings, or
// non-finite inputs.
var ErrInvalidRequest = errors.New("gasmix: invalid request")

// Request holds the planner inputs for one best-mix computation.
type Request struct {
	// Depth is the planned maximum depth in meters of seawater.
	Depth float64 `json:"depth"`
	// PO2Ceiling is the maximum tolerated oxygen partial pressure in bar.
	PO2Ceiling float64 `json:"po2_ceiling"`
	// Trimix enables helium blending against the TargetEAD narcosis limit.
	Trimix bool `json:"trimix"`
	// TargetEAD is the equivalent air depth in meters that bounds
	// nitrogen narcosis. Only consulted when Trimix is set.
	TargetEAD float64 `json:"target_ead"`
}

// Validate rejects requests the solver has no answer for. Depth must be
// non-negative, the ppO2 ceiling strictly positive, and every numeric
// field finite.
func (r Request) Validate() error {
	for _, v := range []float64{r.Depth, r.PO2Ceiling, r.TargetEAD} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite input", ErrInvalidRequest)
		}
	}
	if r.Depth < 0 {
		return fmt.Errorf("%w: depth %.1f m is negative", ErrInvalidRequest, r.Depth)
	}
	if r.PO2Ceiling <= 0 {
		return fmt.Errorf("%w: ppO2 ceiling %.2f bar must be positive", ErrInvalidRequest, r.PO2Ceiling)
	}
	if r.Trimix && r.TargetEAD < 0 {
		return fmt.Errorf("%w: target EAD %.1f m is negative", ErrInvalidRequest, r.TargetEAD)
	}
	return nil
}

// Mix is a breathing-gas blend as fractions summing to 1.
type Mix struct {
	FO2 float64 `json:"fo2"`
	FHe float64 `json:"fhe"`
	FN2 float64 `json:"fn2"`
}

// Air is the reference mix.
var Air = Mix{FO2: AirFO2, FHe: 0, FN2: AirFN2}

// Solve computes the richest mix satisfying the request's ppO2 ceiling
// and, for Trimix requests, its narcosis limit.
//
// The oxygen fraction is the ceiling divided by ambient pressure,
// clamped at pure oxygen. With Trimix enabled, the nitrogen fraction is
// capped at the fraction that reproduces air narcosis at TargetEAD, and
// helium fills whatever the inert budget exceeds that cap by. Nitrogen
// is always the remainder.
func Solve(req Request) (Mix, error) {
	if err := req.Validate(); err != nil {
		return Mix{}, err
	}

	ata := AmbientPressure(req.Depth)

	fO2 := req.PO2Ceiling / ata
	if fO2 > 1 {
		fO2 = 1
	}

	var fHe float64
	if req.Trimix {
		ataEAD := AmbientPressure(req.TargetEAD)
		maxPPN2 := AirFN2 * ataEAD
		maxFN2 := maxPPN2 / ata

		if inert := 1 - fO2; maxFN2 < inert {
			fHe = inert - maxFN2
		}
	}

	fN2 := 1 - fO2 - fHe
	if fN2 < 0 {
		fN2 = 0
	}

	return Mix{FO2: fO2, FHe: fHe, FN2: fN2}, nil
}

// Label renders the conventional short name for a mix: "Tx 21/35" for
// helium blends, "Air" near 21% oxygen, "Oxygen" for a pure O2 fill,
// and "EANxx" for everything else.
//
// Percentages are floor-truncated, never rounded up, so two mixes one
// percentage point apart are never conflated upward.
func (m Mix) Label() string {
	o2Pct := m.FO2 * 100
	hePct := m.FHe * 100

	if hePct > 0.1 {
		return fmt.Sprintf("Tx %d/%d", int(math.Floor(o2Pct)), int(math.Floor(hePct)))
	}
	if m.FO2 >= 1 {
		return "Oxygen"
	}
	if o2Pct >= 20.5 && o2Pct < 21.5 {
		return "Air"
	}
	return fmt.Sprintf("EAN%d", int(math.Floor(o2Pct)))
}

// AmbientPressure returns total pressure in atmospheres absolute at the
// given depth in meters: one atmosphere of surface pressure plus one per
// MetersPerATA of water column.
func AmbientPressure(depth float64) float64 {
	return depth/MetersPerATA + 1
}

// MaxOperatingDepth returns the deepest depth in meters at which a mix
// stays within the given ppO2 ceiling. Returns +Inf for a zero oxygen
// fraction, which has no oxygen-toxicity limit.
func MaxOperatingDepth(m Mix, pO2Max float64) float64 {
	if m.FO2 <= 0 {
		return math.Inf(1)
	}
	return (pO2Max/m.FO2 - 1) * MetersPerATA
}

// EquivalentAirDepth returns the depth in meters at which breathing air
// would expose the diver to the same nitrogen partial pressure as this
// mix at the given depth. Negative results (mixes leaner in nitrogen
// than air at shallow depth) are clamped to the surface.
func EquivalentAirDepth(m Mix, depth float64) float64 {
	ead := (m.FN2*AmbientPressure(depth)/AirFN2 - 1) * MetersPerATA
	if ead < 0 {
		return 0
	}
	return ead
}

// EquivalentNarcoticDepth returns the air depth with the same total
// narcotic gas loading (nitrogen plus oxygen; helium is considered
// non-narcotic) as this mix at the given depth.
func EquivalentNarcoticDepth(m Mix, depth float64) float64 {
	end := (1-m.FHe)*AmbientPressure(depth)*MetersPerATA - MetersPerATA
	if end < 0 {
		return 0
	}
	return end
}

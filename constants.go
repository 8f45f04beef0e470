package openpl

import "math"

// SpeedOfSound is c, the modelled speed of sound propagation, in m/s.
const SpeedOfSound = 343.21

// MinFrequency is f_min, the lowest frequency the lattice resolution is
// required to resolve, in Hz.
const MinFrequency = 275.0

// fdtdConstants are the physical and numerical constants the kernel derives
// once per Simulate call and reuses for every step (spec.md §4.5: "compute
// once at simulate-time, do not re-derive between steps").
type fdtdConstants struct {
	c, fMin   float64
	lambdaMin float64
	dx        float64
	dt        float64
	fs        float64
	k         float64
}

// computeFDTDConstants derives dx, dt, fs and the update coefficient K from
// c and fMin. dx is also the lattice cell size Voxelise must be called with
// for physically meaningful results; Scene.Simulate does not check this and
// runs the kernel on whatever cell size the lattice was built with.
func computeFDTDConstants() fdtdConstants {
	lambdaMin := SpeedOfSound / MinFrequency
	dx := lambdaMin / 3.5
	dt := dx / (SpeedOfSound * 1.5)
	return fdtdConstants{
		c:         SpeedOfSound,
		fMin:      MinFrequency,
		lambdaMin: lambdaMin,
		dx:        dx,
		dt:        dt,
		fs:        1 / dt,
		k:         SpeedOfSound * dt / dx,
	}
}

// gaussianPulse precomputes the source excitation waveform: a Gaussian
// centred at 2σ with σ = 1/(0.5·π·f_min), sampled at dt.
func gaussianPulse(steps int, c fdtdConstants) []float64 {
	sigma := 1 / (0.5 * math.Pi * c.fMin)
	pulse := make([]float64, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) * c.dt
		diff := t - 2*sigma
		pulse[i] = math.Exp(-(diff * diff) / (sigma * sigma))
	}
	return pulse
}

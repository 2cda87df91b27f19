package track

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	stateDim = 7 // [cx, cy, s, r, vcx, vcy, vs]
	obsDim   = 4 // [cx, cy, s, r]
)

// KalmanConfig holds the noise magnitudes for the per-track filter.
// These are design parameters, not derived quantities: velocities are
// unobserved so they start with high uncertainty, positions start at
// the detector's assumed noise level, and the scale observation is
// trusted less than the center.
type KalmanConfig struct {
	MeasurementNoisePos   float64 // R on cx, cy
	MeasurementNoiseScale float64 // R on s, r
	InitialCovPos         float64 // P0 on the observed components
	InitialCovVel         float64 // P0 on the hidden velocities
	ProcessNoisePos       float64 // Q on cx, cy, s, r
	ProcessNoiseVel       float64 // Q on vcx, vcy
	ProcessNoiseScaleVel  float64 // Q on vs
}

// DefaultKalmanConfig returns the conventional tuning for detector
// boxes at video frame rates.
func DefaultKalmanConfig() KalmanConfig {
	return KalmanConfig{
		MeasurementNoisePos:   1.0,
		MeasurementNoiseScale: 10.0,
		InitialCovPos:         10.0,
		InitialCovVel:         10000.0,
		ProcessNoisePos:       1.0,
		ProcessNoiseVel:       0.01,
		ProcessNoiseScaleVel:  0.0001,
	}
}

// boxFilter is a constant-velocity linear Kalman filter over box state.
// The aspect ratio r changes slowly and carries no modeled velocity.
type boxFilter struct {
	x *mat.VecDense // state mean
	p *mat.Dense    // state covariance

	f *mat.Dense // transition model
	h *mat.Dense // observation model
	q *mat.Dense // process noise
	r *mat.Dense // observation noise
}

// newBoxFilter initialises a filter at the observed box with zero
// velocity and the configured initial uncertainty.
func newBoxFilter(cfg KalmanConfig, initial Box) *boxFilter {
	kf := &boxFilter{
		x: mat.NewVecDense(stateDim, nil),
		p: mat.NewDense(stateDim, stateDim, nil),
		f: mat.NewDense(stateDim, stateDim, nil),
		h: mat.NewDense(obsDim, stateDim, nil),
		q: mat.NewDense(stateDim, stateDim, nil),
		r: mat.NewDense(obsDim, obsDim, nil),
	}

	// F: identity plus unit-timestep velocity coupling on cx, cy, s.
	for i := 0; i < stateDim; i++ {
		kf.f.Set(i, i, 1)
	}
	kf.f.Set(0, 4, 1)
	kf.f.Set(1, 5, 1)
	kf.f.Set(2, 6, 1)

	// H projects the four positional components; velocities are hidden.
	for i := 0; i < obsDim; i++ {
		kf.h.Set(i, i, 1)
	}

	kf.r.Set(0, 0, cfg.MeasurementNoisePos)
	kf.r.Set(1, 1, cfg.MeasurementNoisePos)
	kf.r.Set(2, 2, cfg.MeasurementNoiseScale)
	kf.r.Set(3, 3, cfg.MeasurementNoiseScale)

	for i := 0; i < obsDim; i++ {
		kf.p.Set(i, i, cfg.InitialCovPos)
		kf.q.Set(i, i, cfg.ProcessNoisePos)
	}
	for i := obsDim; i < stateDim; i++ {
		kf.p.Set(i, i, cfg.InitialCovVel)
	}
	kf.q.Set(4, 4, cfg.ProcessNoiseVel)
	kf.q.Set(5, 5, cfg.ProcessNoiseVel)
	kf.q.Set(6, 6, cfg.ProcessNoiseScaleVel)

	cx, cy, s, r := initial.observation()
	kf.x.SetVec(0, cx)
	kf.x.SetVec(1, cy)
	kf.x.SetVec(2, s)
	kf.x.SetVec(3, r)

	return kf
}

// predict advances the mean by the transition model and grows the
// covariance by the process noise. Must run exactly once per frame,
// before any update. A scale velocity that would drive the area
// non-positive is coerced to zero first.
func (kf *boxFilter) predict() {
	if kf.x.AtVec(6)+kf.x.AtVec(2) <= 0 {
		kf.x.SetVec(6, 0)
	}

	var xp mat.VecDense
	xp.MulVec(kf.f, kf.x)
	kf.x.CopyVec(&xp)

	var fp, fpft mat.Dense
	fp.Mul(kf.f, kf.p)
	fpft.Mul(&fp, kf.f.T())
	fpft.Add(&fpft, kf.q)
	kf.p.Copy(&fpft)
}

// update blends the predicted state with a matched observation via the
// standard gain computation. A singular innovation covariance skips the
// update and keeps the prediction: fails soft, not fatal. Returns false
// when the update was skipped.
func (kf *boxFilter) update(obs Box) bool {
	cx, cy, s, r := obs.observation()
	z := mat.NewVecDense(obsDim, []float64{cx, cy, s, r})

	// Innovation y = z - Hx.
	var hx, y mat.VecDense
	hx.MulVec(kf.h, kf.x)
	y.SubVec(z, &hx)

	// Innovation covariance S = HPHᵀ + R.
	var pht, innov mat.Dense
	pht.Mul(kf.p, kf.h.T())
	innov.Mul(kf.h, &pht)
	innov.Add(&innov, kf.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&innov); err != nil {
		return false
	}

	// Gain K = PHᵀS⁻¹.
	var k mat.Dense
	k.Mul(&pht, &sInv)

	// Posterior mean x = x + Ky.
	var ky mat.VecDense
	ky.MulVec(&k, &y)
	kf.x.AddVec(kf.x, &ky)

	// Posterior covariance P = (I - KH)P.
	var kh mat.Dense
	kh.Mul(&k, kf.h)
	ikh := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		ikh.Set(i, i, 1)
	}
	ikh.Sub(ikh, &kh)

	var post mat.Dense
	post.Mul(ikh, kf.p)
	kf.p.Copy(&post)

	return true
}

// currentBox converts the mean back to corner form. ok is false when
// the state is numerically degenerate (non-positive area or aspect
// ratio, or non-finite components) and no valid box exists.
func (kf *boxFilter) currentBox() (Box, bool) {
	cx := kf.x.AtVec(0)
	cy := kf.x.AtVec(1)
	s := kf.x.AtVec(2)
	r := kf.x.AtVec(3)

	if s <= 0 || r <= 0 {
		return Box{}, false
	}
	for _, v := range []float64{cx, cy, s, r} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Box{}, false
		}
	}
	return boxFromState(cx, cy, s, r), true
}

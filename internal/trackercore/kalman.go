// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// Timecode is the device's free-running sample clock: an unsigned
// 32-bit counter at timebase_hz that is expected to wrap (Data model).
type Timecode uint32

// TimecodeDiff is the two's-complement signed delta a-b, correct for
// |delta| < 2^31 across exactly one wrap (Invariant: ordering
// guarantees, testable property 4).
func TimecodeDiff(a, b Timecode) int32 {
	return int32(a - b)
}

// Seconds converts a raw tick delta to wall seconds at timebaseHz.
func Seconds(ticks int32, timebaseHz FLT) FLT {
	return FLT(ticks) / timebaseHz
}

// UninitializedVariance is the negative sentinel meaning "never set"
// (Invariant 2).
const UninitializedVariance = FLT(-1)

// DivergedVariance is the threshold above which a signal is flagged
// untrusted by the predictor (Invariant 4, C7).
const DivergedVariance = FLT(10)

// KalmanInfo is the uncertainty bookkeeping shared by every tracked
// signal (C2/C3). Concrete signal types embed this by value rather
// than reinterpreting a common "base" struct.
type KalmanInfo struct {
	Variance          FLT
	VariancePerSecond FLT
	LastUpdate        Timecode
}

func NewKalmanInfo(variancePerSecond FLT) KalmanInfo {
	return KalmanInfo{Variance: UninitializedVariance, VariancePerSecond: variancePerSecond}
}

func (k KalmanInfo) Uninitialized() bool {
	return k.Variance < 0
}

func (k KalmanInfo) Diverged() bool {
	return k.Variance > DivergedVariance
}

// Decay advances variance to timecode at the signal's
// variance-per-second rate (C2 time-decay) and returns the elapsed
// seconds, for callers (C3 predict_fn wiring, C7) that also need Δt.
// A still-uninitialized signal does not decay.
func (k *KalmanInfo) Decay(timecode Timecode, timebaseHz FLT) FLT {
	dt := Seconds(TimecodeDiff(timecode, k.LastUpdate), timebaseHz)
	if k.Uninitialized() {
		return dt
	}
	k.Variance += k.VariancePerSecond * dt
	return dt
}

// blendWeight is the incoming-measurement weight w = v_prior /
// (v_prior + v_meas), with w = 1 when the combined variance is zero
// (C2 blend).
func blendWeight(vPrior, vMeas FLT) FLT {
	denom := vPrior + vMeas
	if denom == 0 {
		return 1
	}
	return vPrior / denom
}

// bootstrap reports whether info has never been set. The canonical
// source special-cases this signal-wide (rotation via the zero-quat
// sentinel, scalar signals via the negative-variance sentinel): the
// first measurement is adopted outright, posterior variance equal to
// the measurement's own variance rather than the (1-w)*v_prior
// formula, which would otherwise collapse to zero and contradict a
// first observation's own stated uncertainty.
func (k *KalmanInfo) bootstrap(vMeas FLT, timecode Timecode) {
	k.Variance = vMeas
	k.LastUpdate = timecode
}

// BlendScalar performs the C2 blend for a single scalar component.
func BlendScalar(value *FLT, meas FLT, info *KalmanInfo, vMeas FLT, timecode Timecode) FLT {
	if info.Uninitialized() {
		*value = meas
		info.bootstrap(vMeas, timecode)
		return 1
	}
	w := blendWeight(info.Variance, vMeas)
	*value += w * (meas - *value)
	info.Variance = (1 - w) * info.Variance
	info.LastUpdate = timecode
	return w
}

// BlendVec3 performs the C2 blend for a position-like signal: one
// scalar weight applied identically across all three components,
// since the estimator's covariance is diagonal-approximated to a
// single variance per signal, not per axis.
func BlendVec3(value *Vec3, meas Vec3, info *KalmanInfo, vMeas FLT, timecode Timecode) FLT {
	if info.Uninitialized() {
		*value = meas
		info.bootstrap(vMeas, timecode)
		return 1
	}
	w := blendWeight(info.Variance, vMeas)
	*value = value.Add(meas.Sub(*value).Scale(w))
	info.Variance = (1 - w) * info.Variance
	info.LastUpdate = timecode
	return w
}

// BlendQuat performs the C2 blend for a rotation signal. Per C3, a
// zero-sentinel stored quaternion is an unconditional copy rather
// than a SLERP-weighted blend: this bootstraps orientation from the
// first observation.
func BlendQuat(value *Quat, meas Quat, info *KalmanInfo, vMeas FLT, timecode Timecode) FLT {
	if value.IsZero() {
		*value = meas.Normalized()
		info.bootstrap(vMeas, timecode)
		return 1
	}
	w := blendWeight(info.Variance, vMeas)
	*value = Slerp(*value, meas, w)
	info.Variance = (1 - w) * info.Variance
	info.LastUpdate = timecode
	return w
}

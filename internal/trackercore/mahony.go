// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// MahonyPropGain and MahonyIntGain are the canonical tuning from the
// source this filter is ported from: proportional-only correction,
// integral feedback kept in the code path but disabled by default.
const (
	MahonyPropGain = FLT(0.5)
	MahonyIntGain  = FLT(0)
)

// MahonyUpdate runs one step of the orientation-only complementary
// filter (C4): gyro integration corrected by the cross product
// between measured and predicted gravity direction. integralFB is the
// caller-owned accumulator (TrackerState.IntegralFB) and is updated
// in place.
func MahonyUpdate(q Quat, gyro, accel Vec3, propGain, intGain, freq FLT, integralFB *Vec3) Quat {
	omega := gyro

	if !accel.IsZero() {
		a := accel.Normalized()

		// Predicted gravity direction in body frame: q^-1 * [0,0,1],
		// expanded in closed form and left at half scale on every
		// component (matching the source, not the full-scale quaternion
		// rotation formula) so the cross product below still vanishes
		// when a and v agree.
		v := Vec3{
			q[1]*q[3] - q[0]*q[2],
			q[0]*q[1] + q[2]*q[3],
			q[0]*q[0] - 0.5 + q[3]*q[3],
		}

		errv := a.Cross(v)

		if intGain > 0 {
			*integralFB = integralFB.Add(errv.Scale(2 * intGain / freq))
			omega = omega.Add(*integralFB)
		}

		omega = omega.Add(errv.Scale(2 * propGain))
	}

	deriv := q.Mul(Quat{0, omega[0] / freq, omega[1] / freq, omega[2] / freq}).Scale(0.5)
	return q.Add(deriv).Normalized()
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// Quat is an ordered quadruple (w,x,y,z). Unit-norm is an invariant
// for any quaternion used as a rotation; the all-zero value is the
// sentinel for "never set" (C1/C3).
type Quat [4]FLT

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{1, 0, 0, 0}

func (q Quat) IsZero() bool {
	return q[0] == 0 && q[1] == 0 && q[2] == 0 && q[3] == 0
}

func (q Quat) Add(r Quat) Quat {
	return Quat{q[0] + r[0], q[1] + r[1], q[2] + r[2], q[3] + r[3]}
}

func (q Quat) Scale(s FLT) Quat {
	return Quat{q[0] * s, q[1] * s, q[2] * s, q[3] * s}
}

// Mul is the Hamilton product q*r.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		q[0]*r[0] - q[1]*r[1] - q[2]*r[2] - q[3]*r[3],
		q[0]*r[1] + q[1]*r[0] + q[2]*r[3] - q[3]*r[2],
		q[0]*r[2] - q[1]*r[3] + q[2]*r[0] + q[3]*r[1],
		q[0]*r[3] + q[1]*r[2] - q[2]*r[1] + q[3]*r[0],
	}
}

func (q Quat) Conjugate() Quat {
	return Quat{q[0], -q[1], -q[2], -q[3]}
}

func (q Quat) Norm() FLT {
	return fltSqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalized returns the unit quaternion, or identity if q underflows
// to zero (spec.md §7: "not a reported error; ... producing identity
// on zero input").
func (q Quat) Normalized() Quat {
	n := q.Norm()
	if n == 0 {
		return IdentityQuat
	}
	inv := 1 / n
	return Quat{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// RotateVec rotates v by q (body frame -> world frame when q is the
// body-to-world orientation).
func (q Quat) RotateVec(v Vec3) Vec3 {
	u := Vec3{q[1], q[2], q[3]}
	uv := u.Cross(v)
	uv = uv.Add(uv) // 2*(u x v)
	uuv := u.Cross(uv)
	t := uv.Scale(q[0])
	return v.Add(t).Add(uuv)
}

func clampFLT(x, lo, hi FLT) FLT {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// QuatDifference is the scalar angular difference between a and b in
// [0,pi]: 2*acos(|w(a * b^-1)|) (C1).
func QuatDifference(a, b Quat) FLT {
	d := a.Mul(b.Conjugate())
	return 2 * fltAcos(clampFLT(fltAbs(d[0]), -1, 1))
}

const angVelEpsilon = FLT(1e-8)

// ApplyAngVelocity produces the unit quaternion representing rotation
// by angular velocity omega (axis-angle, rad/s) over dt seconds,
// pre-composed with qIn: qOut = qDelta(omega, dt) * qIn (C1).
func ApplyAngVelocity(omega Vec3, dt FLT, qIn Quat) Quat {
	theta := omega.Norm() * dt

	var qDelta Quat
	if theta < angVelEpsilon {
		// Taylor fallback: cos(theta/2) ~= 1, sin(theta/2) ~= theta/2.
		half := omega.Scale(0.5 * dt)
		qDelta = Quat{1, half[0], half[1], half[2]}
	} else {
		axis := omega.Scale(1 / omega.Norm())
		s := fltSin(theta / 2)
		c := fltCos(theta / 2)
		qDelta = Quat{c, axis[0] * s, axis[1] * s, axis[2] * s}
	}

	return qDelta.Mul(qIn).Normalized()
}

// FindAngVelocity is the inverse of ApplyAngVelocity: the angular
// velocity (axis-angle: direction=axis, magnitude=theta/dt) that
// rotates qFrom into qTo over dt seconds (C1).
func FindAngVelocity(dt FLT, qFrom, qTo Quat) Vec3 {
	if dt == 0 {
		return Vec3{}
	}

	qDelta := qTo.Mul(qFrom.Conjugate()).Normalized()
	if qDelta[0] < 0 {
		qDelta = Quat{-qDelta[0], -qDelta[1], -qDelta[2], -qDelta[3]}
	}

	w := clampFLT(qDelta[0], -1, 1)
	theta := 2 * fltAcos(w)
	sinHalf := fltSqrt(1 - w*w)

	if sinHalf < angVelEpsilon {
		return Vec3{}
	}

	axis := Vec3{qDelta[1], qDelta[2], qDelta[3]}.Scale(1 / sinHalf)
	return axis.Scale(theta / dt)
}

// Slerp spherically interpolates from a to b by weight t in [0,1]
// (C1; used by the Kalman blend of rotation signals).
func Slerp(a, b Quat, t FLT) Quat {
	const slerpEpsilon = FLT(1e-10)

	cosOmega := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	bb := b
	if cosOmega < 0 {
		cosOmega = -cosOmega
		bb = Quat{-b[0], -b[1], -b[2], -b[3]}
	}

	var k1, k2 FLT
	if (1 - cosOmega) < slerpEpsilon {
		k1, k2 = 1-t, t
	} else {
		omega := fltAcos(clampFLT(cosOmega, -1, 1))
		sinOmega := fltSin(omega)
		k1 = fltSin((1-t)*omega) / sinOmega
		k2 = fltSin(t*omega) / sinOmega
	}

	return Quat{
		k1*a[0] + k2*bb[0],
		k1*a[1] + k2*bb[1],
		k1*a[2] + k2*bb[2],
		k1*a[3] + k2*bb[3],
	}.Normalized()
}

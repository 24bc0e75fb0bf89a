// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuatNormalizedZeroIsIdentity(t *testing.T) {
	var zero Quat
	assert.Equal(t, IdentityQuat, zero.Normalized())
}

func TestQuatMulConjugateIsIdentity(t *testing.T) {
	q := Quat{0.5, 0.5, 0.5, 0.5}
	prod := q.Mul(q.Conjugate())
	// q * q^-1 == identity for a unit quaternion.
	assert.InDelta(t, 1, prod[0], 1e-9)
	assert.InDelta(t, 0, prod[1], 1e-9)
	assert.InDelta(t, 0, prod[2], 1e-9)
	assert.InDelta(t, 0, prod[3], 1e-9)
}

func TestQuatRotateVecQuarterTurnAboutZ(t *testing.T) {
	theta := math.Pi / 2
	q := Quat{FLT(math.Cos(theta / 2)), 0, 0, FLT(math.Sin(theta / 2))}
	rotated := q.RotateVec(Vec3{1, 0, 0})
	assert.InDelta(t, 0, rotated[0], 1e-9)
	assert.InDelta(t, 1, rotated[1], 1e-9)
	assert.InDelta(t, 0, rotated[2], 1e-9)
}

func TestQuatDifferenceIsZeroForEqualOrientations(t *testing.T) {
	q := Quat{0.6, 0.8, 0, 0}.Normalized()
	assert.InDelta(t, 0, QuatDifference(q, q), 1e-9)
}

func TestQuatDifferenceHalfTurn(t *testing.T) {
	a := IdentityQuat
	b := Quat{0, 1, 0, 0} // 180 degrees about x
	assert.InDelta(t, math.Pi, QuatDifference(a, b), 1e-9)
}

func TestApplyFindAngVelocityRoundTrip(t *testing.T) {
	qIn := Quat{0.6, 0, 0.8, 0}.Normalized()
	omega := Vec3{0.1, -0.2, 1.5}
	dt := FLT(0.5) // |omega|*dt < pi

	qOut := ApplyAngVelocity(omega, dt, qIn)
	roundTrip := FindAngVelocity(dt, qIn, qOut)

	assert.InDelta(t, omega[0], roundTrip[0], 1e-6)
	assert.InDelta(t, omega[1], roundTrip[1], 1e-6)
	assert.InDelta(t, omega[2], roundTrip[2], 1e-6)
}

func TestApplyAngVelocityUnitNorm(t *testing.T) {
	q := ApplyAngVelocity(Vec3{0, 0, 3}, 0.01, IdentityQuat)
	assert.InDelta(t, 1, q.Norm(), 1e-9)
}

func TestSlerpEndpoints(t *testing.T) {
	a := IdentityQuat
	b := Quat{0, 1, 0, 0}

	assert.InDelta(t, 0, QuatDifference(Slerp(a, b, 0), a), 1e-9)
	assert.InDelta(t, 0, QuatDifference(Slerp(a, b, 1), b), 1e-9)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -1, 0.5}

	assert.Equal(t, Vec3{5, 1, 3.5}, a.Add(b))
	assert.Equal(t, Vec3{-3, 3, 2.5}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.InDelta(t, 4+(-2)+1.5, a.Dot(b), 1e-12)
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	assert.InDelta(t, 0, z[0], 1e-12)
	assert.InDelta(t, 0, z[1], 1e-12)
	assert.InDelta(t, 1, z[2], 1e-12)
}

func TestVec3Normalized(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalized()
	assert.InDelta(t, 1, n.Norm(), 1e-12)

	zero := Vec3{}
	assert.Equal(t, zero, zero.Normalized())
	assert.True(t, zero.IsZero())
}

func TestVec3Dist(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{3, 4, 0}
	assert.InDelta(t, 5, a.Dist(b), 1e-12)
}

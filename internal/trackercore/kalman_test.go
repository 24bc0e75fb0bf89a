// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimecodeDiffWrap(t *testing.T) {
	var a Timecode = 0xFFFFFFF0
	for _, k := range []int32{0, 1, 100, 1_000_000, math.MaxInt32 - 1} {
		got := TimecodeDiff(a+Timecode(k), a)
		assert.Equal(t, k, got)
	}
}

func TestBlendWeightBounds(t *testing.T) {
	cases := []struct{ vPrior, vMeas FLT }{
		{0.1, 0.1}, {0, 0.5}, {5, 0}, {0, 0}, {100, 0.001},
	}
	for _, c := range cases {
		w := blendWeight(c.vPrior, c.vMeas)
		assert.GreaterOrEqual(t, w, FLT(0))
		assert.LessOrEqual(t, w, FLT(1))
	}
}

func TestBlendScalarBootstrapsOnUninitialized(t *testing.T) {
	info := NewKalmanInfo(0.1)
	var value FLT
	w := BlendScalar(&value, 3.5, &info, 0.2, 10)

	assert.Equal(t, FLT(1), w)
	assert.Equal(t, FLT(3.5), value)
	assert.Equal(t, FLT(0.2), info.Variance)
	assert.Equal(t, Timecode(10), info.LastUpdate)
}

func TestBlendScalarZeroVarianceObservationDominates(t *testing.T) {
	info := KalmanInfo{Variance: 1, VariancePerSecond: 0.1, LastUpdate: 0}
	value := FLT(5)

	BlendScalar(&value, 9, &info, 0, 5)

	assert.Equal(t, FLT(9), value)
	assert.Equal(t, FLT(0), info.Variance)
}

func TestKalmanInfoDecayGrowsVariance(t *testing.T) {
	info := KalmanInfo{Variance: 1, VariancePerSecond: 2, LastUpdate: 0}
	timebaseHz := FLT(1000)

	info.Decay(1000, timebaseHz) // 1 second elapsed
	assert.InDelta(t, 3, info.Variance, 1e-9)
}

func TestKalmanInfoDecaySkipsUninitialized(t *testing.T) {
	info := NewKalmanInfo(2)
	info.Decay(1000, 1000)
	assert.Equal(t, UninitializedVariance, info.Variance)
}

func TestBlendQuatBootstrapsOnZeroSentinel(t *testing.T) {
	info := NewKalmanInfo(0.1)
	var value Quat // zero sentinel
	meas := Quat{0.6, 0.8, 0, 0}.Normalized()

	w := BlendQuat(&value, meas, &info, 0.05, 7)

	assert.Equal(t, FLT(1), w)
	assert.Equal(t, meas, value)
	assert.Equal(t, FLT(0.05), info.Variance)
}

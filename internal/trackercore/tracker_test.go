// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimebaseHz = FLT(48_000_000)
const testImuFreq = FLT(1000)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TimebaseHz = testTimebaseHz
	cfg.ImuFreq = testImuFreq
	cfg.Codename = "test"
	return cfg
}

type capturingLogger struct {
	warnings int
	debugs   int
}

func (c *capturingLogger) Warnf(string, ...any)  { c.warnings++ }
func (c *capturingLogger) Debugf(string, ...any) { c.debugs++ }

type capturingFaultSink struct {
	faults int
}

func (c *capturingFaultSink) Fatal(error) { c.faults++ }

func newTestTracker(t *testing.T, cfg Config) (*Tracker, *capturingLogger, *capturingFaultSink) {
	t.Helper()
	logger := &capturingLogger{}
	fault := &capturingFaultSink{}
	tr, err := NewTracker(cfg, 0, fault, logger)
	require.NoError(t, err)
	return tr, logger, fault
}

func secondsToTicks(seconds FLT) Timecode {
	return Timecode(seconds * testTimebaseHz)
}

// S1 — cold start.
func TestScenarioColdStart(t *testing.T) {
	tr, _, _ := newTestTracker(t, testConfig())

	sentinel := tr.Predict(0)
	assert.Equal(t, UninitializedVariance, sentinel.PosVariance)

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{0, 0, 0}, Rot: IdentityQuat,
		PosVariance: 0.01, RotVariance: 0.01,
	})

	pose := tr.Update(0)
	assert.Equal(t, Vec3{0, 0, 0}, pose.Pos)
	assert.Equal(t, IdentityQuat, pose.Rot)
	assert.InDelta(t, 0.01, pose.PosVariance, 1e-12)
	assert.InDelta(t, 0.01, pose.RotVariance, 1e-12)
}

// S2 — pure gyro integration with Mahony disabled (the canonical
// default): orientation tracks the velocity.AngRot estimate through
// repeated Update calls, not through a direct Mahony
// measurement.
func TestScenarioPureGyro(t *testing.T) {
	cfg := testConfig()
	tr, _, _ := newTestTracker(t, cfg)

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})

	dtTicks := secondsToTicks(0.001)
	var tc Timecode
	for i := 0; i < 1000; i++ {
		tc += dtTicks
		tr.IntegrateIMU(IMUSample{
			Timecode: tc,
			Gyro:     Vec3{0, 0, math.Pi},
			Accel:    Vec3{0, 0, 1},
			Datamask: 1,
		})
		tr.Update(tc)
	}

	final := tr.Update(tc)
	assert.InDelta(t, 1, final.Rot.Norm(), 1e-6)
	assert.InDelta(t, 0, QuatDifference(final.Rot, Quat{0, 0, 0, 1}), 1e-3)
}

// S3 — gravity-only accel holds orientation steady.
func TestScenarioGravityOnlyHoldsOrientation(t *testing.T) {
	cfg := testConfig()
	cfg.ImuMahonyVariance = 0.01
	tr, _, _ := newTestTracker(t, cfg)

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})

	dtTicks := secondsToTicks(0.001)
	var tc Timecode
	for i := 0; i < 10_000; i++ {
		tc += dtTicks
		tr.IntegrateIMU(IMUSample{
			Timecode: tc,
			Gyro:     Vec3{0, 0, 0},
			Accel:    Vec3{0, 0, 1},
			Datamask: 1,
		})
	}

	final := tr.Update(tc)
	assert.InDelta(t, 0, QuatDifference(final.Rot, IdentityQuat), 1e-2)
}

// S4 — implicit velocity from two position observations one second apart.
func TestScenarioImplicitVelocity(t *testing.T) {
	tr, _, _ := newTestTracker(t, testConfig())

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{0, 0, 0}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})
	tr.IntegrateObservation(PoseObservation{
		Timecode: secondsToTicks(1), Pos: Vec3{1, 0, 0}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})

	vel := tr.Velocity()
	assert.InDelta(t, 1.0, vel.Linear[0], 1e-6)
}

// S5 — a >1s but <10s IMU gap warns without faulting.
func TestScenarioTimeGapWarns(t *testing.T) {
	tr, logger, fault := newTestTracker(t, testConfig())

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})
	tr.IntegrateIMU(IMUSample{Timecode: 0, Gyro: Vec3{}, Accel: Vec3{0, 0, 1}, Datamask: 1})
	tr.IntegrateIMU(IMUSample{Timecode: secondsToTicks(2), Gyro: Vec3{}, Accel: Vec3{0, 0, 1}, Datamask: 1})

	assert.Greater(t, logger.warnings, 0)
	assert.Equal(t, 0, fault.faults)
}

// S6 — a diverged velocity variance makes the predictor fall back to
// the stored position.
func TestScenarioDivergenceFallback(t *testing.T) {
	tr, _, _ := newTestTracker(t, testConfig())

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{1, 2, 3}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})
	tr.state.Velocity.Pos.Variance = 100

	predicted := tr.Predict(secondsToTicks(0.5))
	assert.Equal(t, Vec3{1, 2, 3}, predicted.Pos)
}

// Universal property 6: at rest with gravity-cancelling accel and
// zero gyro, velocity stays within epsilon of zero indefinitely.
func TestPropertyIdentityIMUKeepsVelocityZero(t *testing.T) {
	tr, _, _ := newTestTracker(t, testConfig())

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})

	dtTicks := secondsToTicks(0.001)
	var tc Timecode
	for i := 0; i < 2000; i++ {
		tc += dtTicks
		tr.IntegrateIMU(IMUSample{
			Timecode: tc,
			Gyro:     Vec3{},
			Accel:    Vec3{0, 0, 1 / tr.cfg.AccBias},
			Datamask: 1,
		})
	}

	vel := tr.Velocity()
	assert.InDelta(t, 0, vel.Linear.Norm(), 1e-6)
}

// Universal property 7: an observation with R=0 makes the posterior
// pose exactly equal to the observation.
func TestPropertyZeroVarianceObservationDominates(t *testing.T) {
	tr, _, _ := newTestTracker(t, testConfig())

	tr.IntegrateObservation(PoseObservation{
		Timecode: 0, Pos: Vec3{}, Rot: IdentityQuat, PosVariance: 0.01, RotVariance: 0.01,
	})

	exact := Vec3{5, -2, 9}
	exactRot := Quat{0.6, 0.8, 0, 0}.Normalized()
	tr.IntegrateObservation(PoseObservation{
		Timecode: secondsToTicks(0.01), Pos: exact, Rot: exactRot, PosVariance: 0, RotVariance: 0,
	})

	pose := tr.Update(secondsToTicks(0.01))
	assert.Equal(t, exact, pose.Pos)
	assert.Equal(t, exactRot, pose.Rot)
}

func TestNewTrackerRejectsFLTWidthMismatch(t *testing.T) {
	_, err := NewTracker(testConfig(), FLTBits+1, &capturingFaultSink{}, nil)
	require.Error(t, err)
	var mismatch FLTWidthMismatchError
	require.ErrorAs(t, err, &mismatch)
}

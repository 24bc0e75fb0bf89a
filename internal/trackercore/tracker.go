// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package trackercore implements the IMU/optical pose estimator: a
// Mahony complementary filter for orientation plus a diagonal
// Kalman-style blend over {position, orientation, linear velocity,
// angular velocity}, tied together by a variance-per-second decay
// model keyed on a wrapping device timecode.
//
// A Tracker is single-threaded cooperative: all calls against one
// Tracker must be serialized by the caller. Independent Trackers (one
// per tracked object) share no mutable state and may be driven
// concurrently.
package trackercore

import "fmt"

// FaultSink receives conditions the core treats as fatal during
// operation (an unrecoverable IMU time gap); an FLT width mismatch is
// instead returned as an error by NewTracker. The core never unwinds on its own — it hands the condition to the
// caller-supplied sink, which decides whether to panic, restart, or
// otherwise terminate.
type FaultSink interface {
	Fatal(err error)
}

// Logger is the narrow logging surface the core needs: a warning for
// recoverable anomalies (large but non-fatal time gaps) and a debug
// hook for the diagnostic deltas C6 computes.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Config carries every tunable the core reads, once, at construction
// (Shared-resource policy: config is a plain bag of named values
// passed in at init, not a live pointer binding).
type Config struct {
	// TimebaseHz is the device's sample-clock rate; must be stable
	// for the life of the tracker.
	TimebaseHz FLT
	// ImuFreq is the IMU sample rate in Hz, used by the Mahony
	// integration step.
	ImuFreq FLT
	// Codename identifies the tracked object for logging.
	Codename string

	FilterPoseVarPerSec    FLT
	FilterPoseRotVarPerSec FLT
	FilterVelVarPerSec     FLT
	FilterVelRotVarPerSec  FLT

	ImuAccVariance    FLT
	ImuGyroVariance   FLT
	ImuMahonyVariance FLT

	UseObsVelocity    bool
	ObsVelocityVar    FLT
	ObsVelocityRotVar FLT

	// AccBias is the accelerometer scale correction applied before
	// rotation into world frame. Not an externally tunable key in
	// the source this is ported from — it is a fixed constant there,
	// with an adaptive-calibration update path present but commented
	// out. Kept as a Config field rather than a hardcoded constant so
	// a collaborator that does perform that calibration has somewhere
	// to put the result.
	AccBias FLT
}

// DefaultConfig returns the canonical tuning (External interfaces
// config table; AccBias per the upstream constant).
func DefaultConfig() Config {
	return Config{
		TimebaseHz:             48_000_000,
		ImuFreq:                1000,
		FilterPoseVarPerSec:    0.1,
		FilterPoseRotVarPerSec: 0.1,
		FilterVelVarPerSec:     1.0,
		FilterVelRotVarPerSec:  0.5,
		ImuAccVariance:         0.1,
		ImuGyroVariance:        0.01,
		ImuMahonyVariance:      -1,
		UseObsVelocity:         true,
		ObsVelocityVar:         1.0,
		ObsVelocityRotVar:      0.001,
		AccBias:                1,
	}
}

// FLTWidthMismatchError is returned by NewTracker when the build's
// FLT width does not match what the caller expects to have linked
// against (Error handling: "FLT-size mismatch at ABI boundary —
// fatal, before any tracker is created").
type FLTWidthMismatchError struct {
	Expected int
	Actual   int
}

func (e FLTWidthMismatchError) Error() string {
	return fmt.Sprintf("trackercore: FLT width mismatch: expected %d-bit, built %d-bit", e.Expected, e.Actual)
}

// Tracker owns one TrackerState plus the configuration and
// collaborators (fault sink, logger) it was constructed with.
type Tracker struct {
	state  *TrackerState
	cfg    Config
	fault  FaultSink
	logger Logger
}

// NewTracker validates the FLT width and constructs a Tracker with
// sentinel state throughout. expectedFLTBits lets a caller assert its
// own assumption about the build (e.g. read from a persisted config)
// before wiring up any sensor; pass 0 to skip the check.
func NewTracker(cfg Config, expectedFLTBits int, fault FaultSink, logger Logger) (*Tracker, error) {
	if expectedFLTBits != 0 && expectedFLTBits != FLTBits {
		return nil, FLTWidthMismatchError{Expected: expectedFLTBits, Actual: FLTBits}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Tracker{
		state:  NewTrackerState(cfg),
		cfg:    cfg,
		fault:  fault,
		logger: logger,
	}, nil
}

// Predict extrapolates pose to an arbitrary future timecode (C7).
func (t *Tracker) Predict(timecode Timecode) Pose {
	return t.state.Predict(timecode, t.cfg.TimebaseHz)
}

// Update brings the live pose signals forward to timecode in place,
// decays the velocity signals' variance to timecode, and returns the
// pose. Unlike Predict, this commits the
// extrapolation: the next call's Δt is measured from timecode, not
// from whenever the pose was last blended with a measurement. It has
// no tracker-wide divergence short-circuit on top — only the
// per-signal fallback inside advancePositionSignal/advanceRotationSignal
// applies.
func (t *Tracker) Update(timecode Timecode) Pose {
	return t.state.updateToNow(timecode, t.cfg.TimebaseHz)
}

// Velocity returns the current linear/angular velocity estimate.
func (t *Tracker) Velocity() Velocity {
	return t.state.VelocityNow()
}

// Codename reports the tracked object's configured identifier.
func (t *Tracker) Codename() string {
	return t.cfg.Codename
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// SignalKind tags a concrete signal with its role in TrackerState.
// The canonical source dispatches "predict forward" behavior through
// a function pointer per signal; here each signal carries a tag for
// identification, and each update path calls its variant's static
// predictor directly (advancePositionSignal, advanceRotationSignal or
// KalmanInfo.Decay) rather than going through a vtable (C3/C9
// re-architecture).
type SignalKind uint8

const (
	KindPosePos SignalKind = iota
	KindPoseRot
	KindVelPos
	KindVelAngRot
)

// initialVelocityVariance is the small positive variance the root
// velocity signals are seeded with at construction, rather than the
// uninitialized sentinel every other signal starts at.
const initialVelocityVariance = FLT(1e-3)

// SignalPos is a KalmanInfo-tracked Vec3: pose position or linear
// velocity (C3).
type SignalPos struct {
	KalmanInfo
	Value Vec3
	Kind  SignalKind
}

func NewSignalPos(kind SignalKind, variancePerSecond FLT) SignalPos {
	return SignalPos{KalmanInfo: NewKalmanInfo(variancePerSecond), Kind: kind}
}

// SignalRot is a KalmanInfo-tracked Quat: pose orientation (C3).
type SignalRot struct {
	KalmanInfo
	Value Quat
	Kind  SignalKind
}

func NewSignalRot(kind SignalKind, variancePerSecond FLT) SignalRot {
	return SignalRot{KalmanInfo: NewKalmanInfo(variancePerSecond), Kind: kind}
}

// SignalAngVel is a KalmanInfo-tracked Vec3 in axis-angle form
// (direction = rotation axis, magnitude = rad/s): angular velocity
// (C3).
type SignalAngVel struct {
	KalmanInfo
	Value Vec3
	Kind  SignalKind
}

func NewSignalAngVel(kind SignalKind, variancePerSecond FLT) SignalAngVel {
	return SignalAngVel{KalmanInfo: NewKalmanInfo(variancePerSecond), Kind: kind}
}

// IMUSample is one accelerometer+gyroscope reading (External interfaces).
type IMUSample struct {
	Timecode Timecode
	Gyro     Vec3 // rad/s, body frame
	Accel    Vec3 // g, body frame
	Datamask uint8
}

func (s IMUSample) HasData() bool {
	return s.Datamask != 0
}

// PoseObservation is one absolute-pose fix produced externally by the
// optical pipeline (External interfaces).
type PoseObservation struct {
	Timecode    Timecode
	Pos         Vec3
	Rot         Quat
	PosVariance FLT
	RotVariance FLT
}

// Pose is the public query result: a position/orientation pair with
// per-component variance.
type Pose struct {
	Pos         Vec3
	PosVariance FLT
	Rot         Quat
	RotVariance FLT
}

// Velocity is the public query result for the linear/angular
// velocity pair.
type Velocity struct {
	Linear  Vec3
	Angular Vec3
}

// poseSignals groups the position+rotation signal pair shared by the
// live pose, the last integrated observation snapshot, and predictor
// scratch clones.
type poseSignals struct {
	Pos SignalPos
	Rot SignalRot
}

// TrackerState is the full mutable state of one tracked object (C3).
// It is mutated only by C5 (IMU integration) and C6 (observation
// integration) and must be driven by a single goroutine at a time —
// see the tracker package doc for the concurrency contract.
type TrackerState struct {
	Pose     poseSignals
	Velocity struct {
		Pos    SignalPos
		AngRot SignalAngVel
	}

	// LastPose is a snapshot of the most recently integrated
	// observation, used by C6 to derive implicit velocity.
	LastPose poseSignals

	// LastData is the most recent IMU sample, used for Δt on the
	// next IMU sample.
	LastData IMUSample

	// LastAcc is the most recent world-frame, gravity-subtracted
	// acceleration, used for trapezoidal integration (C5).
	LastAcc Vec3

	// IntegralFB is the Mahony integral-feedback accumulator (C4).
	IntegralFB Vec3

	// Tuning, read once at construction (Shared-resource policy:
	// the core tolerates torn scalar reads but config is only ever
	// read here, not mutated after init).
	AccBias         FLT
	AccVar          FLT
	GyroVar         FLT
	MahonyVariance  FLT
	ObsVariance     FLT
	ObsRotVariance  FLT
	UseObsVelocity  bool
}

// NewTrackerState builds a TrackerState whose pose and last-pose
// signals start at the uninitialized sentinel (Invariant 2); the two
// velocity signals start at initialVelocityVariance instead.
func NewTrackerState(cfg Config) *TrackerState {
	s := &TrackerState{
		AccBias:        cfg.AccBias,
		AccVar:         cfg.ImuAccVariance,
		GyroVar:        cfg.ImuGyroVariance,
		MahonyVariance: cfg.ImuMahonyVariance,
		ObsVariance:    cfg.ObsVelocityVar,
		ObsRotVariance: cfg.ObsVelocityRotVar,
		UseObsVelocity: cfg.UseObsVelocity,
	}
	s.Pose.Pos = NewSignalPos(KindPosePos, cfg.FilterPoseVarPerSec)
	s.Pose.Rot = NewSignalRot(KindPoseRot, cfg.FilterPoseRotVarPerSec)
	s.Velocity.Pos = NewSignalPos(KindVelPos, cfg.FilterVelVarPerSec)
	s.Velocity.AngRot = NewSignalAngVel(KindVelAngRot, cfg.FilterVelRotVarPerSec)
	// The velocity signals are seeded with a small positive variance
	// rather than left at the uninitialized sentinel, so that the very
	// first IMU-path velocity update (which folds velocity.Pos.Variance
	// into the incoming measurement's own variance, see imu_integrator.go)
	// never computes a negative R from an uninitialized -1.
	s.Velocity.Pos.Variance = initialVelocityVariance
	s.Velocity.AngRot.Variance = initialVelocityVariance
	s.LastPose.Pos = NewSignalPos(KindPosePos, cfg.FilterPoseVarPerSec)
	s.LastPose.Rot = NewSignalRot(KindPoseRot, cfg.FilterPoseRotVarPerSec)
	return s
}

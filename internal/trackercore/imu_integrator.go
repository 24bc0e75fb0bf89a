// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import "fmt"

// imuTimeGapWarning and imuTimeGapFatal are the thresholds past which
// an inter-sample gap is logged, and past which it is treated as a
// sensor disconnect or clock glitch (Error handling).
const (
	imuTimeGapWarning = FLT(1.0)
	imuTimeGapFatal    = FLT(10.0)
)

// gravityConstant converts the unit-g accelerometer reading into m/s^2
// after the gravity-subtraction step gravitySubtractedAccel performs:
// rotate into world frame, add
// G=(0,0,-1), then scale. Ported as-is from the source; see
// DESIGN.md for the sign-convention note this carries forward rather
// than "fixes".
var gravityConstant = FLT(9.8066)

func gravitySubtractedAccel(rot Quat, accelBiased Vec3) Vec3 {
	rAcc := rot.RotateVec(accelBiased)
	return rAcc.Add(Vec3{0, 0, -1}).Scale(gravityConstant)
}

// IntegrateIMU processes one IMU sample (C5). It is a no-op beyond
// caching the sample until the pose has been bootstrapped by at least
// one observation (IntegrateObservation) and a prior sample exists to
// compute Δt against.
func (t *Tracker) IntegrateIMU(sample IMUSample) {
	s := t.state
	timebaseHz := t.cfg.TimebaseHz

	if !s.LastData.HasData() || s.Pose.Pos.Uninitialized() || s.Pose.Rot.Uninitialized() {
		s.LastData = sample
		return
	}

	if s.MahonyVariance >= 0 {
		qMahony := MahonyUpdate(s.Pose.Rot.Value, sample.Gyro, sample.Accel, MahonyPropGain, MahonyIntGain, t.cfg.ImuFreq, &s.IntegralFB)
		s.UpdatePoseRotation(qMahony, s.MahonyVariance, sample.Timecode, timebaseHz)
	}

	omegaWorld := s.Pose.Rot.Value.RotateVec(sample.Gyro)

	rPos := s.Pose.Rot.Variance + s.Velocity.Pos.Variance + s.AccVar
	rRot := s.Pose.Rot.Variance + s.GyroVar

	dt := Seconds(TimecodeDiff(sample.Timecode, s.LastData.Timecode), timebaseHz)

	switch {
	case !fltIsInf(rPos) && s.AccVar > 0:
		accBiased := sample.Accel.Scale(s.AccBias)
		accWorld := gravitySubtractedAccel(s.Pose.Rot.Value, accBiased)

		dv := accWorld.Add(s.LastAcc).Scale(0.5 * dt)
		newVelPos := s.Velocity.Pos.Value.Add(dv)
		s.LastAcc = accWorld

		s.UpdateVelocityPosition(newVelPos, rPos, sample.Timecode, timebaseHz)
		s.UpdateAngVelocity(omegaWorld, rRot, sample.Timecode, timebaseHz)

	case !fltIsInf(rRot) && s.GyroVar > 0:
		s.UpdateAngVelocity(omegaWorld, rRot, sample.Timecode, timebaseHz)
	}

	if dt > imuTimeGapWarning {
		t.logger.Warnf("%s: IMU packets dropped, %.3fs reported between samples", t.cfg.Codename, dt)
	}
	if dt > imuTimeGapFatal {
		if t.fault != nil {
			t.fault.Fatal(fmt.Errorf("trackercore: %s: IMU time gap %.3fs exceeds fatal threshold", t.cfg.Codename, dt))
		}
	}

	s.LastData = sample
}

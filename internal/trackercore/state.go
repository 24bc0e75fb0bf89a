// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// UpdatePosePosition blends a position measurement into the pose
// signal (C3 update_position). Step 1 brings the signal to timecode
// via its predict_fn (delegated to C7, since pose-position
// extrapolates using stored velocity); step 2 runs the C2 blend.
func (s *TrackerState) UpdatePosePosition(meas Vec3, vMeas FLT, timecode Timecode, timebaseHz FLT) FLT {
	advancePositionSignal(&s.Pose.Pos, s.Velocity.Pos, timecode, timebaseHz)
	return BlendVec3(&s.Pose.Pos.Value, meas, &s.Pose.Pos.KalmanInfo, vMeas, timecode)
}

// UpdatePoseRotation is the rotation analogue of UpdatePosePosition
// (C3 update_rotation).
func (s *TrackerState) UpdatePoseRotation(meas Quat, vMeas FLT, timecode Timecode, timebaseHz FLT) FLT {
	advanceRotationSignal(&s.Pose.Rot, s.Velocity.AngRot, timecode, timebaseHz)
	return BlendQuat(&s.Pose.Rot.Value, meas, &s.Pose.Rot.KalmanInfo, vMeas, timecode)
}

// UpdatePose is a position update plus a rotation update, each with
// its own measurement variance (C3 update_pose).
func (s *TrackerState) UpdatePose(posMeas Vec3, posVar FLT, rotMeas Quat, rotVar FLT, timecode Timecode, timebaseHz FLT) {
	s.UpdatePosePosition(posMeas, posVar, timecode, timebaseHz)
	s.UpdatePoseRotation(rotMeas, rotVar, timecode, timebaseHz)
}

// UpdateVelocityPosition blends a linear-velocity measurement (C3
// update_position applied to the root velocity signal). The velocity
// signals are the "root" random-walk signals: their predict_fn is
// identity value with variance decay only, no delegation to C7.
func (s *TrackerState) UpdateVelocityPosition(meas Vec3, vMeas FLT, timecode Timecode, timebaseHz FLT) FLT {
	s.Velocity.Pos.Decay(timecode, timebaseHz)
	return BlendVec3(&s.Velocity.Pos.Value, meas, &s.Velocity.Pos.KalmanInfo, vMeas, timecode)
}

// UpdateAngVelocity blends an angular-velocity measurement (C3
// update_ang_velocity).
func (s *TrackerState) UpdateAngVelocity(meas Vec3, vMeas FLT, timecode Timecode, timebaseHz FLT) FLT {
	s.Velocity.AngRot.Decay(timecode, timebaseHz)
	return BlendVec3(&s.Velocity.AngRot.Value, meas, &s.Velocity.AngRot.KalmanInfo, vMeas, timecode)
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// IntegrateObservation processes one absolute pose observation from
// the external optical pipeline (C6): blend it into the pose signals,
// then derive an implicit velocity from the finite difference against
// the previous observation.
func (t *Tracker) IntegrateObservation(obs PoseObservation) {
	s := t.state
	timebaseHz := t.cfg.TimebaseHz

	// Diagnostic-only deltas: how far off were we before vs. after
	// accounting for the time elapsed since the last pose update.
	beforeLocDiff := obs.Pos.Dist(s.Pose.Pos.Value)
	beforeRotDiff := QuatDifference(obs.Rot, s.Pose.Rot.Value)
	predicted := s.Predict(obs.Timecode, timebaseHz)
	t.logger.Debugf("%s: obs delta pos %.4f->%.4f rot %.4f->%.4f", t.cfg.Codename,
		beforeLocDiff, obs.Pos.Dist(predicted.Pos), beforeRotDiff, QuatDifference(obs.Rot, predicted.Rot))

	s.UpdatePose(obs.Pos, obs.PosVariance, obs.Rot, obs.RotVariance, obs.Timecode, timebaseHz)

	// The raw observation — not the posterior — becomes the next
	// last_pose snapshot, so implicit velocity is a direct finite
	// difference of observations, decoupled from how heavily the
	// filter trusted them.
	snapshot := poseSignals{
		Pos: SignalPos{
			KalmanInfo: KalmanInfo{Variance: obs.PosVariance, LastUpdate: obs.Timecode},
			Value:      obs.Pos,
			Kind:       KindPosePos,
		},
		Rot: SignalRot{
			KalmanInfo: KalmanInfo{Variance: obs.RotVariance, LastUpdate: obs.Timecode},
			Value:      obs.Rot,
			Kind:       KindPoseRot,
		},
	}

	dt := Seconds(TimecodeDiff(obs.Timecode, s.LastPose.Pos.LastUpdate), timebaseHz)

	if s.UseObsVelocity && !s.LastPose.Rot.Value.IsZero() && dt != 0 {
		vAng := FindAngVelocity(dt, s.LastPose.Rot.Value, snapshot.Rot.Value)
		vLin := snapshot.Pos.Value.Sub(s.LastPose.Pos.Value).Scale(1 / dt)

		if dt > imuTimeGapWarning {
			t.logger.Warnf("%s: gap of %.3fs detected between observations", t.cfg.Codename, dt)
		}

		rPos := snapshot.Pos.Variance + s.LastPose.Pos.Variance + s.ObsVariance
		rRot := snapshot.Rot.Variance + s.LastPose.Rot.Variance + s.ObsRotVariance

		s.UpdateVelocityPosition(vLin, rPos, obs.Timecode, timebaseHz)
		s.UpdateAngVelocity(vAng, rRot, obs.Timecode, timebaseHz)
	}

	s.LastPose = snapshot
}

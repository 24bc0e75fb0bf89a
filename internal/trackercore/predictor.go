// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

// maxPredictHorizon caps how far a single predict step extrapolates
// position/rotation forward, bounding extrapolation error during
// transient sensor dropouts (C7).
const maxPredictHorizon = FLT(0.5)

func clampHorizon(seconds FLT) FLT {
	return clampFLT(seconds, 0, maxPredictHorizon)
}

// advancePositionSignal brings pos up to timecode in place, by
// applying the stored velocity signal (C3's predict_fn wiring for
// pose-position, delegated here per C7). If pos is still
// uninitialized it is left untouched — the sentinel propagates.
func advancePositionSignal(pos *SignalPos, vel SignalPos, timecode Timecode, timebaseHz FLT) {
	if pos.Uninitialized() {
		return
	}

	dtVel := Seconds(TimecodeDiff(timecode, vel.LastUpdate), timebaseHz)
	dtPose := clampHorizon(Seconds(TimecodeDiff(timecode, pos.LastUpdate), timebaseHz))

	vVar := vel.Variance + dtVel*vel.VariancePerSecond

	if vVar > DivergedVariance {
		pos.Variance += pos.VariancePerSecond * dtPose
		pos.LastUpdate = timecode
		return
	}

	pos.Value = pos.Value.Add(vel.Value.Scale(dtPose))
	pos.Variance += dtPose * (vVar*vVar + pos.VariancePerSecond)
	pos.LastUpdate = timecode
}

// advanceRotationSignal is the rotation analogue of
// advancePositionSignal, using apply_ang_velocity in place of vector
// addition.
func advanceRotationSignal(rot *SignalRot, angVel SignalAngVel, timecode Timecode, timebaseHz FLT) {
	if rot.Uninitialized() {
		return
	}

	dtVel := Seconds(TimecodeDiff(timecode, angVel.LastUpdate), timebaseHz)
	dtPose := clampHorizon(Seconds(TimecodeDiff(timecode, rot.LastUpdate), timebaseHz))

	vVar := angVel.Variance + dtVel*angVel.VariancePerSecond

	if vVar > DivergedVariance {
		rot.Variance += rot.VariancePerSecond * dtPose
		rot.LastUpdate = timecode
		return
	}

	rot.Value = ApplyAngVelocity(angVel.Value, dtPose, rot.Value)
	rot.Variance += dtPose * (vVar + rot.VariancePerSecond)
	rot.LastUpdate = timecode
}

// advancePoseToNow runs the per-signal predict_fn wiring for both
// pose signals against a snapshot, without the tracker-wide velocity
// guard Predict applies on top. Signal copies are plain value types
// (Vec3/Quat are arrays), so the clone-then-advance below never
// touches the live TrackerState.
func (s *TrackerState) advancePoseToNow(timecode Timecode, timebaseHz FLT) Pose {
	pos := s.Pose.Pos
	rot := s.Pose.Rot

	advancePositionSignal(&pos, s.Velocity.Pos, timecode, timebaseHz)
	advanceRotationSignal(&rot, s.Velocity.AngRot, timecode, timebaseHz)

	return Pose{
		Pos:         pos.Value,
		PosVariance: pos.Variance,
		Rot:         rot.Value,
		RotVariance: rot.Variance,
	}
}

// updateToNow brings the live pose signals forward to timecode in
// place, via each signal's own predict_fn, decays the velocity signals'
// variance to timecode as well, and returns the pose.
// This is the mutating counterpart the source's public "update" entry
// point performs (as opposed to "predict", which never touches stored
// state) — repeated small-step calls accumulate orientation/position
// correctly because each call both extrapolates and commits.
func (s *TrackerState) updateToNow(timecode Timecode, timebaseHz FLT) Pose {
	advancePositionSignal(&s.Pose.Pos, s.Velocity.Pos, timecode, timebaseHz)
	advanceRotationSignal(&s.Pose.Rot, s.Velocity.AngRot, timecode, timebaseHz)

	s.Velocity.Pos.Decay(timecode, timebaseHz)
	s.Velocity.Pos.LastUpdate = timecode
	s.Velocity.AngRot.Decay(timecode, timebaseHz)
	s.Velocity.AngRot.LastUpdate = timecode

	return Pose{
		Pos:         s.Pose.Pos.Value,
		PosVariance: s.Pose.Pos.Variance,
		Rot:         s.Pose.Rot.Value,
		RotVariance: s.Pose.Rot.Variance,
	}
}

// Predict extrapolates pose to timecode without mutating state (C7).
// When either velocity signal has diverged past DivergedVariance, the
// stored pose is returned verbatim with no decay applied at all — a
// coarser, tracker-wide guard on top of the per-signal fallback each
// advance*Signal already performs, matching the source's separate
// "predict" entry point (distinct from "update", which applies only
// the per-signal fallback; see Tracker.Update).
func (s *TrackerState) Predict(timecode Timecode, timebaseHz FLT) Pose {
	if s.Velocity.Pos.Variance > DivergedVariance || s.Velocity.AngRot.Variance > DivergedVariance {
		return Pose{
			Pos:         s.Pose.Pos.Value,
			PosVariance: s.Pose.Pos.Variance,
			Rot:         s.Pose.Rot.Value,
			RotVariance: s.Pose.Rot.Variance,
		}
	}
	return s.advancePoseToNow(timecode, timebaseHz)
}

// VelocityNow returns the current linear/angular velocity estimate with
// no time-decay applied beyond what the last update already computed.
func (s *TrackerState) VelocityNow() Velocity {
	return Velocity{Linear: s.Velocity.Pos.Value, Angular: s.Velocity.AngRot.Value}
}

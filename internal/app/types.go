// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/pose_tracker/internal/tlog"
	"github.com/relabs-tech/pose_tracker/internal/trackercore"
)

// posePayload is the wire format published for one tracked object's
// best pose estimate: the quaternion/position pair plus their scalar
// variances, so a subscriber (web dashboard, console) can judge how
// much to trust a reading without re-deriving it.
type posePayload struct {
	Timecode    trackercore.Timecode `json:"timecode"`
	Pos         trackercore.Vec3     `json:"pos"`
	PosVariance trackercore.FLT      `json:"pos_variance"`
	Rot         trackercore.Quat     `json:"rot"`
	RotVariance trackercore.FLT      `json:"rot_variance"`
}

func toPosePayload(tc trackercore.Timecode, p trackercore.Pose) posePayload {
	return posePayload{
		Timecode:    tc,
		Pos:         p.Pos,
		PosVariance: p.PosVariance,
		Rot:         p.Rot,
		RotVariance: p.RotVariance,
	}
}

// velocityPayload is the wire format for Tracker.Velocity().
type velocityPayload struct {
	Linear  trackercore.Vec3 `json:"linear"`
	Angular trackercore.Vec3 `json:"angular"`
}

func toVelocityPayload(v trackercore.Velocity) velocityPayload {
	return velocityPayload{Linear: v.Linear, Angular: v.Angular}
}

// fusePoses combines two independent pose estimates of the same rigid
// body into one: position is the plain average, each variance is
// (a+b)/4 (the variance of an average of two uncorrelated estimates),
// and orientation is the midpoint quaternion via trackercore.Slerp.
func fusePoses(a, b trackercore.Pose) trackercore.Pose {
	return trackercore.Pose{
		Pos:         a.Pos.Add(b.Pos).Scale(0.5),
		PosVariance: (a.PosVariance + b.PosVariance) * 0.25,
		Rot:         trackercore.Slerp(a.Rot, b.Rot, 0.5),
		RotVariance: (a.RotVariance + b.RotVariance) * 0.25,
	}
}

func fuseVelocities(a, b trackercore.Velocity) trackercore.Velocity {
	return trackercore.Velocity{
		Linear:  a.Linear.Add(b.Linear).Scale(0.5),
		Angular: a.Angular.Add(b.Angular).Scale(0.5),
	}
}

// publishJSON marshals v and publishes it to topic, logging (not
// returning) any error — a producer's publish loop should keep
// ticking even if one message fails to go out.
func publishJSON(client mqtt.Client, topic string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		tlog.Log.Warn().Str("topic", topic).Err(err).Msg("JSON marshal error")
		return
	}
	token := client.Publish(topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		tlog.Log.Warn().Str("topic", topic).Err(token.Error()).Msg("MQTT publish error")
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock turns wall-clock time into the wrapping device
// Timecode trackercore expects, standing in for the hardware sample
// counter the real sensor pipeline would expose.
package clock

import (
	"time"

	"github.com/relabs-tech/pose_tracker/internal/trackercore"
)

// TicksNow converts the current time to a Timecode at timebaseHz,
// truncated to 32 bits the same way the device clock itself wraps.
// Deriving it from wall-clock time rather than a per-process counter
// keeps timecodes comparable across the separate producer processes
// that publish IMU samples and GPS observations independently over
// MQTT.
func TicksNow(timebaseHz trackercore.FLT) trackercore.Timecode {
	now := time.Now()
	hz := uint64(timebaseHz)
	ticks := uint64(now.Unix())*hz + uint64(now.Nanosecond())*hz/uint64(time.Second)
	return trackercore.Timecode(uint32(ticks))
}

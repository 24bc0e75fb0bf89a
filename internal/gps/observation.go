// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"math"

	"github.com/relabs-tech/pose_tracker/internal/trackercore"
)

// metersPerDegreeLat is the approximate arc length of one degree of
// latitude; the east-west equivalent scales by cos(latitude). This is
// the standard equirectangular tangent-plane approximation, adequate
// over the few-kilometer span a tracked object moves across between
// fixes — not a geodesic projection.
const metersPerDegreeLat = 111_320.0

// ENUProjector turns successive GPS fixes into Vec3 positions on a
// local east-north-up tangent plane anchored at the first valid fix it
// sees. It stands in for the lighthouse poser spec.md's C6 was written
// against (Non-goals excludes building that poser; a real GPS fix
// plays the same role here — a sparse, absolute, external pose
// measurement).
type ENUProjector struct {
	originLat, originLon, originAlt float64
	anchored                        bool
}

// Project returns the east/north/up offset of (lat, lon, altitude)
// from this projector's origin, anchoring the origin to the first call
// if one hasn't been set yet.
func (p *ENUProjector) Project(lat, lon, altitude float64) trackercore.Vec3 {
	if !p.anchored {
		p.originLat, p.originLon, p.originAlt = lat, lon, altitude
		p.anchored = true
	}
	metersPerDegreeLon := metersPerDegreeLat * math.Cos(p.originLat*math.Pi/180)
	east := (lon - p.originLon) * metersPerDegreeLon
	north := (lat - p.originLat) * metersPerDegreeLat
	up := altitude - p.originAlt
	return trackercore.Vec3{trackercore.FLT(east), trackercore.FLT(north), trackercore.FLT(up)}
}

// ToObservation builds the sparse absolute-pose observation spec.md's
// C6 consumes from one combined GPS fix: position from the ENU
// projection, orientation a yaw-only quaternion derived from
// course-over-ground. A GPS fix carries no roll/pitch information, so
// those axes are left at identity in Rot — rotVariance communicates
// that the yaw term itself is only trustworthy in motion, and the
// blend in C2/C3 naturally defers to whatever the Mahony/gyro path
// already holds wherever this observation is uninformative. Returns
// ok=false for a void fix (Validity != "A"), which the caller should
// simply skip rather than integrate.
func (p *ENUProjector) ToObservation(fix Fix, timecode trackercore.Timecode, posVariance, rotVariance trackercore.FLT, minSpeedKnots float64) (obs trackercore.PoseObservation, ok bool) {
	if fix.Validity != "A" {
		return trackercore.PoseObservation{}, false
	}

	pos := p.Project(fix.Latitude, fix.Longitude, fix.Altitude)

	if fix.SpeedKnots < minSpeedKnots {
		// Course-over-ground is meaningless near a standstill; inflate
		// the rotation variance so the blend effectively ignores it
		// rather than feeding a random heading into the filter.
		rotVariance = trackercore.DivergedVariance
	}

	yaw := fix.CourseDeg * math.Pi / 180
	rot := trackercore.Quat{
		trackercore.FLT(math.Cos(yaw / 2)),
		0,
		0,
		trackercore.FLT(math.Sin(yaw / 2)),
	}

	return trackercore.PoseObservation{
		Timecode:    timecode,
		Pos:         pos,
		Rot:         rot,
		PosVariance: posVariance,
		RotVariance: rotVariance,
	}, true
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/pose_tracker/internal/clock"
	"github.com/relabs-tech/pose_tracker/internal/config"
	"github.com/relabs-tech/pose_tracker/internal/gps"
	"github.com/relabs-tech/pose_tracker/internal/tlog"
	"github.com/relabs-tech/pose_tracker/internal/trackercore"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes combined GPS fixes as JSON to MQTT — plus, every time RMC
// carries a fresh fix, a trackercore.PoseObservation derived via
// gps.ToObservation, for the IMU producer's trackers to integrate
// (C6).
func RunGPSProducer() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	tlog.Log.Info().Str("broker", cfg.MQTTBroker).Msg("gps producer connected to MQTT")

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	tlog.Log.Info().Str("port", serialOpts.PortName).Uint("baud", serialOpts.BaudRate).Msg("gps serial port opened")

	reader := bufio.NewReader(port)

	var position gps.Position
	var velocity gps.Velocity
	var quality gps.Quality
	var current gps.Fix

	var gpsBuffer, glonassBuffer []gps.Satellite
	projector := &gps.ENUProjector{}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			tlog.Log.Warn().Err(err).Msg("gps read error")
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}

		switch sentence.DataType() {
		case nmea.TypeRMC:
			m := sentence.(nmea.RMC)

			position.Time = m.Time.String()
			position.Date = m.Date.String()
			position.Latitude = m.Latitude
			position.Longitude = m.Longitude
			position.Validity = string(m.Validity)

			velocity.SpeedKnots = m.Speed
			velocity.CourseDeg = m.Course

			current.Time = m.Time.String()
			current.Date = m.Date.String()
			current.Latitude = m.Latitude
			current.Longitude = m.Longitude
			current.SpeedKnots = m.Speed
			current.CourseDeg = m.Course
			current.Validity = string(m.Validity)

			publishJSON(client, cfg.TopicGPSPosition, position)
			publishJSON(client, cfg.TopicGPSVelocity, velocity)
			publishJSON(client, cfg.TopicGPS, current)

			tc := clock.TicksNow(trackercore.FLT(cfg.TimebaseHz))
			if obs, ok := projector.ToObservation(current, tc,
				trackercore.FLT(cfg.GPSPosVariance), trackercore.FLT(cfg.GPSRotVariance),
				cfg.GPSMinSpeedKnots); ok {
				publishJSON(client, cfg.TopicGPSObserved, obs)
			}

		case nmea.TypeGGA:
			m := sentence.(nmea.GGA)

			position.Altitude = m.Altitude
			quality.NumSatellites = m.NumSatellites
			quality.HDOP = m.HDOP
			quality.FixQuality = fixQualityLabel(m.FixQuality)

			current.Altitude = m.Altitude
			current.NumSatellites = m.NumSatellites
			current.HDOP = m.HDOP
			current.FixQuality = quality.FixQuality

			publishJSON(client, cfg.TopicGPSPosition, position)
			publishJSON(client, cfg.TopicGPSQuality, quality)

		case nmea.TypeGSA:
			m := sentence.(nmea.GSA)

			quality.FixType = fixTypeLabel(m.FixType)
			quality.PDOP = m.PDOP
			quality.HDOP = m.HDOP
			quality.VDOP = m.VDOP

			current.FixType = quality.FixType
			current.PDOP = m.PDOP
			current.HDOP = m.HDOP
			current.VDOP = m.VDOP

			publishJSON(client, cfg.TopicGPSQuality, quality)

		case nmea.TypeVTG:
			m := sentence.(nmea.VTG)

			velocity.SpeedKmh = m.GroundSpeedKPH
			current.SpeedKmh = m.GroundSpeedKPH

			publishJSON(client, cfg.TopicGPSVelocity, velocity)

		case nmea.TypeGSV:
			m := sentence.(nmea.GSV)

			// GSV sentences span multiple messages; the talker prefix
			// ($GL.. vs $GP..) tells GLONASS and GPS constellations
			// apart, since the go-nmea struct itself doesn't carry it.
			isGLONASS := strings.HasPrefix(line, "$GL")

			if m.MessageNumber == 1 {
				if isGLONASS {
					glonassBuffer = nil
				} else {
					gpsBuffer = nil
				}
			}

			for _, sv := range m.Info {
				sat := gps.Satellite{
					SVNumber:  sv.SVPRNNumber,
					Elevation: sv.Elevation,
					Azimuth:   sv.Azimuth,
					SNR:       sv.SNR,
				}
				if isGLONASS {
					glonassBuffer = append(glonassBuffer, sat)
				} else {
					gpsBuffer = append(gpsBuffer, sat)
				}
			}

			if m.MessageNumber == m.TotalMessages {
				satellites := gps.SatellitesInView{
					GPSSatellites:     gpsBuffer,
					GLONASSSatellites: glonassBuffer,
					GPSCount:          len(gpsBuffer),
					GLONASSCount:      len(glonassBuffer),
				}
				current.GPSSatellitesInView = gpsBuffer
				current.GLONASSSatellitesInView = glonassBuffer
				publishJSON(client, cfg.TopicGPSSatellites, satellites)
			}

		default:
			// Ignore other sentence types (GLL, etc.)
		}
	}
}

func fixQualityLabel(code string) string {
	switch code {
	case "0":
		return "invalid"
	case "1":
		return "GPS"
	case "2":
		return "DGPS"
	case "4":
		return "RTK fixed"
	case "5":
		return "RTK float"
	default:
		return code
	}
}

func fixTypeLabel(code string) string {
	switch code {
	case "1":
		return "no fix"
	case "2":
		return "2D"
	case "3":
		return "3D"
	default:
		return code
	}
}

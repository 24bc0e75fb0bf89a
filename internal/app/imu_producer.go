// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/pose_tracker/internal/clock"
	"github.com/relabs-tech/pose_tracker/internal/config"
	imu_raw "github.com/relabs-tech/pose_tracker/internal/imu"
	"github.com/relabs-tech/pose_tracker/internal/sensors"
	"github.com/relabs-tech/pose_tracker/internal/tlog"
	"github.com/relabs-tech/pose_tracker/internal/trackercore"
)

// trackedIMU couples one tracked object's sensor reader with its own
// Tracker and publish topics. Every Tracker here is driven exclusively
// from the single publish-loop goroutine in RunIMUProducer, so each
// satisfies trackercore's single-writer contract.
type trackedIMU struct {
	codename   string
	tracker    *trackercore.Tracker
	readRaw    func() (imu_raw.IMURaw, error)
	available  func() bool
	accelRange byte
	gyroRange  byte
	topicPose  string
	topicVel   string
}

func newTracker(cfg *config.Config, codename string) *trackercore.Tracker {
	tr, err := trackercore.NewTracker(cfg.TrackerConfig(codename), 0, tlog.NewFaultSink(codename), tlog.NewTrackerLogger(codename))
	if err != nil {
		tlog.Log.Fatal().Err(err).Str("codename", codename).Msg("failed to construct tracker")
	}
	return tr
}

// RunIMUProducer reads the left and right MPU9250 IMUs, feeds each
// sample into that side's Tracker (C5), applies GPS-derived pose
// observations published by RunGPSProducer (C6), and publishes each
// side's pose/velocity plus a fused pose/velocity to MQTT.
func RunIMUProducer() error {
	cfg := config.Get()
	tlog.Log.Info().Msg("starting IMU producer")

	mgr := sensors.GetIMUManager()
	if err := mgr.Init(); err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	tlog.Log.Info().Str("broker", cfg.MQTTBroker).Msg("imu producer connected to MQTT")

	left := &trackedIMU{
		codename:   cfg.CodenameLeft,
		tracker:    newTracker(cfg, cfg.CodenameLeft),
		readRaw:    mgr.ReadLeftIMU,
		available:  mgr.IsLeftIMUAvailable,
		accelRange: cfg.IMUAccelRange,
		gyroRange:  cfg.IMUGyroRange,
		topicPose:  cfg.TopicPoseLeft,
		topicVel:   cfg.TopicVelLeft,
	}
	right := &trackedIMU{
		codename:   cfg.CodenameRight,
		tracker:    newTracker(cfg, cfg.CodenameRight),
		readRaw:    mgr.ReadRightIMU,
		available:  mgr.IsRightIMUAvailable,
		accelRange: cfg.IMUAccelRange,
		gyroRange:  cfg.IMUGyroRange,
		topicPose:  cfg.TopicPoseRight,
		topicVel:   cfg.TopicVelRight,
	}
	sides := []*trackedIMU{left, right}

	// GPS-derived pose observations arrive asynchronously from the GPS
	// producer process; they're applied to both trackers from this
	// same goroutine so each Tracker still only ever sees one writer.
	obsCh := make(chan trackercore.PoseObservation, 8)
	obsToken := client.Subscribe(cfg.TopicGPSObserved, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var obs trackercore.PoseObservation
		if err := json.Unmarshal(msg.Payload(), &obs); err != nil {
			tlog.Log.Warn().Err(err).Msg("imu producer: gps observation unmarshal error")
			return
		}
		select {
		case obsCh <- obs:
		default:
			tlog.Log.Warn().Msg("imu producer: gps observation dropped, producer loop busy")
		}
	})
	obsToken.Wait()
	if obsToken.Error() != nil {
		return obsToken.Error()
	}

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	tickCounter := 0
	logInterval := cfg.ConsoleLogInterval / cfg.IMUSampleInterval

	tlog.Log.Info().Msg("imu producer starting publish loop")

	for {
		select {
		case obs := <-obsCh:
			for _, s := range sides {
				s.tracker.IntegrateObservation(obs)
			}

		case <-ticker.C:
			tickCounter++
			tc := clock.TicksNow(trackercore.FLT(cfg.TimebaseHz))

			for _, s := range sides {
				if !s.available() {
					continue
				}
				raw, err := s.readRaw()
				if err != nil {
					tlog.Log.Warn().Str("codename", s.codename).Err(err).Msg("imu producer: read error")
					continue
				}

				sample := sensors.ToIMUSample(raw, tc, s.accelRange, s.gyroRange)
				s.tracker.IntegrateIMU(sample)

				pose := s.tracker.Update(tc)
				publishJSON(client, s.topicPose, toPosePayload(tc, pose))
				publishJSON(client, s.topicVel, toVelocityPayload(s.tracker.Velocity()))
			}

			fusedPose := fusePoses(left.tracker.Predict(tc), right.tracker.Predict(tc))
			publishJSON(client, cfg.TopicPoseFused, toPosePayload(tc, fusedPose))
			fusedVel := fuseVelocities(left.tracker.Velocity(), right.tracker.Velocity())
			publishJSON(client, cfg.TopicVelFused, toVelocityPayload(fusedVel))

			if tickCounter >= logInterval {
				tickCounter = 0
				tlog.Log.Info().
					Str("codename", left.codename).
					Interface("pos", fusedPose.Pos).
					Msg("fused pose tick")
			}
		}
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/pose_tracker/internal/config"
	"github.com/relabs-tech/pose_tracker/internal/tlog"
)

// quatToEulerDeg converts a unit quaternion (w, x, y, z) to roll,
// pitch, yaw in degrees (ZYX convention), for a human-readable console
// line. Not part of the estimator — the tracker itself stays entirely
// in quaternions.
func quatToEulerDeg(q posePayload) (roll, pitch, yaw float64) {
	w, x, y, z := float64(q.Rot[0]), float64(q.Rot[1]), float64(q.Rot[2]), float64(q.Rot[3])

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	switch {
	case sinp >= 1:
		pitch = math.Pi / 2
	case sinp <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinp)
	}

	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	const rad2deg = 180 / math.Pi
	return roll * rad2deg, pitch * rad2deg, yaw * rad2deg
}

// RunConsoleMQTT subscribes to the fused pose topic and prints each
// update as roll/pitch/yaw, the teacher console's presentation kept
// for an estimator that now speaks quaternions internally.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	tlog.Log.Info().Str("broker", cfg.MQTTBroker).Msg("console connected to MQTT")

	token := client.Subscribe(cfg.TopicPoseFused, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p posePayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			tlog.Log.Warn().Err(err).Msg("console: pose unmarshal error")
			return
		}
		roll, pitch, yaw := quatToEulerDeg(p)
		fmt.Printf("ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f  POS=(%.2f, %.2f, %.2f)\n",
			roll, pitch, yaw, p.Pos[0], p.Pos[1], p.Pos[2])
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	tlog.Log.Info().Str("topic", cfg.TopicPoseFused).Msg("console subscribed")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	tlog.Log.Info().Msg("console shutting down")
	client.Disconnect(250)
	return nil
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/pose_tracker/internal/config"
	"github.com/relabs-tech/pose_tracker/internal/gps"
	imu_raw "github.com/relabs-tech/pose_tracker/internal/imu"
	"github.com/relabs-tech/pose_tracker/internal/tlog"
)

// RunWeb subscribes to the per-side and fused pose/velocity topics,
// the combined GPS fix and satellite topics, and the raw IMU topics,
// keeps the latest value of each under one lock, serves it back over a small
// JSON API, and live-broadcasts the fused pose to any connected
// websocket client via poseBroadcastHub.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu sync.RWMutex

		lastPoseLeft, lastPoseRight, lastPoseFused posePayload
		havePoseLeft, havePoseRight, havePoseFused  bool

		lastVelLeft, lastVelRight, lastVelFused    velocityPayload
		haveVelLeft, haveVelRight, haveVelFused     bool

		lastFix    gps.Fix
		haveFix    bool
		lastSats   gps.SatellitesInView
		haveSats   bool

		lastIMULeft, lastIMURight   imu_raw.IMURaw
		haveIMULeft, haveIMURight   bool
	)

	hub := newPoseBroadcastHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	tlog.Log.Info().Str("broker", cfg.MQTTBroker).Msg("web connected to MQTT")

	subscribeJSON := func(topic string, into func([]byte) error) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if err := into(msg.Payload()); err != nil {
				tlog.Log.Warn().Str("topic", topic).Err(err).Msg("web: unmarshal error")
			}
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		tlog.Log.Info().Str("topic", topic).Msg("web: subscribed")
		return nil
	}

	if err := subscribeJSON(cfg.TopicPoseLeft, func(b []byte) error {
		var p posePayload
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		mu.Lock()
		lastPoseLeft, havePoseLeft = p, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicPoseRight, func(b []byte) error {
		var p posePayload
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		mu.Lock()
		lastPoseRight, havePoseRight = p, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicPoseFused, func(b []byte) error {
		var p posePayload
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		mu.Lock()
		lastPoseFused, havePoseFused = p, true
		mu.Unlock()
		hub.broadcast(p)
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicVelLeft, func(b []byte) error {
		var v velocityPayload
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		mu.Lock()
		lastVelLeft, haveVelLeft = v, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicVelRight, func(b []byte) error {
		var v velocityPayload
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		mu.Lock()
		lastVelRight, haveVelRight = v, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicVelFused, func(b []byte) error {
		var v velocityPayload
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		mu.Lock()
		lastVelFused, haveVelFused = v, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicGPS, func(b []byte) error {
		var f gps.Fix
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		mu.Lock()
		lastFix, haveFix = f, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicGPSSatellites, func(b []byte) error {
		var s gps.SatellitesInView
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		mu.Lock()
		lastSats, haveSats = s, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicIMULeft, func(b []byte) error {
		var s imu_raw.IMURaw
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		mu.Lock()
		lastIMULeft, haveIMULeft = s, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	if err := subscribeJSON(cfg.TopicIMURight, func(b []byte) error {
		var s imu_raw.IMURaw
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		mu.Lock()
		lastIMURight, haveIMURight = s, true
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}

	serveJSON := func(path string, have func() bool, get func() interface{}, notYetMsg string) {
		http.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			mu.RLock()
			ok := have()
			v := get()
			mu.RUnlock()

			if !ok {
				http.Error(w, notYetMsg, http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(v); err != nil {
				tlog.Log.Warn().Str("path", path).Err(err).Msg("web: JSON encode error")
			}
		})
	}

	serveJSON("/api/pose/left", func() bool { return havePoseLeft }, func() interface{} { return lastPoseLeft }, "no left pose yet")
	serveJSON("/api/pose/right", func() bool { return havePoseRight }, func() interface{} { return lastPoseRight }, "no right pose yet")
	serveJSON("/api/pose/fused", func() bool { return havePoseFused }, func() interface{} { return lastPoseFused }, "no fused pose yet")
	serveJSON("/api/velocity/left", func() bool { return haveVelLeft }, func() interface{} { return lastVelLeft }, "no left velocity yet")
	serveJSON("/api/velocity/right", func() bool { return haveVelRight }, func() interface{} { return lastVelRight }, "no right velocity yet")
	serveJSON("/api/velocity/fused", func() bool { return haveVelFused }, func() interface{} { return lastVelFused }, "no fused velocity yet")
	serveJSON("/api/gps", func() bool { return haveFix }, func() interface{} { return lastFix }, "no gps data yet")
	serveJSON("/api/gps/satellites", func() bool { return haveSats }, func() interface{} { return lastSats }, "no gps satellite data yet")
	serveJSON("/api/imu/left", func() bool { return haveIMULeft }, func() interface{} { return lastIMULeft }, "no left imu data yet")
	serveJSON("/api/imu/right", func() bool { return haveIMURight }, func() interface{} { return lastIMURight }, "no right imu data yet")

	// Live pose dashboard: one fused-pose JSON frame per producer tick.
	http.HandleFunc("/api/pose/ws", hub.handle)

	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	tlog.Log.Info().Str("addr", addr).Msg("web: listening")
	return http.ListenAndServe(addr, nil)
}

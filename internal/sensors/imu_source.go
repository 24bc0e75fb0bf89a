// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"

	"github.com/relabs-tech/pose_tracker/internal/config"
	imu_raw "github.com/relabs-tech/pose_tracker/internal/imu"
	"github.com/relabs-tech/pose_tracker/internal/tlog"
	"github.com/relabs-tech/pose_tracker/internal/trackercore"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// accelFullScaleG and gyroFullScaleDegPerSec give the physical full
// range for each of the four MPU9250 range codes (0-3), needed to turn
// the raw int16 register readings back into g's and °/s before they
// can feed trackercore.IntegrateIMU.
var accelFullScaleG = [4]float64{2, 4, 8, 16}
var gyroFullScaleDegPerSec = [4]float64{250, 500, 1000, 2000}

const int16FullScale = 32768.0

// IMURawReader defines the interface for reading raw IMU data.
type IMURawReader interface {
	ReadRaw() (imu_raw.IMURaw, error)
}

type imuSource struct {
	name string // "left" or "right" for logging
	imu  *mpu9250.MPU9250
}

// NewIMUSourceLeft initializes the left MPU9250 over SPI.
func NewIMUSourceLeft() (IMURawReader, error) {
	cfg := config.Get()
	return newIMUSource("left", cfg.IMULeftSPIDevice, cfg.IMULeftCSPin)
}

// NewIMUSourceRight initializes the right MPU9250 over SPI.
func NewIMUSourceRight() (IMURawReader, error) {
	cfg := config.Get()
	return newIMUSource("right", cfg.IMURightSPIDevice, cfg.IMURightCSPin)
}

// newIMUSource is a unified initialization function for both left and right IMUs.
func newIMUSource(name, spiDev, csPin string) (IMURawReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	cfg := config.Get()
	if err := imu.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	tlog.Log.Info().Str("imu", name).Int("range", int(cfg.IMUAccelRange)).Msg("accelerometer range set")

	if err := imu.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, fmt.Errorf("%s IMU: set gyro range: %w", name, err)
	}
	tlog.Log.Info().Str("imu", name).Int("range", int(cfg.IMUGyroRange)).Msg("gyroscope range set")

	if err := imu.SetDLPFMode(cfg.IMUDLPFConfig); err != nil {
		return nil, fmt.Errorf("%s IMU: set DLPF config: %w", name, err)
	}
	if err := imu.SetSampleRateDivider(cfg.IMUSampleRateDiv); err != nil {
		return nil, fmt.Errorf("%s IMU: set sample rate divider: %w", name, err)
	}
	if err := imu.SetAccelDLPF(cfg.IMUAccelDLPF); err != nil {
		return nil, fmt.Errorf("%s IMU: set accel DLPF: %w", name, err)
	}

	if testResult, err := imu.SelfTest(); err != nil {
		tlog.Log.Warn().Str("imu", name).Err(err).Msg("self-test failed")
	} else {
		tlog.Log.Info().Str("imu", name).
			Float64("accel_dev_x", testResult.AccelDeviation.X).
			Float64("accel_dev_y", testResult.AccelDeviation.Y).
			Float64("accel_dev_z", testResult.AccelDeviation.Z).
			Msg("self-test passed")
	}

	if err := imu.Calibrate(); err != nil {
		tlog.Log.Warn().Str("imu", name).Err(err).Msg("calibration failed")
	}

	return &imuSource{name: name, imu: imu}, nil
}

// ReadRaw reads accelerometer and gyroscope register counts from this IMU.
func (s *imuSource) ReadRaw() (imu_raw.IMURaw, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU gyro X: %w", s.name, err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU gyro Y: %w", s.name, err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU gyro Z: %w", s.name, err)
	}

	return imu_raw.IMURaw{
		Source: s.name,
		Ax:     ax, Ay: ay, Az: az,
		Gx: gx, Gy: gy, Gz: gz,
	}, nil
}

// ToIMUSample converts a raw register-count reading into the physical
// units (g, rad/s) trackercore.IntegrateIMU expects, using the
// configured full-scale range codes. accelRange/gyroRange are the same
// 0-3 codes passed to SetAccelRange/SetGyroRange.
func ToIMUSample(raw imu_raw.IMURaw, timecode trackercore.Timecode, accelRange, gyroRange byte) trackercore.IMUSample {
	accelScale := accelFullScaleG[accelRange&3] / int16FullScale
	gyroScale := (gyroFullScaleDegPerSec[gyroRange&3] / int16FullScale) * (math.Pi / 180)

	return trackercore.IMUSample{
		Timecode: timecode,
		Accel: trackercore.Vec3{
			trackercore.FLT(float64(raw.Ax) * accelScale),
			trackercore.FLT(float64(raw.Ay) * accelScale),
			trackercore.FLT(float64(raw.Az) * accelScale),
		},
		Gyro: trackercore.Vec3{
			trackercore.FLT(float64(raw.Gx) * gyroScale),
			trackercore.FLT(float64(raw.Gy) * gyroScale),
			trackercore.FLT(float64(raw.Gz) * gyroScale),
		},
		Datamask: 1,
	}
}

//go:build !flt32

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import "math"

// FLT is the scalar floating-point type the tracker is built on. This
// build is the 64-bit variant; build with -tags flt32 to switch to the
// float32/math32 variant used on memory-constrained targets.
type FLT = float64

const FLTBits = 64

func fltSqrt(x FLT) FLT   { return math.Sqrt(x) }
func fltSin(x FLT) FLT    { return math.Sin(x) }
func fltCos(x FLT) FLT    { return math.Cos(x) }
func fltAcos(x FLT) FLT   { return math.Acos(x) }
func fltAbs(x FLT) FLT    { return math.Abs(x) }
func fltIsInf(x FLT) bool { return math.IsInf(x, 0) }

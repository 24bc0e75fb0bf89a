//go:build flt32

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trackercore

import "github.com/chewxy/math32"

// FLT is the scalar floating-point type the tracker is built on. This
// build is the 32-bit variant for memory-constrained targets; the
// default build (no flt32 tag) uses float64/math instead.
type FLT = float32

const FLTBits = 32

func fltSqrt(x FLT) FLT   { return math32.Sqrt(x) }
func fltSin(x FLT) FLT    { return math32.Sin(x) }
func fltCos(x FLT) FLT    { return math32.Cos(x) }
func fltAcos(x FLT) FLT   { return math32.Acos(x) }
func fltAbs(x FLT) FLT    { return math32.Abs(x) }
func fltIsInf(x FLT) bool { return math32.IsInf(x, 0) }

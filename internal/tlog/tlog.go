// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package tlog is the ambient logging surface for everything outside
// trackercore: a zerolog logger plus adapters satisfying
// trackercore.Logger and trackercore.FaultSink, so the core stays
// free of any concrete logging dependency.
package tlog

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Log is the package-wide console logger, console-formatted the way
// itohio-EasyRobot's logger package sets one up.
var Log = zlog.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// TrackerLogger adapts Log to trackercore.Logger for one tracked
// object, tagging every line with its codename.
type TrackerLogger struct {
	codename string
}

func NewTrackerLogger(codename string) TrackerLogger {
	return TrackerLogger{codename: codename}
}

func (t TrackerLogger) Warnf(format string, args ...any) {
	Log.Warn().Str("codename", t.codename).Msgf(format, args...)
}

func (t TrackerLogger) Debugf(format string, args ...any) {
	Log.Debug().Str("codename", t.codename).Msgf(format, args...)
}

// FaultSink panics the calling goroutine after logging at error
// level. The tracker core never unwinds on its own; this is the
// collaborator-supplied boundary the spec's error-handling design
// calls for.
type FaultSink struct {
	codename string
}

func NewFaultSink(codename string) FaultSink {
	return FaultSink{codename: codename}
}

func (f FaultSink) Fatal(err error) {
	Log.Error().Str("codename", f.codename).Err(err).Msg("tracker fault")
	panic(err)
}

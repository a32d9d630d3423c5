// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wlog provides the engine's logging helpers: thin wrappers
// over log/slog that log an error if non-nil and hand the value back,
// so call sites read as `return wlog.Log(doThing())` instead of an
// if-block.
package wlog

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
)

// SetLevel configures the default handler's minimum level. verbose
// and veryVerbose lower it to Debug; quiet raises it to Error.
func SetLevel(verbose, veryVerbose, quiet bool) {
	lvl := slog.LevelInfo
	switch {
	case veryVerbose:
		lvl = slog.LevelDebug
	case verbose:
		lvl = slog.LevelDebug
	case quiet:
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// CallerInfo returns "file:line" for the caller two frames up, used
// to tag logged errors.
func CallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Log logs err at error level (with caller info) if non-nil, and
// returns it unchanged.
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error(), "at", CallerInfo())
	}
	return err
}

// Log1 is Log for a (value, error) pair.
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error(), "at", CallerInfo())
	}
	return v
}

// Warn logs a render-path or session-scope failure at warn level
// without treating it as fatal.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

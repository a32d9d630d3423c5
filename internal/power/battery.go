// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package power implements the Control Plane's power policy:
// detecting on-battery state from /sys/class/power_supply and deciding
// whether sessions should be paused.
package power

import (
	"errors"
	"io/fs"
	"strings"
)

// OnBattery reports whether any power-supply device under sysPowerSupply
// (normally "/sys/class/power_supply" mounted as an fs.FS rooted there)
// is a battery that is currently discharging: any device with
// type=Battery and status=Discharging counts.
func OnBattery(dir fs.FS) (bool, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil // no power-supply subsystem at all: treat as AC
		}
		return false, err
	}
	for _, e := range entries {
		typ, err := readTrimmed(dir, e.Name()+"/type")
		if err != nil || typ != "Battery" {
			continue
		}
		status, err := readTrimmed(dir, e.Name()+"/status")
		if err != nil {
			continue
		}
		if status == "Discharging" {
			return true, nil
		}
	}
	return false, nil
}

func readTrimmed(dir fs.FS, name string) (string, error) {
	b, err := fs.ReadFile(dir, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

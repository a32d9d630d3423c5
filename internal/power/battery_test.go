// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnBattery_DischargingBatteryTrue(t *testing.T) {
	fsys := fstest.MapFS{
		"BAT0/type":   {Data: []byte("Battery\n")},
		"BAT0/status": {Data: []byte("Discharging\n")},
	}
	ok, err := OnBattery(fsys)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOnBattery_ChargingIsNotOnBattery(t *testing.T) {
	fsys := fstest.MapFS{
		"BAT0/type":   {Data: []byte("Battery\n")},
		"BAT0/status": {Data: []byte("Charging\n")},
		"AC/type":     {Data: []byte("Mains\n")},
	}
	ok, err := OnBattery(fsys)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOnBattery_NonBatteryDevicesIgnored(t *testing.T) {
	fsys := fstest.MapFS{
		"AC/type": {Data: []byte("Mains\n")},
	}
	ok, err := OnBattery(fsys)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOnBattery_NoSubsystemTreatedAsAC(t *testing.T) {
	ok, err := OnBattery(fstest.MapFS{})
	require.NoError(t, err)
	assert.False(t, ok)
}

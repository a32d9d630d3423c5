// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func TestBroadcaster_FansOutToAllSubscribers(t *testing.T) {
	src := make(chan wire.Event, 1)
	b := NewBroadcaster(src)

	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()

	src <- wire.Started{}

	for _, ch := range []<-chan wire.Event{ch1, ch2} {
		select {
		case ev := <-ch:
			_, ok := ev.(wire.Started)
			assert.True(t, ok)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive broadcast event")
		}
	}
}

func TestBroadcaster_UnsubscribeStopsDelivery(t *testing.T) {
	src := make(chan wire.Event, 1)
	b := NewBroadcaster(src)

	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	src <- wire.Stopped{}

	select {
	case ev := <-ch:
		t.Fatalf("unsubscribed channel should not receive events, got %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	src := make(chan wire.Event, 1)
	b := NewBroadcaster(src)

	_, slow := b.Subscribe() // never drained, buffer 8
	_, fast := b.Subscribe()

	for i := 0; i < 10; i++ {
		src <- wire.Started{}
	}

	require.Eventually(t, func() bool {
		select {
		case <-fast:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	_ = slow
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ipc implements the optional UNIX-domain NDJSON control socket
//. Requests and responses are JSON values,
// one per line; the socket is cleaned up on start and shutdown.
package ipc

import (
	"sync"
	"sync/atomic"

	"wayvid.dev/wayvid/internal/wire"
)

// Broadcaster fans the control plane's single-producer event channel out
// to any number of IPC connection handlers, each with its own buffered
// subscription, so that no one slow reader stalls another: a
// mutex-guarded map of per-subscriber channels, registered and
// unregistered by id, broadcast to under a read lock.
type Broadcaster struct {
	mu        sync.RWMutex
	subs      map[uint64]chan wire.Event
	nextID    atomic.Uint64
	done      chan struct{}
}

// NewBroadcaster starts pumping events from src to every current and
// future subscriber until src is closed.
func NewBroadcaster(src <-chan wire.Event) *Broadcaster {
	b := &Broadcaster{subs: make(map[uint64]chan wire.Event), done: make(chan struct{})}
	go b.run(src)
	return b
}

func (b *Broadcaster) run(src <-chan wire.Event) {
	defer close(b.done)
	for ev := range src {
		b.mu.RLock()
		for _, ch := range b.subs {
			select {
			case ch <- ev:
			default:
				// Drop for a slow subscriber rather than stall the engine's
				// single producer; events are snapshots, not state a
				// subscriber cannot recover from missing.
			}
		}
		b.mu.RUnlock()
	}
}

// Subscribe registers a new buffered channel and returns it with an id
// for a later Unsubscribe.
func (b *Broadcaster) Subscribe() (uint64, <-chan wire.Event) {
	id := b.nextID.Add(1)
	ch := make(chan wire.Event, 8)
	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

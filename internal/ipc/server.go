// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
	"wayvid.dev/wayvid/internal/workshop"
)

// awaitReplyTimeout bounds how long a request that needs a round trip
// through the engine's event channel will wait before giving up; the
// IPC boundary is external and a client can simply go away.
const awaitReplyTimeout = 2 * time.Second

// DefaultSocketPath returns ${XDG_RUNTIME_DIR}/wayvid.sock, or a
// same-named path under os.TempDir when XDG_RUNTIME_DIR is unset.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "wayvid.sock")
	}
	return filepath.Join(os.TempDir(), "wayvid.sock")
}

// Server is the UNIX-domain NDJSON control socket.
type Server struct {
	listener    net.Listener
	path        string
	commands    chan<- wire.Command
	broadcaster *Broadcaster
	cache       *workshop.Cache
}

// Listen binds path, removing any stale socket file left by a
// previous run. cache may be nil, in which case
// GetLibrary always answers with zero items. The Status response's
// version field is supplied by the engine's own StatusSnapshot, not by
// the server, so Listen takes no version parameter.
func Listen(path string, commands chan<- wire.Command, events <-chan wire.Event, cache *workshop.Cache) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath()
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		wlog.Warn("ipc: failed to remove stale socket", "path", path, "err", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ipc: creating socket directory: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listening on %s: %w", path, err)
	}
	return &Server{
		listener:    ln,
		path:        path,
		commands:    commands,
		broadcaster: NewBroadcaster(events),
		cache:       cache,
	}, nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && !ne.Timeout() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
		wlog.Warn("ipc: failed to remove socket on shutdown", "path", s.path, "err", rmErr)
	}
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	connID := uuid.NewString()
	defer conn.Close()

	subID, events := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(subID)

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		req, err := parseRequest(line)
		if err != nil {
			s.write(enc, connID, errResp(err))
			continue
		}
		resp, quit := s.dispatch(req, events)
		s.write(enc, connID, resp)
		if quit {
			return
		}
	}
}

func (s *Server) write(enc *json.Encoder, connID string, resp Response) {
	if err := enc.Encode(resp); err != nil {
		wlog.Warn("ipc: writing response failed", "conn", connID, "err", err)
	}
}

// dispatch handles one request, returning the response and whether the
// connection should close afterward (Quit).
func (s *Server) dispatch(req Request, events <-chan wire.Event) (Response, bool) {
	switch req.Type {
	case ReqApply:
		if req.Path == "" {
			return errResp(fmt.Errorf("ipc: Apply requires \"path\"")), false
		}
		return s.sendAndAwait(wire.ApplyWallpaper{Path: req.Path, Output: req.Output}, events,
			func(ev wire.Event) bool { _, ok := ev.(wire.WallpaperApplied); return ok },
			"wallpaper applied"), false
	case ReqStop:
		return s.sendAndAwait(wire.ClearWallpaper{Output: req.Output}, events,
			func(ev wire.Event) bool { _, ok := ev.(wire.WallpaperCleared); return ok },
			"wallpaper cleared"), false
	case ReqPause:
		s.send(wire.Pause{Output: req.Output})
		return ok("paused"), false
	case ReqResume:
		s.send(wire.Resume{Output: req.Output})
		return ok("resumed"), false
	case ReqSetVolume:
		s.send(wire.SetVolume{Output: req.Output, Volume: req.Volume})
		return ok("volume set"), false
	case ReqStatus:
		return s.awaitStatus(events), false
	case ReqOutputs:
		return s.awaitOutputs(events), false
	case ReqPing:
		return pong(), false
	case ReqQuit:
		s.send(wire.Shutdown{})
		return ok("shutting down"), true
	case ReqShowWindow:
		return errResp(fmt.Errorf("ipc: ShowWindow is not supported (no GUI shell in this build)")), false
	case ReqReload:
		return ok("config is watched automatically; no explicit reload needed"), false
	case ReqGetLibrary:
		return s.libraryResponse(), false
	default:
		return errResp(fmt.Errorf("ipc: unknown request type %q", req.Type)), false
	}
}

func (s *Server) send(cmd wire.Command) {
	select {
	case s.commands <- cmd:
	default:
		wlog.Warn("ipc: command channel full, dropping request", "type", fmt.Sprintf("%T", cmd))
	}
}

// sendAndAwait enqueues cmd, then waits up to awaitReplyTimeout for
// either a matching success event or an Error event, ignoring anything
// else flowing through the shared broadcast; a command and the event
// it generates are causally related.
func (s *Server) sendAndAwait(cmd wire.Command, events <-chan wire.Event, isMatch func(wire.Event) bool, okMessage string) Response {
	s.send(cmd)
	deadline := time.After(awaitReplyTimeout)
	for {
		select {
		case ev := <-events:
			if errEv, isErr := ev.(wire.Error); isErr {
				return errResp(fmt.Errorf("%s", errEv.Message))
			}
			if isMatch(ev) {
				return ok(okMessage)
			}
		case <-deadline:
			return ok(okMessage) // best-effort: no error surfaced in time
		}
	}
}

func (s *Server) awaitStatus(events <-chan wire.Event) Response {
	s.send(wire.GetStatus{})
	deadline := time.After(awaitReplyTimeout)
	for {
		select {
		case ev := <-events:
			if st, isStatus := ev.(wire.Status); isStatus {
				return statusResponse(st.Snapshot)
			}
		case <-deadline:
			return errResp(fmt.Errorf("ipc: timed out waiting for status"))
		}
	}
}

func (s *Server) awaitOutputs(events <-chan wire.Event) Response {
	s.send(wire.GetOutputs{})
	deadline := time.After(awaitReplyTimeout)
	for {
		select {
		case ev := <-events:
			if list, isList := ev.(wire.OutputsList); isList {
				return outputsResponse(list.Outputs)
			}
		case <-deadline:
			return errResp(fmt.Errorf("ipc: timed out waiting for outputs"))
		}
	}
}

func (s *Server) libraryResponse() Response {
	if s.cache == nil {
		return libraryResponse(nil)
	}
	cached, err := s.cache.List()
	if err != nil {
		return errResp(err)
	}
	items := make([]LibraryItem, len(cached))
	for i, c := range cached {
		items[i] = LibraryItem{ID: c.ID, Title: c.Title, Dir: c.Dir}
	}
	return libraryResponse(items)
}

// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayvid.dev/wayvid/internal/wire"
)

func startTestServer(t *testing.T) (string, chan wire.Command, chan wire.Event) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "wayvid.sock")
	commands := make(chan wire.Command, 8)
	events := make(chan wire.Event, 8)

	srv, err := Listen(sock, commands, events, nil)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return sock, commands, events
}

func TestServer_PingPong(t *testing.T) {
	sock, _, _ := startTestServer(t)
	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, json.NewEncoder(conn).Encode(Request{Type: ReqPing}))

	var resp Response
	reader := bufio.NewScanner(conn)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.True(t, reader.Scan())
	require.NoError(t, json.Unmarshal(reader.Bytes(), &resp))
	assert.Equal(t, RespPong, resp.Type)
}

func TestServer_ApplyWaitsForWallpaperApplied(t *testing.T) {
	sock, commands, events := startTestServer(t)
	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		cmd := <-commands
		apply, ok := cmd.(wire.ApplyWallpaper)
		assert.True(t, ok)
		events <- wire.WallpaperApplied{Output: apply.Output, Path: apply.Path}
		close(done)
	}()

	require.NoError(t, json.NewEncoder(conn).Encode(Request{Type: ReqApply, Path: "/tmp/a.mp4"}))

	var resp Response
	reader := bufio.NewScanner(conn)
	conn.SetReadDeadline(time.Now().Add(awaitReplyTimeout + time.Second))
	require.True(t, reader.Scan())
	require.NoError(t, json.Unmarshal(reader.Bytes(), &resp))
	assert.Equal(t, RespOk, resp.Type)

	<-done
}

func TestServer_UnknownRequestTypeErrors(t *testing.T) {
	sock, _, _ := startTestServer(t)
	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, json.NewEncoder(conn).Encode(Request{Type: "Bogus"}))

	var resp Response
	reader := bufio.NewScanner(conn)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.True(t, reader.Scan())
	require.NoError(t, json.Unmarshal(reader.Bytes(), &resp))
	assert.Equal(t, RespError, resp.Type)
}

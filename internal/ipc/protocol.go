// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ipc

import (
	"encoding/json"
	"fmt"

	"wayvid.dev/wayvid/internal/wire"
)

// Request is one line of client input, discriminated by Type the same
// way internal/config's SourceDoc discriminates a VideoSource over YAML
// — JSON has no sum types of its own.
type Request struct {
	Type   string  `json:"type"`
	Path   string  `json:"path,omitempty"`
	Output string  `json:"output,omitempty"`
	Volume float64 `json:"volume,omitempty"`
	Query  string  `json:"query,omitempty"`
}

const (
	ReqApply      = "Apply"
	ReqStop       = "Stop"
	ReqPause      = "Pause"
	ReqResume     = "Resume"
	ReqSetVolume  = "SetVolume"
	ReqStatus     = "Status"
	ReqOutputs    = "Outputs"
	ReqPing       = "Ping"
	ReqQuit       = "Quit"
	ReqShowWindow = "ShowWindow"
	ReqReload     = "Reload"
	ReqGetLibrary = "GetLibrary"
)

// Response is one line of server output.
type Response struct {
	Type     string         `json:"type"`
	Message  string         `json:"message,omitempty"`
	Running  bool           `json:"running,omitempty"`
	Version  string         `json:"version,omitempty"`
	Outputs  []OutputDoc    `json:"outputs,omitempty"`
	Items    []LibraryItem  `json:"items,omitempty"`
	Total    int            `json:"total,omitempty"`
}

const (
	RespOk      = "Ok"
	RespError   = "Error"
	RespStatus  = "Status"
	RespOutputs = "Outputs"
	RespLibrary = "Library"
	RespPong    = "Pong"
)

// OutputDoc is the wire.OutputInfo JSON projection sent to IPC clients.
type OutputDoc struct {
	Name   string  `json:"name"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Active bool    `json:"active"`
}

func toOutputDoc(o wire.OutputInfo) OutputDoc {
	return OutputDoc{Name: o.Name, Width: o.Width, Height: o.Height, Scale: o.Scale, X: o.X, Y: o.Y, Active: o.Active}
}

// LibraryItem is one cached Workshop item, answering GetLibrary.
type LibraryItem struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Dir   string `json:"dir"`
}

func ok(message string) Response    { return Response{Type: RespOk, Message: message} }
func errResp(err error) Response    { return Response{Type: RespError, Message: err.Error()} }
func pong() Response                { return Response{Type: RespPong} }

func statusResponse(s wire.StatusSnapshot) Response {
	outs := make([]OutputDoc, len(s.Outputs))
	for i, o := range s.Outputs {
		outs[i] = toOutputDoc(o)
	}
	return Response{Type: RespStatus, Running: s.Running, Version: s.Version, Outputs: outs}
}

func outputsResponse(outs []wire.OutputInfo) Response {
	docs := make([]OutputDoc, len(outs))
	for i, o := range outs {
		docs[i] = toOutputDoc(o)
	}
	return Response{Type: RespOutputs, Outputs: docs}
}

func libraryResponse(items []LibraryItem) Response {
	return Response{Type: RespLibrary, Items: items, Total: len(items)}
}

func parseRequest(line []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(line, &r); err != nil {
		return Request{}, fmt.Errorf("ipc: malformed request: %w", err)
	}
	if r.Type == "" {
		return Request{}, fmt.Errorf("ipc: request missing \"type\"")
	}
	return r, nil
}

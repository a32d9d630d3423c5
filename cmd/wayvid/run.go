// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wayvid.dev/wayvid/internal/config"
	"wayvid.dev/wayvid/internal/control"
	"wayvid.dev/wayvid/internal/ipc"
	"wayvid.dev/wayvid/internal/session"
	"wayvid.dev/wayvid/internal/waybackend"
	"wayvid.dev/wayvid/internal/wire"
	"wayvid.dev/wayvid/internal/wlog"
	"wayvid.dev/wayvid/internal/workshop"
)

var (
	runConfigPath string
	runSocketPath string
	runVerbose    bool
	runNoIPC      bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to config.yaml (default: $XDG_CONFIG_HOME/wayvid/config.yaml)")
	runCmd.Flags().StringVar(&runSocketPath, "socket", "", "path to the IPC control socket (default: $XDG_RUNTIME_DIR/wayvid.sock)")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "enable verbose logging")
	runCmd.Flags().BoolVar(&runNoIPC, "no-ipc", false, "disable the IPC control socket")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wallpaper engine",
	Long:  `Connect to the compositor, apply each output's configured wallpaper, and serve the control plane until Shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEngine()
	},
}

func runEngine() error {
	wlog.SetLevel(runVerbose, false, false)

	path := runConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("wayvid: %w", err)
		}
		path = p
	}
	base, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("wayvid: loading config: %w", err)
	}
	resolver := config.NewResolver(base)

	var eng *control.Engine
	wb, err := waybackend.Connect(func(ev waybackend.Event) {
		if eng != nil {
			eng.OnWaybackendEvent(ev)
		}
	})
	if err != nil {
		return fmt.Errorf("wayvid: connecting to compositor: %w", err)
	}

	sessions := session.NewManager(wb, resolver, "wayvid", runVerbose)
	eng = control.NewEngine(wb, sessions, control.Config{
		PowerPolicy: base.Power,
		PowerFS:     os.DirFS("/sys/class/power_supply"),
		FPSLimit:    base.FPSLimit,
		Version:     version,
	})

	watcher, err := config.Watch(path)
	if err != nil {
		wlog.Warn("wayvid: config hot-reload disabled", "err", err)
	} else {
		defer watcher.Close()
		go func() {
			for bc := range watcher.Changes {
				eng.Commands() <- wire.ReloadConfig{Base: bc}
			}
		}()
	}

	if !runNoIPC {
		cacheDir, err := workshop.DefaultCacheDir()
		var cache *workshop.Cache
		if err == nil {
			cache, _ = workshop.OpenCache(cacheDir)
		}
		srv, err := ipc.Listen(runSocketPath, eng.Commands(), eng.Events(), cache)
		if err != nil {
			wlog.Warn("wayvid: IPC socket disabled", "err", err)
		} else {
			defer srv.Close()
			go func() {
				if err := srv.Serve(); err != nil {
					wlog.Warn("wayvid: IPC server stopped", "err", err)
				}
			}()
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		eng.Commands() <- wire.Shutdown{}
	}()

	eng.Run()
	return nil
}

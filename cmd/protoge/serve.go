package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/platform/tui"
)

var (
	flagServeAddr    string
	flagServeHostKey string
	flagServeFPS     int
	flagServeIdle    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start SSH server for remote play",
	Long: `Start an SSH server so players can connect and play remotely:

  ssh -p 23234 localhost

Each session gets its own simulation. Sessions share the content cache
but not world state.

Examples:
  protoge serve
  protoge serve --ssh :2222
  protoge serve --host-key ./host_key --fps 20`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "ssh", ":23234", "SSH listen address")
	serveCmd.Flags().StringVar(&flagServeHostKey, "host-key", "", "Host key path (default: ~/.protoge/host_key)")
	serveCmd.Flags().IntVar(&flagServeFPS, "fps", 30, "Render frame rate per session")
	serveCmd.Flags().DurationVar(&flagServeIdle, "idle-timeout", 30*time.Minute, "Idle session timeout")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagServeAddr
	cfg.HostKeyPath = flagServeHostKey
	cfg.ConfigPath = flagConfig
	cfg.FramesPerSecond = flagServeFPS
	cfg.IdleTimeout = flagServeIdle

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/app"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/platform/tui"
)

var flagPlayFPS int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play interactively in the terminal",
	Long: `Start the engine with the terminal front end.

Controls:
  W/A/S/D      - Move the player pawn
  Arrow keys   - Pan the camera
  Mouse left   - Select an actor
  Mouse right  - Order move / interact
  +/- or wheel - Zoom
  F5 / F9      - Save / load the active scene
  F2           - Switch scene
  Tab          - Open the developer console
  Q/Ctrl+C     - Quit

Examples:
  protoge play
  protoge play --fps 60
  protoge play --root ./my-game`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayFPS, "fps", 30, "Render frame rate")
}

func runPlay(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: play needs a terminal; use 'protoge run' for headless runs")
		os.Exit(1)
	}

	runtime, err := app.Bootstrap(app.BootstrapOptions{
		ConfigPath:     flagConfig,
		ContentRoot:    flagRoot,
		TicksPerSecond: flagTPS,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer runtime.Close()

	if err := tui.Run(runtime, flagPlayFPS); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	runtime.RecordRun("quit")
}

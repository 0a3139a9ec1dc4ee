// protoge is a deterministic prototype game engine for a 2D world of
// actors, resource piles and hostile mobs.
//
// Usage:
//
//	protoge play              - Play in the terminal
//	protoge run               - Run the simulation headless
//	protoge compile           - Compile content into cached packs
//	protoge plan              - Show the content compile plan
//	protoge serve             - Start SSH server for remote play
//	protoge stats             - Show recorded run statistics
//
// Global flags:
//
//	--config <path>  - Explicit engine.yaml (default: search order)
//	--root <path>    - Content root override (default: from config)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagRoot   string
	flagTPS    int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "protoge",
	Short: "Prototype game engine - deterministic 2D world in your terminal",
	Long: `protoge runs a small deterministic game world: a player pawn, resource
piles to gather, and hostile mobs with a chase-and-attack AI. Content is
compiled from YAML defs into cached binary packs, the simulation steps on a
fixed 60 Hz clock, and a TCP developer console can drive it remotely.

Available commands:
  play     - Play interactively in the terminal
  run      - Run the simulation headless for a fixed tick count
  compile  - Compile content defs into cached packs
  plan     - Show what the content pipeline would compile and why
  serve    - Start SSH server for remote play
  stats    - View recorded run statistics

Examples:
  protoge play
  protoge run --ticks 3600 --scenario combat_chaser
  protoge compile --force
  protoge plan
  protoge serve --ssh :2222
  protoge stats --limit 5`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Content root directory (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagTPS, "tps", 0, "Simulation tick rate (0 = from config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

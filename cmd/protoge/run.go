package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/app"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

var (
	flagRunTicks    int
	flagRunScenario string
	flagRunQuiet    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless",
	Long: `Step the simulation for a fixed number of ticks without a display,
then print the final world digest. The TCP developer console stays
available, so an external tool can drive and inspect the run.

Two headless runs with the same content and the same console traffic
produce the same digest.

Examples:
  protoge run --ticks 3600
  protoge run --scenario combat_chaser --ticks 700
  protoge run --ticks 600 --quiet`,
	Run: runHeadless,
}

func init() {
	runCmd.Flags().IntVar(&flagRunTicks, "ticks", 3600, "Number of fixed ticks to simulate")
	runCmd.Flags().StringVar(&flagRunScenario, "scenario", "", "Scenario to set up before ticking")
	runCmd.Flags().BoolVar(&flagRunQuiet, "quiet", false, "Suppress the state dump, print only the digest")
}

func runHeadless(cmd *cobra.Command, args []string) {
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

	if flagRunScenario != "" {
		replies, _ := runtime.Console.Execute("scenario.setup " + flagRunScenario)
		for _, line := range replies {
			fmt.Println(line)
		}
	}

	// Feed exactly one tick of time per frame so the run is not paced by
	// the wall clock.
	tickDelta := time.Second / time.Duration(runtime.Config.Loop.TicksPerSecond)
	snapshot := core.InputSnapshot{WindowWidth: 1280, WindowHeight: 720}
	for tick := 0; tick < flagRunTicks; {
		result := runtime.Loop.Advance(tickDelta, snapshot)
		tick += result.TicksRun
		if result.Quit {
			break
		}
	}

	if !flagRunQuiet {
		replies, _ := runtime.Console.Execute("dump.state")
		for _, line := range replies {
			fmt.Println(line)
		}
	}
	replies, _ := runtime.Console.Execute("digest")
	for _, line := range replies {
		fmt.Println(line)
	}
	runtime.RecordRun("run")
}

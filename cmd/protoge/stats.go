package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/config"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/storage"
)

var (
	flagStatsLimit int
	flagStatsScene string
	flagStatsClear bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View recorded run statistics",
	Long: `Show run records from the statistics database: recent runs, or the
aggregate for one scene.

Examples:
  protoge stats
  protoge stats --limit 5
  protoge stats --scene a
  protoge stats --scene a --clear`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 10, "Number of recent runs to show")
	statsCmd.Flags().StringVar(&flagStatsScene, "scene", "", "Aggregate runs for one scene key")
	statsCmd.Flags().BoolVar(&flagStatsClear, "clear", false, "Clear runs for the given scene")
}

func runStats(cmd *cobra.Command, args []string) {
	store, err := openStatsStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagStatsClear {
		if flagStatsScene == "" {
			fmt.Fprintln(os.Stderr, "Error: --clear requires --scene")
			os.Exit(1)
		}
		if err := store.ClearRuns(flagStatsScene); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("cleared runs for scene %s\n", flagStatsScene)
		return
	}

	if flagStatsScene != "" {
		stats, err := store.SceneStats(flagStatsScene)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("scene %s: %d run(s), %d tick(s) total, %d resource(s) gathered, longest run %d tick(s)\n",
			stats.SceneKey, stats.Runs, stats.TotalTicks, stats.TotalResource, stats.LongestTicks)
		return
	}

	runs, err := store.RecentRuns(flagStatsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Play or run the simulation first!")
		return
	}

	fmt.Printf("%-5s %-6s %-8s %-10s %-10s %-9s %-8s %s\n",
		"ID", "SCENE", "TICKS", "DURATION", "RESOURCES", "CONTENT", "END", "DIGEST")
	for _, run := range runs {
		fmt.Printf("%-5d %-6s %-8d %-10s %-10d %-9s %-8s %s\n",
			run.ID, run.SceneKey, run.Ticks,
			fmt.Sprintf("%.1fs", run.DurationSecs),
			run.ResourceCount, run.ContentStatus, run.EndReason, run.FinalDigestHex)
	}
}

func openStatsStore() (*storage.Store, error) {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		return nil, err
	}
	dbPath := cfg.Stats.DBPath
	if dbPath == "" {
		root := cfg.Content.Root
		if flagRoot != "" {
			root = flagRoot
		}
		paths, pathErr := content.ResolveAppPaths(root)
		if pathErr != nil {
			return nil, pathErr
		}
		dbPath = filepath.Join(paths.CacheDir, "run_stats.db")
	}
	return storage.Open(dbPath)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/app"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/config"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
)

var flagCompileForce bool

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile content defs into cached packs",
	Long: `Compile the base content and every enabled mod into binary packs under
the cache directory. Unchanged mods are loaded from cache; --force drops
the cached manifests first so everything recompiles.

Mods are enabled through the ENABLED_MODS environment variable, a comma
separated ordered list of mod ids under mods/.

Examples:
  protoge compile
  protoge compile --force
  ENABLED_MODS=balance,extras protoge compile`,
	Run: runCompile,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what the content pipeline would compile and why",
	Long: `Print the compile plan without writing anything: one line per mod with
the planned action (compile or load from cache) and the reason.

Examples:
  protoge plan
  ENABLED_MODS=balance protoge plan`,
	Run: runPlan,
}

func init() {
	compileCmd.Flags().BoolVar(&flagCompileForce, "force", false, "Recompile even when caches are valid")
}

func contentPlanRequest() (content.AppPaths, content.PlanRequest, error) {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		return content.AppPaths{}, content.PlanRequest{}, err
	}
	root := cfg.Content.Root
	if flagRoot != "" {
		root = flagRoot
	}
	paths, err := content.ResolveAppPaths(root)
	if err != nil {
		return content.AppPaths{}, content.PlanRequest{}, err
	}
	request := content.PlanRequest{
		EnabledMods:     content.ParseEnabledModsEnv(),
		CompilerVersion: app.CompilerVersion,
		GameVersion:     app.GameVersion,
	}
	return paths, request, nil
}

func runCompile(cmd *cobra.Command, args []string) {
	paths, request, err := contentPlanRequest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagCompileForce {
		plan, planErr := content.BuildPlan(paths, request)
		if planErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", planErr)
			os.Exit(1)
		}
		for _, decision := range plan.Decisions {
			// A missing manifest forces the pipeline to recompile.
			//nolint:errcheck // absent manifests are exactly the goal
			os.Remove(decision.ManifestPath)
		}
	}

	plan, err := content.BuildPlan(paths, request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(plan.RenderHumanReadable())

	defs, err := content.BuildOrLoadDefDatabase(paths, request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("content ready: %d def(s)\n", len(defs.Defs()))
}

func runPlan(cmd *cobra.Command, args []string) {
	paths, request, err := contentPlanRequest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	plan, err := content.BuildPlan(paths, request)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(plan.RenderHumanReadable())
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eco-lang/eco/bundler"
	"github.com/spf13/cobra"
)

var (
	bundleConfig      string
	bundleOut         string
	bundleStub        bool
	bundleListModules bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <entry.eco>",
	Short: "Bundle an eco module graph into a single CommonJS-style script",
	Long: `Walk an eco module's import graph and emit a single script whose
modules are wrapped in a require()/module.exports skeleton, per spec.md §4.5.

Examples:
  eco bundle src/main.eco
  eco bundle --config eco.yaml src/main.eco
  eco bundle --list-modules src/main.eco`,
	Args: cobra.ExactArgs(1),
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)

	bundleCmd.Flags().StringVar(&bundleConfig, "config", "", "eco.yaml bundler config (roots/aliases)")
	bundleCmd.Flags().StringVar(&bundleOut, "out", "", "write the emitted script here instead of stdout")
	bundleCmd.Flags().BoolVar(&bundleStub, "stub", false, "use an in-memory stub resolver seeded from the entry file's directory (tests only)")
	bundleCmd.Flags().BoolVar(&bundleListModules, "list-modules", false, "print the bundled module names (natural-sorted) instead of the script")
}

func runBundle(_ *cobra.Command, args []string) error {
	entryPath := args[0]
	entryDir := filepath.Dir(entryPath)
	entryName := filepath.Base(entryPath)

	resolver, err := buildResolver(entryDir)
	if err != nil {
		return err
	}

	b := bundler.New(resolver)
	out, err := b.Bundle(entryDir, entryName)
	if err != nil {
		return err
	}

	if bundleListModules {
		for _, name := range b.ListModules() {
			fmt.Println(name)
		}
		return nil
	}

	if bundleOut != "" {
		return os.WriteFile(bundleOut, []byte(out), 0o644)
	}
	fmt.Println(out)
	return nil
}

func buildResolver(entryDir string) (bundler.Resolver, error) {
	if bundleStub {
		return loadStubResolver(entryDir)
	}
	var cfg *bundler.Config
	if bundleConfig != "" {
		loaded, err := bundler.LoadConfig(bundleConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return bundler.NewFileResolver(cfg), nil
}

// loadStubResolver reads every *.eco file directly under entryDir into an
// in-memory StubResolver, keyed by file name — a convenience for
// `eco bundle --stub` when exercising the bundler without touching the
// filesystem resolver's root/alias logic.
func loadStubResolver(entryDir string) (*bundler.StubResolver, error) {
	entries, err := os.ReadDir(entryDir)
	if err != nil {
		return nil, fmt.Errorf("bundle --stub: reading %s: %w", entryDir, err)
	}
	sources := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".eco" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(entryDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sources[entry.Name()] = string(data)
	}
	return &bundler.StubResolver{Sources: sources}, nil
}

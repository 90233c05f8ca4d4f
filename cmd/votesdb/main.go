package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jdiegots/congreso-2025/internal/config"
	"github.com/jdiegots/congreso-2025/internal/dataset"
	"github.com/jdiegots/congreso-2025/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		fs := flag.NewFlagSet("build", flag.ExitOnError)
		rosterPath := fs.String("roster", cfg.RosterPath, "deputies JSON file")
		catalogPath := fs.String("catalog", cfg.CatalogPath, "initiatives JSON file")
		zipsDir := fs.String("zips", cfg.ZipsDir, "directory with ballot zip archives")
		outDir := fs.String("out", cfg.OutputDir, "output directory")
		aliasPath := fs.String("aliases", cfg.AliasConfigPath, "field-alias YAML override")
		_ = fs.Parse(os.Args[2:])

		cfg.RosterPath = *rosterPath
		cfg.CatalogPath = *catalogPath
		cfg.ZipsDir = *zipsDir
		cfg.OutputDir = *outDir
		cfg.AliasConfigPath = *aliasPath

		runBuild(cfg)
	default:
		usage()
		os.Exit(1)
	}
}

func runBuild(cfg config.Config) {
	aliases, err := dataset.LoadAliases(cfg.AliasConfigPath)
	must(err)

	deputies, err := dataset.LoadRoster(cfg.RosterPath, aliases.Roster)
	mustInput(err)
	initiatives, err := dataset.LoadCatalog(cfg.CatalogPath, aliases.Catalog)
	mustInput(err)

	svc := pipeline.NewBuildService(cfg, deputies, initiatives)
	res, err := svc.Run()
	must(err)

	blob, err := json.MarshalIndent(res.Summary, "", "  ")
	must(err)
	fmt.Println("OK")
	fmt.Println(string(blob))
}

func usage() {
	fmt.Println("usage: votesdb <command>")
	fmt.Println("commands:")
	fmt.Println("  build [--roster=...json] [--catalog=...json] [--zips=dir] [--out=dir] [--aliases=...yaml]")
}

// mustInput exits with status 2 on malformed roster/catalog inputs so callers
// can distinguish bad top-level inputs from other failures.
func mustInput(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, dataset.ErrNotCollection) {
		os.Exit(2)
	}
	os.Exit(1)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

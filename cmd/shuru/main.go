// Copyright 2025 The Shuru Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Shuru is the retrieval core of an input method engine: it compiles raw
tab-separated dictionaries into compact, prefix-searchable artifacts and
serves ranked candidates over them fast enough for interactive typing.

# Usage

Compile every formula declared in a config file:

	shuru compile -config main.toml -source ./dicts -target ./build

Compile a single formula, or use the relational representation:

	shuru compile -config main.toml -source ./dicts -target ./build -formula sunman
	shuru compile -config main.toml -source ./dicts -target ./build -relational

Run the flat perfect-hash build over plain dictionary files:

	shuru build -i base.dict -i ext.dict -o ./build

Search interactively against compiled artifacts:

	shuru repl -config main.toml -target ./build

Inside the repl, `*use <formula>` switches the active formula and `*quit`
exits. Search errors are printed and the loop continues.

# Dictionary format

Tab-separated columns text, code, weight, comment; the comment column is
optional and lines starting with # are skipped:

	你好	ni hao	5320	greeting
	泥	ni	800
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/shuru-ime/shuru/internal/cli"
	"github.com/shuru-ime/shuru/internal/logger"
	"github.com/shuru-ime/shuru/internal/utils"
	"github.com/shuru-ime/shuru/pkg/config"
	"github.com/shuru-ime/shuru/pkg/dict"
	"github.com/shuru-ime/shuru/pkg/engine"
)

const (
	Version = "0.3.0"
	AppName = "shuru"
)

// stringList collects repeated -i flags in order.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main dispatches subcommands; the actual logic lives in the packages.
func main() {
	sigHandler()
	log.SetLevel(log.WarnLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "compile":
		runCompile(os.Args[2:])
	case "repl":
		runRepl(os.Args[2:])
	case "-version", "--version", "version":
		showVersion()
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <command> [flags]

commands:
  build     flat perfect-hash build from dictionary files
  compile   compile the formulas of a config into per-formula artifacts
  repl      interactive search over compiled artifacts
  version   print version
`, AppName)
}

// runBuild runs the flat perfect-hash build.
func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var inputs stringList
	fs.Var(&inputs, "i", "Input dictionary file (repeatable)")
	outputDir := fs.String("o", ".", "Output directory for index.bin and def.bin")
	debugMode := fs.Bool("d", false, "Toggle debug mode")
	fs.Parse(args)

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}
	if len(inputs) == 0 {
		log.Fatal("no input files; pass at least one -i")
	}
	if err := utils.EnsureDir(*outputDir); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	if err := dict.Build(inputs, *outputDir); err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	log.Infof("Built %s and %s in %s", dict.IndexFile, dict.DefFile, *outputDir)
}

// runCompile compiles formulas from a config file.
func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	configPath := fs.String("config", "main.toml", "Formula config file")
	sourceDir := fs.String("source", ".", "Directory holding per-formula dictionary sources")
	targetDir := fs.String("target", ".", "Directory receiving compiled artifacts")
	formulaID := fs.String("formula", "", "Compile only this formula id")
	relational := fs.Bool("relational", false, "Build the relational table instead of trie/KV")
	debugMode := fs.Bool("d", false, "Toggle debug mode")
	fs.Parse(args)

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	log.Debugf("Using config file: %s", utils.GetAbsolutePath(*configPath))
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := utils.EnsureDir(*targetDir); err != nil {
		log.Fatalf("Failed to create target dir: %v", err)
	}

	formulas := cfg.Formulas
	if *formulaID != "" {
		formula := cfg.Formula(*formulaID)
		if formula == nil {
			log.Fatalf("Formula %q not found in %s", *formulaID, *configPath)
		}
		formulas = []config.Formula{*formula}
	}

	for i := range formulas {
		formula := &formulas[i]
		var err error
		if *relational {
			err = dict.Compile(formula, *sourceDir, *targetDir)
		} else {
			err = dict.CompileTrie(formula, *sourceDir, *targetDir)
		}
		if err != nil {
			log.Fatalf("Failed to compile formula %s: %v", formula.ID, err)
		}
		log.Infof("Compiled formula %s", formula.ID)
	}
}

// runRepl loads compiled artifacts and starts the interactive loop.
func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "main.toml", "Formula config file")
	targetDir := fs.String("target", ".", "Directory holding compiled artifacts")
	limit := fs.Int("limit", 0, "Number of candidates to show (0 = config default)")
	debugMode := fs.Bool("d", false, "Toggle debug mode")
	fs.Parse(args)

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportTimestamp(false)

	log.Debugf("Using config file: %s", utils.GetAbsolutePath(*configPath))
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Formulas) == 0 {
		log.Fatalf("No formulas declared in %s", *configPath)
	}

	eng, err := engine.New(cfg.Formulas, *targetDir)
	if err != nil {
		log.Fatalf("Failed to load engine: %v", err)
	}
	defer eng.Close()

	resultLimit := cfg.Engine.ResultLimit
	if *limit > 0 {
		resultLimit = *limit
	}

	repl := cli.NewRepl(eng, resultLimit)
	if err := repl.Start(); err != nil {
		log.Fatalf("Repl error: %v", err)
	}
}

// showVersion prints a short styled banner, like the rest of the charm
// tooling does.
func showVersion() {
	bannerLog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	bannerLog.SetStyles(styles)

	bannerLog.Print("[ shuru ] IME dictionary compiler and retrieval core")
	bannerLog.Print("", "version", Version)
	bannerLog.Print("use -h or --help to see available commands")
}

// Copyright 2025 The brailleserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the braille chord engine as an IPC server or as an
interactive CLI.

Chords of up to six keys are read as braille cells, matched against a dot
pattern table and typed as letters. Noisy chords are matched by edit
distance. The word being typed is completed from the active dictionary by
prefix first and by whole-word edit distance second.

# Usage

Start the msgpack server on stdin/stdout:

	brailleserve

Try dot streams and words line by line:

	brailleserve -c

Type real chords on the home row (a s d for dots 1 2 3, j k l for 4 5 6):

	brailleserve -raw

Use another table or word list:

	brailleserve -table ./data/letters.yaml -words ./data/words.txt

# Configuration

Settings live in config.toml in the user config dir and are created with
defaults on first run:

	[engine]
	max_suggestions = 5
	accept_distance = 2

	[keys]
	layout = "asdjkl"
	chord_timeout_ms = 300

	[dict]
	custom_path = "custom_words.txt"
	active = "default"

A .env file in the working dir may set BRAILLE_CONFIG, BRAILLE_DATA_DIR and
BRAILLE_DEBUG.

# Command Line Flags

	-version  Show current version
	-d        Enable debug logging
	-c        Run the line CLI
	-raw      Run the raw chord CLI
	-config   Path to a config file
	-data     Directory for custom word lists
	-table    Dot pattern table (.json, .yaml)
	-words    Default word list (.txt)
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/brailleserve/internal/cli"
	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/bastiangx/brailleserve/pkg/braille"
	"github.com/bastiangx/brailleserve/pkg/config"
	"github.com/bastiangx/brailleserve/pkg/dictionary"
	"github.com/bastiangx/brailleserve/pkg/engine"
	"github.com/bastiangx/brailleserve/pkg/server"
	"github.com/bastiangx/brailleserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "brailleserve"
	gh      = "https://github.com/bastiangx/brailleserve"
)

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

// main wires config, dictionaries and the session, then hands over to the
// server or one of the CLIs.
func main() {
	sigHandler()
	config.LoadEnv()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the line CLI -- useful for testing and debugging")
	rawMode := flag.Bool("raw", false, "Run the raw chord CLI (needs a terminal)")
	configPath := flag.String("config", "", "Path to config file")
	dataDir := flag.String("data", "", "Directory for custom word lists")
	tablePath := flag.String("table", "", "Dot pattern table file (.json, .yaml); bundled table if empty")
	wordsPath := flag.String("words", "", "Default word list (.txt); bundled list if empty")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	if *debugMode {
		cfg.Debug = true
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedConfig))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	if cfg.Debug {
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
	}
	if *dataDir == "" {
		*dataDir = cfg.DataDir
	}
	resolvedDataDir := pathResolver.GetDataDir(*dataDir)
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	if *tablePath != "" {
		cfg.Dict.TablePath = *tablePath
	}
	if *wordsPath != "" {
		cfg.Dict.DefaultPath = *wordsPath
	}

	session, keymap, err := buildSession(cfg, resolvedDataDir)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	switch {
	case *rawMode:
		timeout := time.Duration(cfg.Keys.ChordTimeoutMs) * time.Millisecond
		h := cli.NewRawHandler(session, keymap, timeout, cfg.CLI.ShowCandidates, os.Stdout)
		if err := h.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	case *cliMode:
		log.SetReportTimestamp(false)
		h := cli.NewInputHandler(session, cfg.CLI.ShowCandidates)
		if err := h.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	default:
		log.Debug("spawning IPC")
		srv := server.NewServer(session, server.Options{MaxWordLen: cfg.Server.MaxWordLen})
		showStartupInfo(resolvedDataDir, session.Registry().Info())
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}

// buildSession loads the table and word lists named by cfg. A table or word
// list that was asked for but cannot be read is fatal; there is no fallback
// to the bundled data in that case.
func buildSession(cfg *config.Config, dataDir string) (*engine.Session, *braille.KeyMap, error) {
	table := braille.DefaultTable()
	if cfg.Dict.TablePath != "" {
		t, err := braille.LoadTable(cfg.Dict.TablePath)
		if err != nil {
			return nil, nil, err
		}
		table = t
	}
	log.Debugf("Dot table has %d entries", table.Len())

	words := dictionary.DefaultWords()
	if cfg.Dict.DefaultPath != "" {
		w, err := dictionary.LoadWords(cfg.Dict.DefaultPath)
		if err != nil {
			return nil, nil, err
		}
		words = w
	}

	keymap, err := braille.NewKeyMap(cfg.Keys.Layout)
	if err != nil {
		return nil, nil, err
	}

	registry := dictionary.NewRegistry(words, dictionary.Options{
		DataDir:        dataDir,
		CustomFile:     cfg.Dict.CustomPath,
		CacheSize:      cfg.Engine.CacheSize,
		MaxUploadWords: cfg.Server.MaxUploadWords,
	})
	found, err := registry.LoadCustom()
	if err != nil {
		log.Warnf("Ignoring saved custom dictionary: %v", err)
	}
	if kind, err := dictionary.ParseKind(cfg.Dict.Active); err != nil {
		log.Warnf("Bad [dict] active value: %v", err)
	} else if kind == dictionary.KindCustom {
		if !found {
			log.Warn("No custom dictionary saved yet, using the default one")
		} else if _, err := registry.Switch(kind); err != nil {
			log.Warnf("Failed to activate custom dictionary: %v", err)
		}
	}

	suggester := &suggest.Suggester{
		Limit:            cfg.Engine.MaxSuggestions,
		MaxDistance:      cfg.Engine.MaxDistance,
		ShortMaxDistance: cfg.Engine.ShortMaxDistance,
		ShortLength:      cfg.Engine.ShortLength,
	}
	session := engine.New(table, keymap, registry, engine.Options{
		AcceptDistance: cfg.Engine.AcceptDistance,
		CharCandidates: cfg.Engine.CharCandidates,
		MaxWordLen:     cfg.Server.MaxWordLen,
		Suggester:      suggester,
	})
	return session, keymap, nil
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ brailleserve ] Braille chords in, words out")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir string, info dictionary.Info) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("dictionary: %s (%d words)", info.Name, info.Words)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}

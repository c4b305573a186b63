// Copyright 2025 The WordFix Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the wordfix correction engine.

wordfix replaces misspelled words with the closest entry of a vocabulary.
Candidates come from Soundex and Metaphone buckets and are scored with a
fuzzy string similarity. A word is only replaced when the best score reaches
the acceptance threshold (75 by default).

# Usage

Start the msgpack IPC server on stdin/stdout:

	wordfix -vocab words.txt

Correct a file and write the report to a file, keeping a copy in the report
store:

	wordfix -vocab words.txt -in typos.txt -out report.txt -report-id run-1

Print a stored report:

	wordfix -get-report run-1

Try corrections interactively:

	wordfix -vocab words.txt -c -limit 5

# Configuration

Settings are read from config.toml (or a .yaml file given with -config),
then from .env and the environment, then from flags:

	[engine]
	threshold = 75.0
	workers = 0

	[vocab]
	path = "words.txt"
	redis_key = ""

	[report]
	backend = "dir"
	dir = "reports"

The config file is created with defaults if it doesn't exist.

# Flags

	-c            interactive mode
	-in file      batch mode input, one word per line
	-out file     batch mode report output (default stdout)
	-report-id id save the batch report under id
	-get-report id
	              print a stored report and exit
	-config path  config file
	-vocab path   vocabulary file
	-threshold n  acceptance threshold, 0 to 100
	-limit n      candidates shown in interactive mode
	-metrics addr serve Prometheus metrics on addr
	-add-word a,b add words to the Redis vocabulary set and exit
	-remove-word a,b
	              remove words from the Redis vocabulary set and exit
	-d            debug logging
	-version      show version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/bastiangx/wordfix/internal/cli"
	"github.com/bastiangx/wordfix/internal/logger"
	"github.com/bastiangx/wordfix/internal/observe"
	"github.com/bastiangx/wordfix/internal/utils"
	"github.com/bastiangx/wordfix/pkg/config"
	"github.com/bastiangx/wordfix/pkg/correct"
	"github.com/bastiangx/wordfix/pkg/report"
	"github.com/bastiangx/wordfix/pkg/server"
	"github.com/bastiangx/wordfix/pkg/vocab"
)

const (
	Version = "0.3.0"
	AppName = "wordfix"
	gh      = "https://github.com/bastiangx/wordfix"
)

// closers releases stores once, whichever of main and the signal handler
// gets there first.
type closers struct {
	mu   sync.Mutex
	list []io.Closer
	once sync.Once
}

func (c *closers) add(cl io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, cl)
}

func (c *closers) close() {
	c.once.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := len(c.list) - 1; i >= 0; i-- {
			if err := c.list[i].Close(); err != nil {
				log.Warnf("Close: %v", err)
			}
		}
		c.list = nil
	})
}

// sigHandler cancels the run on SIGINT/SIGTERM, lets cleanup release
// stores, then exits.
func sigHandler(cancel context.CancelFunc, cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		cleanup()
		os.Exit(0)
	}()
}

func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run interactive CLI")
	inFile := flag.String("in", "", "Correct the words of this file (one per line) and print the report")
	outFile := flag.String("out", "", "Write the batch report to this file instead of stdout")
	reportID := flag.String("report-id", "", "Save the batch report under this id")
	getReport := flag.String("get-report", "", "Print the stored report with this id and exit")
	configPath := flag.String("config", "", "Path to a config file (.toml, .yaml)")
	vocabPath := flag.String("vocab", "", "Vocabulary file, one word per line (overrides config)")
	threshold := flag.Float64("threshold", -1, "Acceptance threshold 0-100 (overrides config)")
	limit := flag.Int("limit", 5, "Number of candidates shown in CLI mode")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (overrides config)")
	addWords := flag.String("add-word", "", "Add comma separated words to the Redis vocabulary set and exit")
	removeWords := flag.String("remove-word", "", "Remove comma separated words from the Redis vocabulary set and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(usedPath))
	applyFlags(cfg, *vocabPath, *threshold, *metricsAddr)
	editVocab := *addWords != "" || *removeWords != ""
	if editVocab && cfg.Vocab.RedisKey == "" {
		cfg.Vocab.RedisKey = vocab.DefaultRedisKey
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := &closers{}
	cleanup := res.close
	defer cleanup()
	sigHandler(cancel, cleanup)

	fatal := func(format string, args ...any) {
		log.Errorf(format, args...)
		cleanup()
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb, err = connectRedis(ctx, cfg.Redis)
		if err != nil {
			fatal("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		res.add(rdb)
	}

	if editVocab {
		if err := editRedisVocab(ctx, vocab.NewRedisSource(rdb, cfg.Vocab.RedisKey), *addWords, *removeWords); err != nil {
			fatal("Failed to update vocabulary: %v", err)
		}
		return
	}

	store, err := openStore(cfg, rdb)
	if err != nil {
		fatal("Failed to open report store: %v", err)
	}
	if store != nil {
		res.add(store)
	}

	if *getReport != "" {
		err := cli.PrintReport(ctx, store, *getReport, os.Stdout)
		if errors.Is(err, report.ErrNotFound) {
			fatal("Report %q not found", *getReport)
		}
		if err != nil {
			fatal("Failed to print report: %v", err)
		}
		return
	}

	words, err := loadVocabulary(ctx, cfg, rdb)
	if err != nil {
		fatal("Failed to load vocabulary: %v", err)
	}

	opts := []correct.Option{
		correct.WithThreshold(cfg.Engine.Threshold),
		correct.WithWorkers(cfg.Engine.Workers),
	}
	var metrics *observe.Metrics
	if cfg.Metrics.Addr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
		if err != nil {
			fatal("Failed to init metrics: %v", err)
		}
		defer shutdown(context.Background())
		metrics = observe.DefaultMetrics()
		opts = append(opts, correct.WithObserver(metrics))
		go func() {
			if err := observe.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Errorf("Metrics server: %v", err)
			}
		}()
	}

	start := time.Now()
	engine, err := correct.NewEngine(words, opts...)
	if err != nil {
		fatal("Failed to build engine: %v", err)
	}
	log.Debug("Engine ready", "words", len(words), "took", time.Since(start), "threshold", engine.Threshold())

	switch {
	case *cliMode:
		h := cli.NewInputHandler(engine, *limit, cfg.Server.MaxWordLength, os.Stdin, os.Stdout)
		if err := h.Start(); err != nil {
			fatal("CLI error: %v", err)
		}

	case *inFile != "":
		if err := runBatch(ctx, engine, store, *inFile, *outFile, *reportID); err != nil {
			fatal("Batch failed: %v", err)
		}

	default:
		srv := server.NewServer(engine, cfg.Server, store)
		if metrics != nil {
			srv.SetRecorder(metrics)
		}
		log.Debug("spawning IPC", "pid", os.Getpid())
		if err := srv.Start(ctx); err != nil {
			fatal("Server stopped: %v", err)
		}
	}
}

func applyFlags(cfg *config.Config, vocabPath string, threshold float64, metricsAddr string) {
	if vocabPath != "" {
		cfg.Vocab.Path = vocabPath
	}
	if threshold >= 0 {
		cfg.Engine.Threshold = threshold
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
}

func connectRedis(ctx context.Context, rc config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func openStore(cfg *config.Config, rdb *redis.Client) (report.Store, error) {
	opts := report.Options{
		Backend:     cfg.Report.Backend,
		Dir:         cfg.Report.Dir,
		BadgerPath:  cfg.Report.BadgerPath,
		RedisPrefix: cfg.Report.RedisPrefix,
	}
	if rdb == nil {
		return report.Open(opts, nil)
	}
	return report.Open(opts, rdb)
}

func loadVocabulary(ctx context.Context, cfg *config.Config, rdb *redis.Client) ([]string, error) {
	path := cfg.Vocab.Path
	if path != "" {
		if pr, err := utils.NewPathResolver(); err == nil {
			path = pr.FindFile(path)
		} else {
			log.Warnf("Path resolver unavailable: %v", err)
		}
	}

	var extra []vocab.Source
	if cfg.Vocab.RedisKey != "" && rdb != nil {
		extra = append(extra, vocab.NewRedisSource(rdb, cfg.Vocab.RedisKey))
	}
	log.Debugf("Loading vocabulary from %s", path)
	return vocab.Load(ctx, path, extra...)
}

// editRedisVocab applies comma separated additions and removals to the
// custom vocabulary set.
func editRedisVocab(ctx context.Context, src *vocab.RedisSource, add, remove string) error {
	if err := src.Add(ctx, splitWords(add)...); err != nil {
		return err
	}
	if err := src.Remove(ctx, splitWords(remove)...); err != nil {
		return err
	}
	members, err := src.Words(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d words\n", src.Key(), len(members))
	return nil
}

func splitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func runBatch(ctx context.Context, engine *correct.Engine, store report.Store, inPath, outPath, reportID string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return cli.RunBatch(ctx, engine, in, out, store, reportID)
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ WordFix ] Phonetic spelling correction")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// Package main is the schoolfinder CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hyperjump/schoolfinder/internal/cli"
	"github.com/hyperjump/schoolfinder/internal/config"
	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
	"github.com/hyperjump/schoolfinder/internal/observability"
	"github.com/hyperjump/schoolfinder/internal/present"
	"github.com/hyperjump/schoolfinder/internal/search"
	"github.com/hyperjump/schoolfinder/internal/server"
	"github.com/hyperjump/schoolfinder/internal/storage"
	"github.com/hyperjump/schoolfinder/internal/suggest"
	"github.com/hyperjump/schoolfinder/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/schoolfinder/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory takes precedence; when neither exists, built-in defaults are used
// and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "show":
		runShow()
	case "stats":
		runStats()
	case "export":
		runExport()
	case "version", "--version", "-v":
		fmt.Printf("schoolfinder version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are shared by every command that reads the dataset.
type commonFlags struct {
	command    string
	configPath *string
	dataPath   *string
	debug      *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		command:    fs.Name(),
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		dataPath:   fs.String("data", "", "school data file (.csv, .xlsx, .db); overrides data.path"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// setup loads the config, applies flag overrides and builds the logger.
// It exits the process on failure.
func (f commonFlags) setup() (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(*f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *f.dataPath != "" {
		cfg.Data.Path = *f.dataPath
	}
	logger, err := utils.NewLogger(f.command, cfg.Debug || *f.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := common.setup()
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("data_path", cfg.Data.Path),
		zap.String("reload", cfg.Data.Reload),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	components, err := initializeComponents(ctx, cfg, logger, registry)
	if err != nil {
		logger.Fatal("Failed to load school data", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, cfg, registry, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: schoolfinder search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
A query is tried as a zip code, a street address, a city, a state, and finally keywords;
the first strategy that finds schools wins.

Examples:
  schoolfinder search 02139
  schoolfinder search "123 Main St, Boston, MA 02139"
  schoolfinder search Boston
  schoolfinder search --limit 5 --output json lincoln high
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// parseInterspersed parses flags that may appear before, between or after the
// positional arguments, and returns the positionals in their original order.
// Everything after a "--" terminator is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positionals []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positionals, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positionals, rest...), nil
		}
		positionals = append(positionals, rest[0])
		args = rest[1:]
	}
}

func parseOutputFormat(s string) (cli.OutputFormat, error) {
	switch s {
	case "text":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	common := addCommonFlags(fs)
	serverURL := fs.String("server", "", "server URL (empty = load the dataset directly)")
	limit := fs.Int("limit", 0, "number of schools to display (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	positionals, _ := parseInterspersed(fs, os.Args[2:])

	queryStr := buildSearchQuery(positionals)
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{Query: queryStr, Limit: *limit}
	var data models.SearchData
	if *serverURL != "" {
		if err := postJSON(*serverURL+"/api/schools/search", searchQuery, &data); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger := common.setup()
		defer logger.Sync()
		if err := searchQuery.Validate(cfg.Search.DisplayLimit, cfg.Search.MaxLimit); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		components, err := initializeComponents(context.Background(), cfg, logger, nil)
		if err != nil {
			logger.Fatal("Failed to load school data", zap.Error(err))
		}
		defer components.Close()
		result, err := components.Engine.Search(context.Background(), queryStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		data = present.SearchData(result, searchQuery.Limit)
	}
	if err := cli.WriteSearchResults(os.Stdout, data, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	common := addCommonFlags(fs)
	serverURL := fs.String("server", "", "server URL (empty = load the dataset directly)")
	name := fs.String("name", "", "school name hint")
	city := fs.String("city", "", "city hint")
	state := fs.String("state", "", "state hint")
	zip := fs.String("zip", "", "zip code hint")
	outputFormat := fs.String("output", "text", "output format: text or json")
	positionals, _ := parseInterspersed(fs, os.Args[2:])

	if len(positionals) != 1 {
		fmt.Println("Usage: schoolfinder show [flags] <id>")
		os.Exit(1)
	}
	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	id := positionals[0]
	hints := models.Hints{Name: *name, City: *city, State: *state, Zip: *zip}

	var view models.SchoolView
	if *serverURL != "" {
		if err := getJSON(schoolURL(*serverURL, id, hints), &view); err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger := common.setup()
		defer logger.Sync()
		components, err := initializeComponents(context.Background(), cfg, logger, nil)
		if err != nil {
			logger.Fatal("Failed to load school data", zap.Error(err))
		}
		defer components.Close()
		school, err := components.Engine.Resolve(context.Background(), id, hints)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
		view = present.Format(school)
	}
	if err := cli.WriteSchool(os.Stdout, view, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func schoolURL(serverURL, id string, hints models.Hints) string {
	u := strings.TrimRight(serverURL, "/") + "/api/schools/" + url.PathEscape(id)
	q := url.Values{}
	for k, v := range map[string]string{"name": hints.Name, "city": hints.City, "state": hints.State, "zip": hints.Zip} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	common := addCommonFlags(fs)
	serverURL := fs.String("server", "", "server URL (empty = load the dataset directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var stats models.Stats
	if *serverURL != "" {
		if err := getJSON(strings.TrimRight(*serverURL, "/")+"/api/schools/", &stats); err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, logger := common.setup()
		defer logger.Sync()
		components, err := initializeComponents(context.Background(), cfg, logger, nil)
		if err != nil {
			logger.Fatal("Failed to load school data", zap.Error(err))
		}
		defer components.Close()
		ds, err := components.Engine.Dataset(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = present.ComputeStats(ds.Rows())
	}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "", "SQLite snapshot path (default from storage.database_path)")
	saveConfig := fs.Bool("save-config", false, "write the snapshot path back to the config file")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := common.setup()
	defer logger.Sync()
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}

	ctx := context.Background()
	count, err := exportSnapshot(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d schools to %s\n", count, cfg.Storage.DatabasePath)

	if *saveConfig {
		target := resolvedConfigPath
		if target == "" {
			target = "config.yaml"
		}
		if err := config.Save(target, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config saved to %s\n", target)
	}
}

// exportSnapshot loads the configured dataset and writes it to the SQLite snapshot.
func exportSnapshot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (int64, error) {
	ds, err := dataset.Load(ctx, cfg.Data, logger)
	if err != nil {
		return 0, err
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	if err := store.SaveSnapshot(ctx, ds.Rows()); err != nil {
		return 0, err
	}
	return store.CountSchools(ctx)
}

func postJSON(target string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(target, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

func getJSON(target string, out interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	envelope := models.Envelope{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds the long-lived pieces behind every dataset-reading command.
type Components struct {
	Provider  *dataset.Provider
	Suggester *suggest.Suggester
	Engine    *search.Engine
}

// Close releases the provider's watcher and the suggestion index.
func (c *Components) Close() {
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
	if c.Suggester != nil {
		_ = c.Suggester.Close()
	}
}

// initializeComponents loads the dataset and wires the search engine.
// reg may be nil, in which case metrics are not recorded.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Components, error) {
	var metrics *observability.Metrics
	if reg != nil {
		metrics = observability.NewMetrics(reg)
	}

	provider := dataset.NewProvider(cfg.Data,
		dataset.WithLogger(logger),
		dataset.WithMetrics(metrics),
	)
	if err := provider.Start(ctx); err != nil {
		_ = provider.Close()
		return nil, err
	}

	opts := []search.EngineOption{
		search.WithLogger(logger),
		search.WithMetrics(metrics),
	}
	if cfg.Search.CacheSize > 0 {
		opts = append(opts, search.WithCache(search.NewResultCache(cfg.Search.CacheSize)))
	}
	var suggester *suggest.Suggester
	if cfg.Search.SuggestionsOrDefault() {
		suggester = suggest.New(logger)
		opts = append(opts, search.WithSuggester(suggester, cfg.Search.SuggestionCount))
	}

	return &Components{
		Provider:  provider,
		Suggester: suggester,
		Engine:    search.NewEngine(provider, opts...),
	}, nil
}

func printUsage() {
	fmt.Println(`schoolfinder - School search over a tabular dataset

Usage:
  schoolfinder server [flags]            Start the HTTP server
  schoolfinder search [flags] <query>    Search schools by zip, address, city, state or keywords
  schoolfinder show [flags] <id>         Show one school
  schoolfinder stats [flags]             Show dataset statistics
  schoolfinder export [flags]            Write the dataset to a SQLite snapshot
  schoolfinder version                   Show version
  schoolfinder help                      Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/schoolfinder/config.yaml, or ./config.yaml)
  --data string      School data file (.csv, .xlsx, .db); overrides data.path
  --debug            Enable debug logging

Search Flags:
  --server string    Server URL; empty loads the dataset directly (default: "")
  --limit int        Number of schools to display (default: search.display_limit)
  --output string    Output format: text or json (default: text)

Show Flags:
  --name, --city, --state, --zip   Hints used when several schools share the id
  --server string                  Server URL
  --output string                  Output format: text or json

Export Flags:
  --db string        SQLite snapshot path (default: storage.database_path)
  --save-config      Write the snapshot path back to the config file

Examples:
  schoolfinder server --data school_data.csv
  schoolfinder search 02139
  schoolfinder search "123 Main St, Boston, MA 02139"
  schoolfinder search --output json Boston
  schoolfinder show --state MA LINCOLN-HIGH-BOSTON-MA
  schoolfinder stats
  schoolfinder export --db ./data/schools.db`)
}

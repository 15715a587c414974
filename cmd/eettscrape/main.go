// Command eettscrape searches the EETT antenna registry for one municipality
// and writes the results as CSV and XLSX files.
//
// Usage:
//
//	eettscrape "Χαλκιδέων"                 # scrape all pages for Chalkida
//	eettscrape "Αθηναίων" -max-pages 5     # first 5 pages for Athens
//	eettscrape -list                       # show available municipalities
//	eettscrape "Θεσσαλονίκης" -debug       # keep raw bodies of pages 1-2
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"eettscrape/internal/eett"
	"eettscrape/internal/metrics"
	"eettscrape/internal/metrics/datadog"
	"eettscrape/internal/output"
	"eettscrape/internal/storage"

	// register all storage backends with the factory.
	_ "eettscrape/internal/storage/all"
)

// backendCloser is the minimal interface used to manage a metrics backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// deps are external seams for testability.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	BackendFactory func(ctx context.Context, jobName string, tags []string, flushEvery time.Duration) (backendCloser, error)
}

// runConfig holds the parsed flags for a run.
type runConfig struct {
	Municipality string
	List         bool
	MaxPages     int
	Debug        bool
	OutputDir    string

	BaseURL string
	Timeout time.Duration
	Delay   time.Duration

	DBKind string
	DSN    string

	MetricsBackend string
	DDTagsCSV      string
	FlushEvery     time.Duration
}

// main wires real dependencies and exits with run's code.
func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		BackendFactory: func(ctx context.Context, jobName string, tags []string, flushEvery time.Duration) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				JobName:    jobName,
				Tags:       tags,
				FlushEvery: flushEvery,
			})
		},
	})
	os.Exit(code)
}

// run executes the scraper command and returns an exit code.
//
// Exit codes:
//   - 0: success, including "no results" and "municipality not found".
//   - 1: user interrupt or unhandled error.
//   - 2: configuration error.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}

	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(d.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger := log.New(d.Stderr, "", log.LstdFlags)

	if cfg.MetricsBackend == "datadog" {
		if d.BackendFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: BackendFactory is nil")
			return 2
		}
		tags := append(datadog.ParseTagsCSV(cfg.DDTagsCSV), "tool:eettscrape")
		backend, err := d.BackendFactory(ctx, "eett_scrape", tags, cfg.FlushEvery)
		if err != nil {
			fmt.Fprintf(d.Stderr, "datadog backend init failed: %v\n", err)
			return 2
		}
		metrics.SetBackend(backend)
		defer func() {
			_ = metrics.Flush()
			_ = backend.Close()
		}()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(d.Stderr, "failed to create output directory: %v\n", err)
		return 2
	}

	scraperOpts := eett.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Delay:   cfg.Delay,
		Logf:    logger.Printf,
	}
	if cfg.Debug {
		scraperOpts.Debug = debugFileSink(cfg.OutputDir, logger)
	}
	scraper, err := eett.New(scraperOpts)
	if err != nil {
		fmt.Fprintf(d.Stderr, "init scraper: %v\n", err)
		return 2
	}

	if cfg.List {
		return listMunicipalities(ctx, scraper, d)
	}

	records, err := scraper.Search(ctx, cfg.Municipality, cfg.MaxPages)
	if err != nil {
		var notFound *eett.MunicipalityNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(d.Stdout, "Municipality %q not found.\n", notFound.Name)
			if len(notFound.Available) > 0 {
				fmt.Fprintln(d.Stdout, "Available municipalities (showing first 10):")
				for _, name := range notFound.Available {
					fmt.Fprintf(d.Stdout, "  - %s\n", name)
				}
			}
			return 0
		}
		if ctx.Err() != nil {
			fmt.Fprintln(d.Stderr, "scraping interrupted by user")
			return 1
		}
		fmt.Fprintf(d.Stderr, "an error occurred: %v\n", err)
		return 1
	}
	if ctx.Err() != nil {
		// Interrupted mid-scrape: leave no partial output files behind.
		fmt.Fprintln(d.Stderr, "scraping interrupted by user")
		return 1
	}

	if len(records) == 0 {
		fmt.Fprintf(d.Stdout, "No antenna data found for municipality: %s\n", cfg.Municipality)
		fmt.Fprintln(d.Stdout, "Troubleshooting suggestions:")
		fmt.Fprintln(d.Stdout, "  1. Check the municipality name spelling")
		fmt.Fprintln(d.Stdout, "  2. Use -list to see available municipalities")
		fmt.Fprintln(d.Stdout, "  3. Try -debug for more information")
		return 0
	}

	base := output.BaseName(cfg.Municipality)
	csvPath := filepath.Join(cfg.OutputDir, base+".csv")
	xlsxPath := filepath.Join(cfg.OutputDir, base+".xlsx")

	// The two writes are independent: a failure of one must not block the
	// other.
	var written []string
	if err := output.WriteCSV(csvPath, records); err != nil {
		logger.Printf("csv write failed: %v", err)
	} else {
		written = append(written, csvPath)
	}
	if err := output.WriteXLSX(xlsxPath, records); err != nil {
		logger.Printf("xlsx write failed: %v", err)
	} else {
		written = append(written, xlsxPath)
	}

	if cfg.DBKind != "" {
		if err := persistRecords(ctx, cfg, records, logger); err != nil {
			logger.Printf("db write failed: %v", err)
		}
	}

	printSummary(d.Stdout, cfg.Municipality, records, written)
	return 0
}

// listMunicipalities prints all selectable municipality names, sorted.
func listMunicipalities(ctx context.Context, scraper *eett.Scraper, d deps) int {
	opts, err := scraper.Municipalities(ctx)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error listing municipalities: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(opts))
	for _, opt := range opts {
		names = append(names, opt.Name)
	}
	sort.Strings(names)

	fmt.Fprintln(d.Stdout, "Available municipalities:")
	for _, name := range names {
		fmt.Fprintf(d.Stdout, "  - %s\n", name)
	}
	return 0
}

// persistRecords stores records in the configured database backend.
func persistRecords(ctx context.Context, cfg runConfig, records []eett.AntennaRecord, logger *log.Logger) error {
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.DBKind, DSN: cfg.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	n, err := repo.InsertRecords(ctx, records)
	if err != nil {
		return err
	}
	logger.Printf("stored %d new records in %s", n, cfg.DBKind)
	return nil
}

// debugFileSink writes raw page bodies as debug_response_page_N.html in dir.
func debugFileSink(dir string, logger *log.Logger) eett.DebugSink {
	return func(page int, body []byte) error {
		path := filepath.Join(dir, fmt.Sprintf("debug_response_page_%d.html", page))
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return err
		}
		logger.Printf("saved response HTML to %s", path)
		return nil
	}
}

func printSummary(w io.Writer, municipality string, records []eett.AntennaRecord, written []string) {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "SCRAPING SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Municipality: %s\n", municipality)
	fmt.Fprintf(w, "Total antennas: %d\n", len(records))
	if len(written) > 0 {
		fmt.Fprintln(w, "Files saved:")
		for _, path := range written {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}

	first := records[0]
	fmt.Fprintln(w, "\nSample data (first antenna):")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	for i, field := range eett.RecordFields {
		fmt.Fprintf(w, "  %s: %s\n", field, first.Values()[i])
	}
	fmt.Fprintln(w, strings.Repeat("-", 30))
}

// parseFlags parses command arguments into a validated runConfig.
// It does not exit the process; the caller decides the exit code.
func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("eettscrape", flag.ContinueOnError)

	var usageBuf strings.Builder
	fs.SetOutput(&usageBuf)
	fs.Usage = func() {
		fmt.Fprintf(&usageBuf, "Usage: %s [flags] <municipality>\n", fs.Name())
		fs.PrintDefaults()
	}

	var cfg runConfig
	fs.BoolVar(&cfg.List, "list", false, "List available municipalities and exit")
	fs.BoolVar(&cfg.List, "l", false, "Shorthand for -list")
	fs.IntVar(&cfg.MaxPages, "max-pages", 0, "Maximum number of pages to scrape (0 = all)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Save raw response bodies of the first two pages")
	fs.StringVar(&cfg.OutputDir, "output-dir", ".", "Output directory for files")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Registry base URL override (default: production)")
	fs.DurationVar(&cfg.Timeout, "timeout", 60*time.Second, "HTTP timeout per request")
	fs.DurationVar(&cfg.Delay, "delay", time.Second, "Politeness delay between page requests")
	fs.StringVar(&cfg.DBKind, "db", "", "Also store records in a database (sqlite, postgres, mssql)")
	fs.StringVar(&cfg.DSN, "dsn", "", "Database DSN for -db")
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", "", "Metrics backend to use (datadog or empty)")
	fs.StringVar(&cfg.DDTagsCSV, "dd-tags", "", "Extra Datadog tags CSV (e.g. env:prod)")
	fs.DurationVar(&cfg.FlushEvery, "metrics-flush", time.Minute, "Datadog flush interval")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runConfig{}, errors.New(usageBuf.String())
		}
		return runConfig{}, fmt.Errorf("%v\n\n%s", err, usageBuf.String())
	}

	cfg.Municipality = strings.TrimSpace(fs.Arg(0))
	if !cfg.List && cfg.Municipality == "" {
		return runConfig{}, errors.New("municipality name is required (use -list to see available options)")
	}
	if cfg.MaxPages < 0 {
		return runConfig{}, errors.New("-max-pages must be >= 0")
	}
	if cfg.DBKind != "" && cfg.DSN == "" {
		return runConfig{}, errors.New("-db requires -dsn")
	}
	if cfg.DSN != "" && cfg.DBKind == "" {
		return runConfig{}, errors.New("-dsn requires -db")
	}

	return cfg, nil
}

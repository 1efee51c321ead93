package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"daybias/internal/config"
	"daybias/internal/dataset"
	"daybias/internal/engine"
	"daybias/internal/journal"
	"daybias/internal/render"
	"daybias/internal/scanner"
	"daybias/internal/web"
	"daybias/pkg/model"
)

var (
	cfgFile    string
	d2Flag     string
	d1Flag     string
	fileFlag   string
	symbolFlag string
	format     string
	record     bool
	workers    int
	port       int
	limit      int
	client     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "daybias",
		Short: "Daily bias classifier for OHLC bar pairs",
		Long: `Daybias classifies the expected daily bias of a symbol from its two
most recent completed daily bars. The engine is deterministic: the same
two bars always produce the same forecast.

Examples:
  daybias analyze --symbol EURUSD --d2 1.100,1.112,1.090,1.110 --d1 1.110,1.118,1.095,1.097
  daybias scan bars.csv --format json
  daybias serve --port 8087`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify one bar pair",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&symbolFlag, "symbol", "", "symbol name (required)")
	analyzeCmd.Flags().StringVar(&d2Flag, "d2", "", "older bar as open,high,low,close")
	analyzeCmd.Flags().StringVar(&d1Flag, "d1", "", "newer bar as open,high,low,close")
	analyzeCmd.Flags().StringVar(&fileFlag, "file", "", "CSV file to take the symbol's last two bars from")
	analyzeCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	analyzeCmd.Flags().BoolVar(&record, "record", false, "record the forecast to the journal")
	analyzeCmd.MarkFlagRequired("symbol")

	scanCmd := &cobra.Command{
		Use:   "scan [file.csv]",
		Short: "Classify every symbol in a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (default from config)")
	scanCmd.Flags().BoolVar(&record, "record", false, "record forecasts to the journal")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the forecast HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")

	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded forecasts",
		RunE:  runJournal,
	}
	journalCmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	journalCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		RunE:  runToken,
	}
	tokenCmd.Flags().StringVar(&client, "client", "cli", "client name embedded in the token")

	rootCmd.AddCommand(analyzeCmd, scanCmd, serveCmd, journalCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseBar parses "open,high,low,close" into a bar.
func parseBar(s string) (model.PriceBar, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.PriceBar{}, fmt.Errorf("expected open,high,low,close, got %q", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("parsing %q: %w", p, err)
		}
		vals[i] = v
	}

	return model.PriceBar{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}, nil
}

func openJournal(cfg *config.Config) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("journal path not configured (set journal.path or DAYBIAS_JOURNAL)")
	}
	return journal.Open(cfg.Journal.Path)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	symbol := strings.ToUpper(symbolFlag)

	var d2, d1 model.PriceBar
	switch {
	case fileFlag != "":
		pairs, err := dataset.LoadCSV(fileFlag)
		if err != nil {
			return fmt.Errorf("loading dataset: %w", err)
		}
		found := false
		for _, p := range pairs {
			if p.Symbol == symbol {
				d2, d1 = p.D2, p.D1
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("symbol %s has no bar pair in %s", symbol, fileFlag)
		}
	case d2Flag != "" && d1Flag != "":
		var err error
		if d2, err = parseBar(d2Flag); err != nil {
			return fmt.Errorf("parsing --d2: %w", err)
		}
		if d1, err = parseBar(d1Flag); err != nil {
			return fmt.Errorf("parsing --d1: %w", err)
		}
	default:
		return fmt.Errorf("provide either --file or both --d2 and --d1")
	}

	result, err := engine.ClassifyBias(d2, d1, symbol)
	if err != nil {
		return err
	}

	if record {
		j, err := openJournal(cfg)
		if err != nil {
			return err
		}
		defer j.Close()
		id, err := j.Record(result)
		if err != nil {
			return fmt.Errorf("recording forecast: %w", err)
		}
		fmt.Printf("Recorded forecast %s\n\n", id)
	}

	if format == "json" {
		return render.JSON(os.Stdout, result)
	}
	return render.Forecast(os.Stdout, result)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if workers > 0 {
		cfg.Scan.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pairs, err := dataset.LoadCSV(args[0])
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no symbol with two bars in %s", args[0])
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping scan...")
		cancel()
	}()

	fmt.Printf("Classifying %d symbols...\n\n", len(pairs))

	s := scanner.NewScanner(cfg.Scan.Workers, cfg.Scan.Timeout)

	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	result, err := s.Scan(ctx, pairs)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	bar.Finish()
	fmt.Println()

	if record && len(result.Forecasts) > 0 {
		j, err := openJournal(cfg)
		if err != nil {
			return err
		}
		defer j.Close()
		for i := range result.Forecasts {
			if _, err := j.Record(&result.Forecasts[i]); err != nil {
				return fmt.Errorf("recording forecast for %s: %w", result.Forecasts[i].Symbol, err)
			}
		}
		fmt.Printf("Recorded %d forecasts\n\n", len(result.Forecasts))
	}

	if format == "json" {
		return render.JSON(os.Stdout, result)
	}
	return render.ScanTable(os.Stdout, result)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var j *journal.Journal
	if cfg.Journal.Path != "" {
		j, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer j.Close()
	}

	srv := web.NewServer(cfg, j)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		srv.Shutdown(context.Background())
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(limit)
	if err != nil {
		return fmt.Errorf("listing forecasts: %w", err)
	}

	if format == "json" {
		return render.JSON(os.Stdout, entries)
	}
	return render.JournalTable(os.Stdout, entries)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Server.AuthSecret == "" {
		return fmt.Errorf("auth_secret not configured (set server.auth_secret or DAYBIAS_AUTH_SECRET)")
	}

	tm := web.NewTokenManager(cfg.Server.AuthSecret, cfg.Server.TokenTTL)
	token, err := tm.Issue(client)
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}

	fmt.Println(token)
	return nil
}

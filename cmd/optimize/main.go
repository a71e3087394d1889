package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"CardOptimizer/internal/advisor"
	"CardOptimizer/internal/app"
	"CardOptimizer/internal/config"
	"CardOptimizer/internal/logger"
	"CardOptimizer/internal/report"

	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	format := flag.String("format", "table", "output format: table or json")
	workers := flag.Int("workers", 0, "parallel workers for the exhaustive phase (0 keeps the config value)")
	history := flag.Bool("history", false, "record the run in the SQLite history")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] cards=3 groceries=400 gas=150 total=2500 capital=30000 [costco] [sams] [amazon]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*cfgPath, *format, *workers, *history, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfgPath, format string, workers int, history bool, args []string, out io.Writer) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Optimizer.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// zap writes to stderr, so stdout stays machine-readable.
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	req, err := advisor.ParseRequest(args)
	if err != nil {
		return err
	}
	req.Source = "cli"

	ctx := context.Background()
	a, err := app.New(ctx, cfg, history, log)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.Advisor.Advise(ctx, req)
	if err != nil {
		log.Debug("advise failed", zap.Error(err))
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return writeTable(out, rep)
}

func writeTable(out io.Writer, rep *report.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tCARD\tCATEGORIES\n")
	for i, name := range rep.Cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, name, strings.Join(rep.SelectedCategories[name], ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if len(rep.Memberships) > 0 {
		fmt.Fprintf(out, "Memberships needed: %s\n", strings.Join(rep.Memberships, ", "))
	}
	fmt.Fprintf(out, "Monthly cash back:  $%s\n", rep.MonthlyCashBack.StringFixed(2))
	fmt.Fprintf(out, "Annual cash back:   $%s\n", rep.AnnualCashBack.StringFixed(2))
	fmt.Fprintf(out, "Average rate:       %s%%\n", rep.AverageRate.StringFixed(2))
	if rep.Tier != "" {
		fmt.Fprintf(out, "Reward multiplier:  %.2fx (%s)\n", rep.Multiplier, rep.Tier)
	} else {
		fmt.Fprintf(out, "Reward multiplier:  %.2fx\n", rep.Multiplier)
	}
	fmt.Fprintf(out, "Subsets evaluated:  %d\n", rep.Evaluated)
	return nil
}

// Command analyzer runs the KPI extraction engine against one workbook and
// emits the full analysis result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"kpilens/internal/analysis"
	"kpilens/internal/config"
	"kpilens/internal/infrastructure"
	"kpilens/internal/services"
	"kpilens/pkg/contracts"
	"kpilens/pkg/contracts/domain"
)

func main() {
	file := flag.String("file", "", "workbook file (.xlsx) to analyze")
	lang := flag.String("lang", "en", "output language (en or zh; invalid values fall back to en)")
	prompt := flag.String("prompt", "", "free-text prompt fingerprinted into the cache key")
	cycle := flag.String("cycle", "MOM", "lens: comparison cycle")
	terms := flag.String("terms", "AUTO", "lens: terms")
	mode := flag.String("mode", "AUTO", "lens: mode")
	hold := flag.String("hold", "OFF", "lens: hold")
	out := flag.String("out", "", "write JSON result to this file instead of stdout")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetVersionString())
		return
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -file report.xlsx [-lang en|zh] [-cycle MOM] ...")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())

	if err := run(ctx, cfg, logger, *file, *out, analysis.Options{
		Lang:   *lang,
		Prompt: *prompt,
		Lens: domain.Lens{
			Cycle: *cycle,
			Terms: *terms,
			Mode:  *mode,
			Hold:  *hold,
		},
	}); err != nil {
		logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, file, out string, opts analysis.Options) error {
	svc := services.NewAnalysisService(cfg, logger)
	defer svc.Close()

	result, err := svc.Analyze(ctx, file, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		logger.InfoContext(ctx, "result written",
			slog.String("file", out),
			slog.String("status", string(result.Status)))
		return nil
	}

	fmt.Println(string(data))
	return nil
}

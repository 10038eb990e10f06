package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dial112/callscope/internal/alert"
	"github.com/dial112/callscope/internal/analysis"
	"github.com/dial112/callscope/internal/calllog"
	"github.com/dial112/callscope/internal/config"
	"github.com/dial112/callscope/internal/festivals"
	"github.com/dial112/callscope/internal/icsfeed"
	"github.com/dial112/callscope/internal/logger"
	"github.com/dial112/callscope/internal/models"
	"github.com/dial112/callscope/internal/storage"
)

var (
	configPath   = flag.String("config", "configs/config.yaml", "Path to configuration file")
	callsPath    = flag.String("calls", "", "Path to the call log CSV export (required)")
	categoryFlag = flag.String("category", "", "Call category to analyze (overrides config)")
	forceRefresh = flag.Bool("refresh", false, "Force a festival database refresh even when fresh")
	topFlag      = flag.Int("top", 0, "Number of peak-day festivals to report (overrides config)")
	exportICS    = flag.String("export-ics", "", "Optional path to export the festival database as an ICS calendar")
)

func main() {
	flag.Parse()

	if *callsPath == "" {
		log.Fatal("A call log CSV is required: -calls <path>")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	category := cfg.Analysis.Category
	if *categoryFlag != "" {
		category = *categoryFlag
	}
	topK := cfg.Analysis.TopK
	if *topFlag > 0 {
		topK = *topFlag
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	// Load the call log
	calls, skipped, err := calllog.LoadFile(*callsPath)
	if err != nil {
		logger.Fatal("Failed to load call log: %v", err)
	}
	if skipped > 0 {
		logger.Warn("Skipped %d malformed call log rows", skipped)
	}
	if len(calls) == 0 {
		logger.Fatal("Call log contains no usable records")
	}
	logger.Info("Loaded %d call records from %s", len(calls), *callsPath)

	// Initialize the festival repository
	store := storage.New(cfg.Storage.DatabasePath)
	feedClient := icsfeed.NewClient(
		cfg.Feeds.URLs,
		cfg.Feeds.Timeout,
		cfg.Feeds.MaxRetries,
		cfg.Feeds.RetryDelayBase,
	)
	repo := festivals.New(feedClient, store, cfg.Staleness())

	if err := repo.Load(); err != nil {
		logger.Warn("Failed to load festival database, starting fresh: %v", err)
	}

	refreshed, warnings, err := repo.Refresh(ctx, *forceRefresh)
	if err != nil {
		logger.Fatal("Failed to refresh festival database: %v", err)
	}
	for _, w := range warnings {
		logger.Warn("Festival refresh: %v", w)
	}
	if refreshed {
		logger.Info("Festival database refreshed")
	} else {
		logger.Debug("Festival database is fresh, refresh skipped")
	}

	stats := repo.Statistics()
	logger.Info("Festival database: %d festivals, coverage %s, sources %v",
		stats.TotalFestivals, stats.DateCoverage, stats.Sources)

	if *exportICS != "" {
		body := icsfeed.GenerateICS(repo.All(), time.Now())
		if err := os.WriteFile(*exportICS, []byte(body), 0o644); err != nil {
			logger.Error("Failed to export ICS calendar: %v", err)
		} else {
			logger.Info("Exported festival calendar to %s", *exportICS)
		}
	}

	// Aggregate views over the whole call log
	days := analysis.ByDay(calls)
	start, end := days[0].Date, days[len(days)-1].Date
	logger.Info("Call log covers %s to %s (%d active days)", start, end, len(days))

	printOverview(calls, days)

	// Festival impact for the selected category
	candidates := repo.Get(start, end)
	logger.Info("Found %d festivals within the call log range", len(candidates))

	params := analysis.ClassifyParams{
		Category:          category,
		ImpactThreshold:   cfg.Analysis.ImpactThreshold,
		MinCallsThreshold: cfg.Analysis.MinCallsThreshold,
		WindowDays:        cfg.Analysis.WindowDays,
	}
	assessments, err := analysis.Classify(candidates, calls, params)
	if err != nil {
		logger.Fatal("Impact analysis failed: %v", err)
	}

	significant := analysis.Significant(assessments)
	printImpactReport(category, params, assessments, significant, topK)

	// Broadcast the report when configured
	if cfg.Telegram.Enabled {
		alertClient, err := alert.NewClient(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.Telegram.MaxRetries,
			cfg.Telegram.RetryDelayBase,
		)
		if err != nil {
			logger.Error("Failed to initialize alert client: %v", err)
		} else if err := alertClient.SendImpactReport(category, significant); err != nil {
			logger.Error("Failed to send impact report: %v", err)
		} else {
			logger.Info("Sent impact report with %d significant festivals", len(significant))
		}
	} else {
		logger.Debug("Telegram alerts disabled")
	}
}

func printOverview(calls []models.CallRecord, days []analysis.DayCount) {
	kpis := analysis.ComputeKPIs(calls)

	fmt.Println("=== Call Volume Overview ===")
	fmt.Printf("Total calls:   %d\n", kpis.TotalCalls)
	fmt.Printf("Avg per day:   %.1f\n", kpis.AvgPerDay)
	fmt.Printf("Peak hour:     %s\n", kpis.PeakHour)
	fmt.Println()

	fmt.Println("Calls by category:")
	for _, share := range analysis.ByCategory(calls) {
		fmt.Printf("  %-16s %5d (%.1f%%)\n", share.Category, share.Count, share.Percent)
	}
	fmt.Println()

	for _, line := range analysis.Insights(days) {
		fmt.Printf("* %s\n", line)
	}
	for _, line := range analysis.HourlyInsights(analysis.ByHour(calls)) {
		fmt.Printf("* %s\n", line)
	}
	fmt.Println()
}

func printImpactReport(
	category string,
	params analysis.ClassifyParams,
	assessments []models.ImpactAssessment,
	significant []models.ImpactAssessment,
	topK int,
) {
	fmt.Printf("=== Festival Impact: %s calls ===\n", category)
	fmt.Printf("Threshold %.2fx baseline, window +/-%d days\n\n", params.ImpactThreshold, params.WindowDays)

	if len(assessments) == 0 {
		fmt.Println("No festivals with observed call data in the analysis range.")
		return
	}

	fmt.Printf("Significant festivals (%d of %d assessed):\n", len(significant), len(assessments))
	for _, a := range significant {
		fmt.Printf("  %-24s %s  %.2fx baseline (%s) avg %.1f peak %d\n",
			a.FestivalName, a.FestivalDate, a.ImpactRatio, a.ImpactCategory, a.AvgCallsDuring, a.MaxCallsDuring)
	}
	if len(significant) == 0 {
		fmt.Println("  (none)")
	}
	fmt.Println()

	top := analysis.TopByMaxCount(assessments, topK)
	fmt.Printf("Top %d festivals by peak-day calls:\n", len(top))
	for _, a := range top {
		fmt.Printf("  %-24s %s  peak %d calls (%.2fx baseline)\n",
			a.FestivalName, a.FestivalDate, a.MaxCallsDuring, a.MaxImpactRatio)
	}
}

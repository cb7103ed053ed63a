// Command recompute-metrics runs one vendor metrics pass and exits.
// Intended for cron; the API exposes the same job to Admins.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"interiorerp/internal/app"
	"interiorerp/internal/config"
	"interiorerp/internal/logging"
	"interiorerp/internal/services"
)

func main() {
	cfg := config.MustLoad()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Log, "interiorerp-metrics")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("[metrics][open][err] %v", err)
	}
	defer stores.Close()

	svc := services.NewVendorMetricsService(stores.Projects, stores.Tasks, stores.Financials, stores.Users, logging.Logger)
	report, err := svc.Recompute(ctx)
	if err != nil {
		logging.Logger.Errorf("[metrics][recompute][err] %v", err)
		stores.Close()
		os.Exit(1)
	}
	fmt.Printf("projects=%d written=%d cleared=%d skipped=%d took=%s\n",
		report.Projects, len(report.Written), len(report.Cleared), len(report.Skipped), report.Duration)
}

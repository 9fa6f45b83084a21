package main

import (
	"context"
	"os"
	"strconv"

	appcatalog "github.com/marchworks/stockroom/internal/application/catalog"
	apporder "github.com/marchworks/stockroom/internal/application/order"
	"github.com/marchworks/stockroom/internal/application/session"
	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domorder "github.com/marchworks/stockroom/internal/domain/order"
	"github.com/marchworks/stockroom/internal/domain/user"
	"github.com/marchworks/stockroom/internal/infrastructure/alerts"
	"github.com/marchworks/stockroom/internal/infrastructure/id"
	"github.com/marchworks/stockroom/internal/infrastructure/jsonfile"
	"github.com/marchworks/stockroom/internal/infrastructure/observability/oteltrace"
	"github.com/marchworks/stockroom/internal/infrastructure/observability/prometrics"
	"github.com/marchworks/stockroom/internal/infrastructure/observability/telemetry"
	"github.com/marchworks/stockroom/internal/infrastructure/observability/zaplogger"
	"github.com/marchworks/stockroom/internal/infrastructure/outbox"
	"github.com/marchworks/stockroom/internal/observability"
	"github.com/marchworks/stockroom/internal/pkg/logging"
	"github.com/marchworks/stockroom/internal/presentation/console"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultLowStockThreshold = 5

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "stockroom")
	env := getenvDefault("ENV", "dev")
	inventoryFile := getenvDefault("INVENTORY_FILE", "inventory.json")

	baseLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	portLogger := zaplogger.Wrap(baseLogger)

	registry := prometrics.New(serviceName, "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MExternalRequests: registry.Counter(
			string(observability.MExternalRequests),
			"Calls to external collaborators (persistence, event bus).",
			"peer", "endpoint", "outcome",
		),
		observability.MLowStockAlerts: registry.Counter(
			string(observability.MLowStockAlerts),
			"Low stock alerts raised per product.",
			"product_id",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MExternalRequestDuration: registry.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of external collaborator calls in seconds.",
			prometheus.DefBuckets,
			"peer", "endpoint",
		),
	}

	tel := telemetry.New(oteltrace.New(serviceName), portLogger, counters, histograms)

	ctx := context.Background()

	bus := outbox.NewBus(portLogger)
	bus.Start(ctx)
	defer bus.Stop(ctx)

	cat := domcatalog.New()
	book := domorder.NewBook()
	store := jsonfile.New(inventoryFile)
	keys := id.NewUUIDGenerator()

	threshold := defaultLowStockThreshold
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			threshold = n
		}
	}

	catalogService := appcatalog.NewService(cat, store, keys, bus, threshold, tel)
	orderService := apporder.NewService(cat, book, catalogService, bus, threshold, tel)
	sessionService := session.NewService(user.DefaultRoster(), portLogger)

	alertWorker := alerts.New(bus, counters[observability.MLowStockAlerts])
	alertWorker.Start()

	if err := catalogService.Load(ctx); err != nil {
		baseLogger.Fatal("inventory_load_failed", zap.Error(err))
	}

	ui := console.New(os.Stdin, os.Stdout, sessionService, catalogService, orderService, baseLogger)
	if err := ui.Run(ctx); err != nil {
		baseLogger.Error("console_error", zap.Error(err))
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Command stockagent plays the stall scale: it pushes fish quantity readings
// to the FishTrace server, once or on an interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishtrace/pkg/clients/marketplace"
	"github.com/mamadbah2/fishtrace/pkg/logger"
)

type reading struct {
	Fish     string
	Quantity int
}

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", envOr("FISHTRACE_URL", "http://localhost:8080"), "FishTrace server base URL")
	deviceKey := flag.String("key", os.Getenv("DEVICE_API_KEY"), "device API key")
	vendorID := flag.String("vendor", os.Getenv("VENDOR_ID"), "vendor id the scale belongs to")
	interval := flag.Duration("interval", 0, "repeat the readings on this interval; 0 sends once")
	level := flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level")
	flag.Parse()

	log := logger.Must(logger.New(*level)).Named("stockagent")
	defer func() { _ = log.Sync() }()

	readings, err := parseReadings(flag.Args())
	if err != nil {
		log.Fatal("invalid readings", zap.Error(err))
	}
	if *vendorID == "" || *deviceKey == "" {
		log.Fatal("vendor id and device key are required")
	}

	client := marketplace.NewClient(marketplace.Config{BaseURL: *serverURL, DeviceKey: *deviceKey})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client, *vendorID, readings, *interval, log); err != nil {
		log.Fatal("stock agent failed", zap.Error(err))
	}
}

// run pushes every reading once, then again on each tick until ctx ends.
func run(ctx context.Context, client marketplace.Client, vendorID string, readings []reading, interval time.Duration, log *zap.Logger) error {
	if err := push(ctx, client, vendorID, readings, log); err != nil && interval <= 0 {
		return err
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping")
			return nil
		case <-ticker.C:
			if err := push(ctx, client, vendorID, readings, log); err != nil {
				log.Warn("push failed, retrying next tick", zap.Error(err))
			}
		}
	}
}

func push(ctx context.Context, client marketplace.Client, vendorID string, readings []reading, log *zap.Logger) error {
	var errs []error
	for _, r := range readings {
		entry, err := client.ReportQuantity(ctx, vendorID, r.Fish, r.Quantity)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Fish, err))
			continue
		}
		log.Info("reading stored", zap.String("fish", entry.Name), zap.Int("quantity", r.Quantity))
	}
	return errors.Join(errs...)
}

// parseReadings turns "Tilapia=5" arguments into readings.
func parseReadings(args []string) ([]reading, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one fish=quantity reading is required")
	}

	out := make([]reading, 0, len(args))
	for _, arg := range args {
		name, qty, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("reading %q: expected fish=quantity", arg)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("reading %q: quantity must be a non-negative integer", arg)
		}
		out = append(out, reading{Fish: name, Quantity: n})
	}
	return out, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

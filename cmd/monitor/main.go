package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/app"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
)

func main() {
	configPath := flag.String("config", "rangefinder_config.txt", "Path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config from %s: %v", *configPath, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunMonitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("monitor: %v", err)
	}
}

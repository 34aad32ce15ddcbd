package main

import (
	"flag"
	"log"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/app"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
)

func main() {
	configPath := flag.String("config", "rangefinder_config.txt", "Path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config from %s: %v", *configPath, err)
	}

	if err := app.RunWeb(); err != nil {
		log.Fatalf("web: %v", err)
	}
}

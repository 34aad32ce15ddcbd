package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Scanner GPIO
	TriggerPin    string
	EchoPin       string
	ServoPin      string
	StopButtonPin string
	ModeButtonPin string

	// Sweep geometry and timing (angles in degrees, intervals in ms)
	SweepStartAngle int
	SweepEndAngle   int
	SweepStepMS     int
	ServoSettleMS   int
	SampleCount     int
	SampleSpacingMS int

	// Calibration: baked-in coefficients, overridden by the calibration
	// file when one is present.
	CalSlope        float64
	CalOffset       float64
	CalibrationFile string

	// Report output. Empty port means stdout.
	ReportSerialPort string
	ReportBaudRate   int

	// Status display
	DisplayEnabled bool

	// Monitor ingest
	MonitorSerialPort string
	MonitorBaudRate   int

	// MQTT
	MQTTBroker          string
	MQTTClientIDMonitor string
	MQTTClientIDWeb     string
	TopicSweepFrame     string
	TopicSweepComplete  string

	// Web server
	WebServerPort int
}

// defaults mirror the reference hardware setup: HC-SR04 on GPIO23/24, servo
// on GPIO18, buttons on GPIO5/6, 30..150 degree sweep.
func defaults() *Config {
	return &Config{
		TriggerPin:    "GPIO23",
		EchoPin:       "GPIO24",
		ServoPin:      "GPIO18",
		StopButtonPin: "GPIO5",
		ModeButtonPin: "GPIO6",

		SweepStartAngle: 30,
		SweepEndAngle:   150,
		SweepStepMS:     500,
		ServoSettleMS:   10,
		SampleCount:     10,
		SampleSpacingMS: 20,

		CalSlope:        1.0,
		CalOffset:       0.0,
		CalibrationFile: "rangefinder_calibration.json",

		ReportBaudRate: 115200,

		MonitorSerialPort: "/dev/ttyUSB0",
		MonitorBaudRate:   115200,

		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDMonitor: "rangefinder-monitor",
		MQTTClientIDWeb:     "rangefinder-web",
		TopicSweepFrame:     "rangefinder/frame",
		TopicSweepComplete:  "rangefinder/sweep_complete",

		WebServerPort: 8080,
	}
}

// Package-level unexported variables for the singleton: globalConfig is only
// set through InitGlobal (sync.Once) and read through Get under the RWMutex.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file over the defaults and returns a Config.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Scanner GPIO
	case "SCANNER_TRIGGER_PIN":
		c.TriggerPin = value
	case "SCANNER_ECHO_PIN":
		c.EchoPin = value
	case "SCANNER_SERVO_PIN":
		c.ServoPin = value
	case "SCANNER_STOP_BUTTON_PIN":
		c.StopButtonPin = value
	case "SCANNER_MODE_BUTTON_PIN":
		c.ModeButtonPin = value

	// Sweep geometry and timing
	case "SWEEP_START_ANGLE":
		deg, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_START_ANGLE %q: %w", value, err)
		}
		c.SweepStartAngle = deg
	case "SWEEP_END_ANGLE":
		deg, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_END_ANGLE %q: %w", value, err)
		}
		c.SweepEndAngle = deg
	case "SWEEP_STEP_INTERVAL":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_STEP_INTERVAL %q: %w", value, err)
		}
		c.SweepStepMS = ms
	case "SERVO_SETTLE_DELAY":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERVO_SETTLE_DELAY %q: %w", value, err)
		}
		c.ServoSettleMS = ms
	case "SAMPLE_COUNT":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_COUNT %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("SAMPLE_COUNT must be >= 1, got %d", n)
		}
		c.SampleCount = n
	case "SAMPLE_SPACING":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_SPACING %q: %w", value, err)
		}
		c.SampleSpacingMS = ms

	// Calibration
	case "CAL_SLOPE":
		a, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid CAL_SLOPE %q: %w", value, err)
		}
		if a == 0 {
			return fmt.Errorf("CAL_SLOPE must be non-zero")
		}
		c.CalSlope = a
	case "CAL_OFFSET":
		b, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid CAL_OFFSET %q: %w", value, err)
		}
		c.CalOffset = b
	case "CALIBRATION_FILE":
		c.CalibrationFile = value

	// Report output
	case "REPORT_SERIAL_PORT":
		c.ReportSerialPort = value
	case "REPORT_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REPORT_BAUD_RATE %q: %w", value, err)
		}
		c.ReportBaudRate = rate

	// Status display
	case "DISPLAY_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = enabled

	// Monitor ingest
	case "MONITOR_SERIAL_PORT":
		c.MonitorSerialPort = value
	case "MONITOR_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MONITOR_BAUD_RATE %q: %w", value, err)
		}
		c.MonitorBaudRate = rate

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_SWEEP_FRAME":
		c.TopicSweepFrame = value
	case "TOPIC_SWEEP_COMPLETE":
		c.TopicSweepComplete = value

	// Web server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks cross-field constraints the per-key parsing cannot.
func (c *Config) validate() error {
	if c.SweepStartAngle < 0 || c.SweepEndAngle > 180 {
		return fmt.Errorf("sweep range %d..%d must stay within 0..180", c.SweepStartAngle, c.SweepEndAngle)
	}
	if c.SweepStartAngle >= c.SweepEndAngle {
		return fmt.Errorf("SWEEP_START_ANGLE (%d) must be below SWEEP_END_ANGLE (%d)", c.SweepStartAngle, c.SweepEndAngle)
	}
	if c.SweepStepMS <= 0 {
		return fmt.Errorf("SWEEP_STEP_INTERVAL must be > 0")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. sync.Once keeps
// this a single initialization even if called from several entry paths.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
)

// FramePayload is the JSON shape published per report line.
type FramePayload struct {
	Mode  int       `json:"mode"`
	Angle int       `json:"angle"`
	Raw   []float64 `json:"raw"`  // sentinel -1 for invalid slots
	Mean  float64   `json:"mean"` // sentinel -1 when undefined
	Valid int       `json:"valid_samples"`
	Time  string    `json:"time"`
}

// CompletePayload is published once per completed sweep.
type CompletePayload struct {
	Mode  int    `json:"mode"`
	Stops int    `json:"stops"`
	Time  string `json:"time"`
}

// closeOnDone closes c once ctx ends, unblocking any read stuck on it.
func closeOnDone(ctx context.Context, c io.Closer) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()
}

// RunMonitor reads report lines from the device's serial link, discards
// malformed ones, tracks sweep completion, and republishes everything as JSON
// over MQTT for the web view and any other consumer.
func RunMonitor(ctx context.Context) error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("monitor connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open the device serial port ----
	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.MonitorSerialPort,
		BaudRate:        uint(cfg.MonitorBaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("monitor serial port opened on %s at %d baud", cfg.MonitorSerialPort, cfg.MonitorBaudRate)

	// The read below blocks until the device sends a newline, so shutdown
	// closes the port out from under it to unblock it promptly.
	closeOnDone(ctx, port)

	reader := bufio.NewReader(port)
	coverage := scan.NewCoverage(cfg.SweepStartAngle, cfg.SweepEndAngle, scan.FullSweep)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("monitor read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		frame, err := scan.ParseFrame(line)
		if err != nil {
			// Short or garbled lines are the device booting or line noise;
			// the protocol says we just drop them.
			continue
		}

		now := time.Now()
		payload := FramePayload{
			Mode:  int(frame.Mode),
			Angle: frame.Angle,
			Raw:   frame.RawValues(),
			Mean:  frame.MeanValue(),
			Time:  now.Format(time.RFC3339),
		}
		for _, r := range frame.Raw {
			if r.Valid {
				payload.Valid++
			}
		}

		if data, err := json.Marshal(payload); err != nil {
			log.Printf("frame marshal error: %v", err)
		} else if token := client.Publish(cfg.TopicSweepFrame, 0, true, data); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (frame): %v", token.Error())
		}

		log.Printf("%s frame: mode=%s angle=%d mean=%.2f valid=%d/%d",
			now.Format(time.RFC3339), frame.Mode, frame.Angle, frame.MeanValue(),
			payload.Valid, len(frame.Raw))

		if coverage.Observe(frame) {
			stops := len(coverage.Expected())
			log.Printf("sweep complete: mode=%s, all %d stops populated", frame.Mode, stops)

			complete := CompletePayload{
				Mode:  int(frame.Mode),
				Stops: stops,
				Time:  now.Format(time.RFC3339),
			}
			if data, err := json.Marshal(complete); err != nil {
				log.Printf("completion marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicSweepComplete, 0, false, data); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (complete): %v", token.Error())
			}
			coverage.Reset()
		}
	}
}

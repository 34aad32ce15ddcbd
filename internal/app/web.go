package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
)

// RunWeb serves the live sweep view: a JSON API with the latest frame and a
// websocket stream of every frame, both fed from the monitor's MQTT topic.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu        sync.RWMutex
		lastFrame FramePayload
		haveFrame bool
	)
	hub := newWSHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to frames: keep the latest and fan out to websockets
	token := client.Subscribe(cfg.TopicSweepFrame, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f FramePayload
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}

		mu.Lock()
		lastFrame = f
		haveFrame = true
		mu.Unlock()

		hub.broadcast(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web subscribed to MQTT topic %s", cfg.TopicSweepFrame)

	// 3) JSON API endpoint: latest frame
	http.HandleFunc("/api/sweep", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveFrame {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastFrame); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) Websocket stream of frames
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

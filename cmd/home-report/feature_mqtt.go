//go:build !no_mqtt

package main

import (
	"log/slog"
	"time"

	"home-registry/internal/state"
)

// initMQTTReporter connects to the broker and waits for retained state
// messages to arrive before the report is taken.
func initMQTTReporter(cfg *Config, logger *slog.Logger) (state.Reporter, func(), error) {
	r, err := state.NewMQTTReporter(state.MQTTConfig{
		Broker:      cfg.MQTT.Broker,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		TopicPrefix: cfg.MQTT.TopicPrefix,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	settle, _ := time.ParseDuration(cfg.MQTT.Settle) // checked by validate
	time.Sleep(settle)
	return r, r.Stop, nil
}

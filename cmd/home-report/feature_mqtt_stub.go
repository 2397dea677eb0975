//go:build no_mqtt

package main

import (
	"fmt"
	"log/slog"

	"home-registry/internal/state"
)

func initMQTTReporter(_ *Config, _ *slog.Logger) (state.Reporter, func(), error) {
	return nil, nil, fmt.Errorf("built without MQTT support (no_mqtt tag)")
}

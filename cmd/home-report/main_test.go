package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"home-registry/internal/home"
	"home-registry/internal/layout"
	"home-registry/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "config.yaml", "home:\n  layout: layout.yaml\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("store.backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.State.Source != "layout" {
		t.Errorf("state.source = %q, want layout", cfg.State.Source)
	}
	if cfg.MQTT.TopicPrefix != "home/state" {
		t.Errorf("mqtt.topic_prefix = %q", cfg.MQTT.TopicPrefix)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		config string
		errSub string
	}{
		{"bad backend", "home: {layout: l.yaml}\nstore: {backend: redis}\n", "store.backend"},
		{"layout missing", "state: {source: layout}\n", "home.layout"},
		{"mqtt without broker", "state: {source: mqtt}\n", "mqtt.broker"},
		{"bad settle", "state: {source: mqtt}\nmqtt: {broker: tcp://x:1883, settle: soon}\n", "mqtt.settle"},
		{"lua without script", "state: {source: lua}\n", "state.script"},
		{"unknown source", "state: {source: zigbee}\n", "state.source"},
		{"lua over empty memory store", "state: {source: lua, script: s.lua}\n", "home.layout"},
		{"mqtt over empty memory store", "state: {source: mqtt}\nmqtt: {broker: tcp://x:1883}\n", "home.layout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, "config.yaml", tt.config))
			if err != nil {
				t.Fatal(err)
			}
			err = cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("validate = %v, want error mentioning %q", err, tt.errSub)
			}
		})
	}
}

func TestEndToEndWithLuaReporter(t *testing.T) {
	lay, err := layout.Parse([]byte("home: SmartHome\nrooms:\n  Bedroom: [Breaker]\n  Kitchen: [Fridge]\n"))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(writeFile(t, "config.yaml", "store: {backend: bolt, locked: true}\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Store.Path = filepath.Join(t.TempDir(), "home.db")
	cfg.State.Source = "lua"
	cfg.State.Script = writeFile(t, "states.lua", `
function device_state(room, device)
  if room == "Bedroom" and device == "Breaker" then return "OFF" end
  return nil
end`)

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStorage()

	logger := newLogger(cfg)
	h := home.New(homeName(cfg, lay), storage, home.WithLogger(logger))
	if _, err := lay.Apply(h); err != nil {
		t.Fatal(err)
	}

	reporter, stop, err := createReporter(cfg, lay, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	want := "Report for: SmartHome\nRoom Bedroom, has device Breaker with state - OFF\n"
	if got := h.GetReport(reporter); got != want {
		t.Errorf("report = %q, want %q", got, want)
	}
}

func TestHomeName(t *testing.T) {
	cfg := &Config{}
	if got := homeName(cfg, nil); got != "Home" {
		t.Errorf("default = %q", got)
	}
	if got := homeName(cfg, &layout.Layout{Home: "Cabin"}); got != "Cabin" {
		t.Errorf("from layout = %q", got)
	}
	cfg.Home.Name = "SmartHome"
	if got := homeName(cfg, &layout.Layout{Home: "Cabin"}); got != "SmartHome" {
		t.Errorf("from config = %q", got)
	}
}

func TestValidateAcceptsNonLayoutSources(t *testing.T) {
	for _, config := range []string{
		"home: {layout: l.yaml}\nstate: {source: lua, script: s.lua}\n",
		"store: {backend: bolt}\nstate: {source: lua, script: s.lua}\n",
		"store: {backend: bolt}\nstate: {source: mqtt}\nmqtt: {broker: tcp://x:1883}\n",
	} {
		cfg, err := loadConfig(writeFile(t, "config.yaml", config))
		if err != nil {
			t.Fatal(err)
		}
		if err := cfg.validate(); err != nil {
			t.Errorf("validate(%q) = %v", config, err)
		}
	}
}

func TestRunWritesReport(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "config.yaml", "store: {backend: bolt}\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Store.Path = filepath.Join(t.TempDir(), "home.db")
	cfg.Home.Layout = writeFile(t, "layout.yaml", `home: SmartHome
rooms:
  Bedroom: [Breaker]
states:
  Bedroom:
    - {name: Breaker, state: "ON"}
`)

	var out bytes.Buffer
	if err := run(cfg, newLogger(cfg), &out); err != nil {
		t.Fatal(err)
	}
	want := "Report for: SmartHome\nRoom Bedroom, has device Breaker with state - ON\n"
	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}
}

func TestRunReleasesStoreOnFailure(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "config.yaml", "store: {backend: bolt}\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Store.Path = filepath.Join(t.TempDir(), "home.db")
	cfg.State.Source = "lua"
	cfg.State.Script = filepath.Join(t.TempDir(), "missing.lua")

	var out bytes.Buffer
	if err := run(cfg, newLogger(cfg), &out); err == nil {
		t.Fatal("run succeeded with a missing script")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none", out.String())
	}

	// The database lock is only free if run closed the store.
	s, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	s.Close()
}

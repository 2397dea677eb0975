// Package layout loads a home description from YAML:
//
//	home: SmartHome
//	rooms:
//	  Bedroom: [Breaker, Thermometer]
//	  Kitchen: [Breaker, Fridge]
//	states:
//	  Bedroom:
//	    - {name: Breaker, state: "OFF"}
//	    - {name: Thermometer, state: "20"}
//
// Rooms seed a Home's storage; states back a static state reporter.
package layout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"home-registry/internal/home"
	"home-registry/internal/state"
	"home-registry/internal/store"
)

// Layout is the parsed layout file.
type Layout struct {
	Home   string                          `yaml:"home"`
	Rooms  map[string][]string             `yaml:"rooms"`
	States map[string][]state.StaticDevice `yaml:"states"`
}

// Load reads and parses a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}

// Parse parses layout YAML.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	for room := range l.Rooms {
		if room == "" {
			return nil, fmt.Errorf("parse layout: empty room name")
		}
	}
	return &l, nil
}

// Apply adds every room of the layout to h. Rooms h already has are left
// untouched, so applying the same layout to a persistent store twice is a
// no-op. It returns the number of rooms added.
func (l *Layout) Apply(h *home.Home) (int, error) {
	added := 0
	for name, devices := range l.Rooms {
		_, err := h.AddRoom(name, store.NewRoom(name, devices...))
		switch {
		case err == nil:
			added++
		case errors.Is(err, store.ErrAlreadyExists):
		default:
			return added, fmt.Errorf("add room %q: %w", name, err)
		}
	}
	return added, nil
}

// Provider returns a state reporter over the layout's static states.
func (l *Layout) Provider() *state.Provider {
	rooms := make(map[string][]state.DeviceItem, len(l.States))
	for room, devices := range l.States {
		items := make([]state.DeviceItem, 0, len(devices))
		for _, d := range devices {
			items = append(items, d)
		}
		rooms[room] = items
	}
	return state.NewProvider(rooms)
}

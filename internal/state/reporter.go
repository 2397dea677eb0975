// Package state answers "what state does device D in room R report".
//
// It is independent of the room/device topology kept by package store: a
// reporter may know rooms and devices the store does not, and the other way
// round.
package state

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the kind shared by every lookup failure.
	ErrNotFound = errors.New("not found")

	// ErrRoomNotFound is returned when the reporter knows nothing about a room.
	ErrRoomNotFound = fmt.Errorf("room %w", ErrNotFound)

	// ErrDeviceNotFound is returned when a room is known but the device is not.
	ErrDeviceNotFound = fmt.Errorf("device %w", ErrNotFound)
)

// Reporter resolves the current state of a device. Implementations must not
// have side effects on lookup.
type Reporter interface {
	GetDeviceState(room, device string) (string, error)
}

// DeviceItem is a device record a Provider can report on.
type DeviceItem interface {
	Name() string
	State() string
}

// Provider implements Reporter over a fixed map of room name to devices.
type Provider struct {
	rooms map[string][]DeviceItem
}

// NewProvider creates a Provider. The map is taken over by the provider.
func NewProvider(rooms map[string][]DeviceItem) *Provider {
	if rooms == nil {
		rooms = make(map[string][]DeviceItem)
	}
	return &Provider{rooms: rooms}
}

// GetDeviceState scans the room's device list by name. If the list holds the
// same name twice, the first entry wins.
func (p *Provider) GetDeviceState(room, device string) (string, error) {
	devices, ok := p.rooms[room]
	if !ok {
		return "", fmt.Errorf("%q: %w", room, ErrRoomNotFound)
	}
	for _, d := range devices {
		if d.Name() == device {
			return d.State(), nil
		}
	}
	return "", fmt.Errorf("%q in room %q: %w", device, room, ErrDeviceNotFound)
}

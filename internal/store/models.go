package store

import (
	"encoding/json"
	"slices"
	"sort"
)

// Room is a named set of unique device names.
type Room struct {
	name    string
	devices map[string]struct{}
}

// NewRoom creates a room holding the given device names. Duplicates collapse.
func NewRoom(name string, devices ...string) *Room {
	r := &Room{
		name:    name,
		devices: make(map[string]struct{}, len(devices)),
	}
	for _, d := range devices {
		r.devices[d] = struct{}{}
	}
	return r
}

func (r *Room) Name() string { return r.name }

// Devices returns the device names in the room, sorted.
func (r *Room) Devices() []string {
	names := make([]string, 0, len(r.devices))
	for d := range r.devices {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

func (r *Room) HasDevice(name string) bool {
	_, ok := r.devices[name]
	return ok
}

func (r *Room) Len() int { return len(r.devices) }

// InsertDevice adds a device name and reports whether the set changed.
func (r *Room) InsertDevice(name string) bool {
	if r.devices == nil {
		r.devices = make(map[string]struct{})
	}
	if _, ok := r.devices[name]; ok {
		return false
	}
	r.devices[name] = struct{}{}
	return true
}

// RemoveDevice deletes a device name and reports whether the set changed.
func (r *Room) RemoveDevice(name string) bool {
	if _, ok := r.devices[name]; !ok {
		return false
	}
	delete(r.devices, name)
	return true
}

// Equal reports whether both rooms carry the same name and device set.
func (r *Room) Equal(other *Room) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.name == other.name && slices.Equal(r.Devices(), other.Devices())
}

// Clone returns a deep copy that shares no state with r.
func (r *Room) Clone() *Room {
	return NewRoom(r.name, r.Devices()...)
}

// roomJSON is the on-disk form of a Room.
type roomJSON struct {
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
}

func (r *Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(roomJSON{Name: r.name, Devices: r.Devices()})
}

func (r *Room) UnmarshalJSON(data []byte) error {
	var rj roomJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	*r = *NewRoom(rj.Name, rj.Devices...)
	return nil
}

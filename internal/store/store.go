package store

import "errors"

var (
	// ErrNotFound is returned when a requested room or device does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a room or device whose name is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Storage defines the room/device persistence interface.
//
// The key a room is stored under is authoritative for its name: callers that
// join storage with other data sources should use the key, not Room.Name.
type Storage interface {
	// ListRooms returns a single-pass iterator over every stored room.
	// Storage failures are reported by the iterator's Err.
	ListRooms() *RoomIterator

	// AddRoom stores a copy of room under name and returns the stored room.
	// Returns ErrAlreadyExists without touching the existing room if name
	// is taken. Changes to the argument afterwards do not reach the store.
	AddRoom(name string, room *Room) (*Room, error)
	GetRoom(name string) (*Room, error)
	DeleteRoom(name string) error

	// Device operations. Both return ErrNotFound for a missing room.
	AddDevice(roomName, deviceName string) error
	DeleteDevice(roomName, deviceName string) error
}

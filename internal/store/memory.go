package store

import "fmt"

// MemoryStore implements Storage with a map keyed by room name.
// It is not safe for concurrent use; wrap it with Locked for that.
type MemoryStore struct {
	rooms map[string]*Room
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

// NewMemoryStoreFrom creates a store seeded with rooms. The map and the rooms
// in it are taken over by the store.
func NewMemoryStoreFrom(rooms map[string]*Room) *MemoryStore {
	if rooms == nil {
		rooms = make(map[string]*Room)
	}
	return &MemoryStore{rooms: rooms}
}

func (s *MemoryStore) ListRooms() *RoomIterator {
	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	return newRoomIterator(names, s.GetRoom)
}

func (s *MemoryStore) AddRoom(name string, room *Room) (*Room, error) {
	if _, ok := s.rooms[name]; ok {
		return nil, fmt.Errorf("room %q: %w", name, ErrAlreadyExists)
	}
	if room == nil {
		room = NewRoom(name)
	} else {
		room = room.Clone()
	}
	s.rooms[name] = room
	return room, nil
}

func (s *MemoryStore) GetRoom(name string) (*Room, error) {
	r, ok := s.rooms[name]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", name, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) DeleteRoom(name string) error {
	if _, ok := s.rooms[name]; !ok {
		return fmt.Errorf("room %q: %w", name, ErrNotFound)
	}
	delete(s.rooms, name)
	return nil
}

func (s *MemoryStore) AddDevice(roomName, deviceName string) error {
	r, ok := s.rooms[roomName]
	if !ok {
		return fmt.Errorf("room %q: %w", roomName, ErrNotFound)
	}
	if !r.InsertDevice(deviceName) {
		return fmt.Errorf("device %q in room %q: %w", deviceName, roomName, ErrAlreadyExists)
	}
	return nil
}

func (s *MemoryStore) DeleteDevice(roomName, deviceName string) error {
	r, ok := s.rooms[roomName]
	if !ok {
		return fmt.Errorf("room %q: %w", roomName, ErrNotFound)
	}
	if !r.RemoveDevice(deviceName) {
		return fmt.Errorf("device %q in room %q: %w", deviceName, roomName, ErrNotFound)
	}
	return nil
}

package store

import "sync"

// lockedStore serialises access to another Storage.
type lockedStore struct {
	mu    sync.RWMutex
	inner Storage
}

// Locked wraps s so it can be shared between goroutines. Mutations take the
// write lock. ListRooms copies every room under the read lock, so the
// returned iterator is a consistent snapshot that later mutations never
// reach. GetRoom and AddRoom return copies for the same reason.
func Locked(s Storage) Storage {
	return &lockedStore{inner: s}
}

func (l *lockedStore) ListRooms() *RoomIterator {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]*Room)
	var names []string
	it := l.inner.ListRooms()
	for {
		name, room, ok := it.Next()
		if !ok {
			break
		}
		names = append(names, name)
		snapshot[name] = room.Clone()
	}
	if err := it.Err(); err != nil {
		return failedRoomIterator(err)
	}
	return newRoomIterator(names, func(name string) (*Room, error) {
		return snapshot[name], nil
	})
}

func (l *lockedStore) AddRoom(name string, room *Room) (*Room, error) {
	if room != nil {
		room = room.Clone()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	r, err := l.inner.AddRoom(name, room)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (l *lockedStore) GetRoom(name string) (*Room, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, err := l.inner.GetRoom(name)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

func (l *lockedStore) DeleteRoom(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.DeleteRoom(name)
}

func (l *lockedStore) AddDevice(roomName, deviceName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.AddDevice(roomName, deviceName)
}

func (l *lockedStore) DeleteDevice(roomName, deviceName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.DeleteDevice(roomName, deviceName)
}

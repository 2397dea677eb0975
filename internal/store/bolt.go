package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketRooms = []byte("rooms")

// BoltStore implements Storage using BoltDB.
//
// Rooms are stored as JSON under their name. Rooms handed out by GetRoom,
// AddRoom and ListRooms are decoded copies; changes to them are not written
// back, use AddDevice/DeleteDevice instead.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates a BoltDB database.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRooms)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) ListRooms() *RoomIterator {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		if b == nil {
			return nil
		}
		names = make([]string, 0, b.Stats().KeyN)
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return failedRoomIterator(fmt.Errorf("list rooms: %w", err))
	}
	return newRoomIterator(names, s.GetRoom)
}

func (s *BoltStore) AddRoom(name string, room *Room) (*Room, error) {
	if room == nil {
		room = NewRoom(name)
	}
	data, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRooms)
		}
		if b.Get([]byte(name)) != nil {
			return fmt.Errorf("room %q: %w", name, ErrAlreadyExists)
		}
		return b.Put([]byte(name), data)
	})
	if err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

func (s *BoltStore) GetRoom(name string) (*Room, error) {
	var room Room
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRooms)
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("room %q: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *BoltStore) DeleteRoom(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRooms)
		}
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("room %q: %w", name, ErrNotFound)
		}
		return b.Delete([]byte(name))
	})
}

func (s *BoltStore) AddDevice(roomName, deviceName string) error {
	return s.updateRoom(roomName, func(r *Room) error {
		if !r.InsertDevice(deviceName) {
			return fmt.Errorf("device %q in room %q: %w", deviceName, roomName, ErrAlreadyExists)
		}
		return nil
	})
}

func (s *BoltStore) DeleteDevice(roomName, deviceName string) error {
	return s.updateRoom(roomName, func(r *Room) error {
		if !r.RemoveDevice(deviceName) {
			return fmt.Errorf("device %q in room %q: %w", deviceName, roomName, ErrNotFound)
		}
		return nil
	})
}

// updateRoom reads, modifies and saves a room in a single transaction.
// Nothing is written if fn returns an error.
func (s *BoltStore) updateRoom(name string, fn func(r *Room) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRooms)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketRooms)
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("room %q: %w", name, ErrNotFound)
		}
		var room Room
		if err := json.Unmarshal(data, &room); err != nil {
			return fmt.Errorf("decode room %q: %w", name, err)
		}
		if err := fn(&room); err != nil {
			return err
		}
		updated, err := json.Marshal(&room)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), updated)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

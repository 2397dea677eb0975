package store

import (
	"errors"
	"iter"
)

// RoomIterator walks a snapshot of room names taken when it was created and
// resolves each room lazily on Next.
//
// Rooms deleted after the snapshot are skipped. Rooms added after the
// snapshot are not observed. An iterator is single-pass and meant for one
// consumer; call ListRooms again to iterate again.
//
// A storage failure ends the iteration early; check Err once Next reports
// the end.
type RoomIterator struct {
	names []string
	pos   int
	load  func(name string) (*Room, error)
	err   error
}

// newRoomIterator creates an iterator over names. load returning an error
// matching ErrNotFound skips the name; any other error stops the iterator.
func newRoomIterator(names []string, load func(name string) (*Room, error)) *RoomIterator {
	return &RoomIterator{names: names, load: load}
}

// failedRoomIterator yields nothing and reports err.
func failedRoomIterator(err error) *RoomIterator {
	return &RoomIterator{err: err}
}

// Next returns the next room and its storage key. ok is false once every
// snapshotted name has been consumed or a storage error occurred.
func (it *RoomIterator) Next() (name string, room *Room, ok bool) {
	for it.err == nil && it.pos < len(it.names) {
		name = it.names[it.pos]
		it.pos++
		r, err := it.load(name)
		switch {
		case err == nil:
			return name, r, true
		case errors.Is(err, ErrNotFound):
		default:
			it.err = err
		}
	}
	return "", nil, false
}

// Err returns the storage error that ended the iteration, if any.
func (it *RoomIterator) Err() error { return it.err }

// Len returns the number of names in the snapshot.
func (it *RoomIterator) Len() int { return len(it.names) }

// All adapts the iterator for range-over-func. It consumes the iterator;
// check Err afterwards.
func (it *RoomIterator) All() iter.Seq2[string, *Room] {
	return func(yield func(string, *Room) bool) {
		for {
			name, room, ok := it.Next()
			if !ok || !yield(name, room) {
				return
			}
		}
	}
}

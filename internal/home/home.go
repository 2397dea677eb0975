// Package home provides the Home aggregate: a named owner of one room
// storage that can join its topology with a state reporter into a report.
//
// A Home is not safe for concurrent use unless its storage is (see
// store.Locked).
package home

import (
	"log/slog"

	"home-registry/internal/metrics"
	"home-registry/internal/store"
)

// Option configures a Home.
type Option func(*Home)

// WithLogger sets the logger skipped devices are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Home) {
		h.logger = logger
	}
}

// WithMetrics records report counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Home) {
		h.metrics = m
	}
}

// Home owns a room storage and delegates every room operation to it.
type Home struct {
	name    string
	storage store.Storage
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Home around a ready-to-use storage.
func New(name string, storage store.Storage, opts ...Option) *Home {
	h := &Home{
		name:    name,
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "home", "home", name)
	return h
}

func (h *Home) Name() string { return h.name }

func (h *Home) ListRooms() *store.RoomIterator {
	return h.storage.ListRooms()
}

func (h *Home) AddRoom(name string, room *store.Room) (*store.Room, error) {
	return h.storage.AddRoom(name, room)
}

func (h *Home) GetRoom(name string) (*store.Room, error) {
	return h.storage.GetRoom(name)
}

func (h *Home) DeleteRoom(name string) error {
	return h.storage.DeleteRoom(name)
}

func (h *Home) AddDevice(roomName, deviceName string) error {
	return h.storage.AddDevice(roomName, deviceName)
}

func (h *Home) DeleteDevice(roomName, deviceName string) error {
	return h.storage.DeleteDevice(roomName, deviceName)
}

//go:build !no_mqtt

package state

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig holds MQTT reporter configuration.
type MQTTConfig struct {
	Broker      string
	Username    string
	Password    string
	ClientID    string
	TopicPrefix string
}

// MQTTReporter implements Reporter from device state messages published on
// <prefix>/<room>/<device>. The latest payload per topic is the device state;
// an empty retained payload clears it.
type MQTTReporter struct {
	client pahomqtt.Client
	prefix string
	logger *slog.Logger

	mu     sync.RWMutex
	states map[string]map[string]string // room -> device -> state
}

// NewMQTTReporter creates a reporter and connects it to the broker.
func NewMQTTReporter(cfg MQTTConfig, logger *slog.Logger) (*MQTTReporter, error) {
	r := newMQTTReporter(cfg.TopicPrefix, logger)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "home-registry"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			r.logger.Info("MQTT connected")
			r.subscribe(c)
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			r.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	r.client = client
	return r, nil
}

func newMQTTReporter(prefix string, logger *slog.Logger) *MQTTReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTReporter{
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger.With("component", "mqtt"),
		states: make(map[string]map[string]string),
	}
}

func (r *MQTTReporter) subscribe(c pahomqtt.Client) {
	topic := r.prefix + "/+/+"
	token := c.Subscribe(topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		r.handleMessage(msg.Topic(), msg.Payload())
	})
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			r.logger.Error("MQTT subscribe failed", "topic", topic, "err", err)
			return
		}
		r.logger.Info("MQTT subscribed", "topic", topic)
	}()
}

func (r *MQTTReporter) handleMessage(topic string, payload []byte) {
	rest, ok := strings.CutPrefix(topic, r.prefix+"/")
	if !ok {
		return
	}
	room, device, ok := strings.Cut(rest, "/")
	if !ok || room == "" || device == "" || strings.Contains(device, "/") {
		r.logger.Debug("ignoring state topic", "topic", topic)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(payload) == 0 {
		delete(r.states[room], device)
		if len(r.states[room]) == 0 {
			delete(r.states, room)
		}
		return
	}

	devices, ok := r.states[room]
	if !ok {
		devices = make(map[string]string)
		r.states[room] = devices
	}
	devices[device] = strings.TrimSpace(string(payload))
}

func (r *MQTTReporter) GetDeviceState(room, device string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices, ok := r.states[room]
	if !ok {
		return "", fmt.Errorf("%q: %w", room, ErrRoomNotFound)
	}
	st, ok := devices[device]
	if !ok {
		return "", fmt.Errorf("%q in room %q: %w", device, room, ErrDeviceNotFound)
	}
	return st, nil
}

// Stop disconnects from the broker.
func (r *MQTTReporter) Stop() {
	if r.client != nil {
		r.client.Disconnect(1000)
	}
	r.logger.Info("MQTT reporter stopped")
}

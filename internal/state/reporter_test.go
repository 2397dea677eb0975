package state

import (
	"errors"
	"testing"
)

func TestProviderGetDeviceState(t *testing.T) {
	p := NewProvider(map[string][]DeviceItem{
		"Bedroom": {
			Breaker{DeviceName: "Breaker", Position: "OFF"},
			Thermometer{DeviceName: "Thermometer", Celsius: 20},
		},
	})

	got, err := p.GetDeviceState("Bedroom", "Breaker")
	if err != nil {
		t.Fatal(err)
	}
	if got != "OFF" {
		t.Errorf("breaker = %q, want %q", got, "OFF")
	}

	got, err = p.GetDeviceState("Bedroom", "Thermometer")
	if err != nil {
		t.Fatal(err)
	}
	if got != "20" {
		t.Errorf("thermometer = %q, want %q", got, "20")
	}
}

func TestProviderNotFound(t *testing.T) {
	p := NewProvider(map[string][]DeviceItem{
		"Bedroom": {Breaker{DeviceName: "Breaker", Position: "ON"}},
	})

	_, err := p.GetDeviceState("Kitchen", "Breaker")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("missing room: err = %v, want ErrRoomNotFound", err)
	}
	if errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("missing room: err = %v must not match ErrDeviceNotFound", err)
	}

	_, err = p.GetDeviceState("Bedroom", "Fridge")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("missing device: err = %v, want ErrDeviceNotFound", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing device: err = %v, want ErrNotFound kind", err)
	}
}

func TestProviderFirstMatchWins(t *testing.T) {
	p := NewProvider(map[string][]DeviceItem{
		"Hall": {
			StaticDevice{DeviceName: "Lamp", DeviceState: "ON"},
			StaticDevice{DeviceName: "Lamp", DeviceState: "OFF"},
		},
	})

	got, err := p.GetDeviceState("Hall", "Lamp")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ON" {
		t.Errorf("state = %q, want %q", got, "ON")
	}
}

func TestNilProvider(t *testing.T) {
	p := NewProvider(nil)
	if _, err := p.GetDeviceState("Hall", "Lamp"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestDeviceRecords(t *testing.T) {
	tests := []struct {
		item      DeviceItem
		wantName  string
		wantState string
	}{
		{Breaker{DeviceName: "Breaker", Position: "OFF"}, "Breaker", "OFF"},
		{Thermometer{DeviceName: "Thermometer", Celsius: -5}, "Thermometer", "-5"},
		{StaticDevice{DeviceName: "Fridge", DeviceState: "cooling"}, "Fridge", "cooling"},
	}
	for _, tt := range tests {
		if tt.item.Name() != tt.wantName {
			t.Errorf("name = %q, want %q", tt.item.Name(), tt.wantName)
		}
		if tt.item.State() != tt.wantState {
			t.Errorf("%s state = %q, want %q", tt.wantName, tt.item.State(), tt.wantState)
		}
	}
}

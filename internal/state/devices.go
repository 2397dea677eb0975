package state

import "strconv"

// Breaker is an on/off switch. State is reported verbatim, e.g. "ON" or "OFF".
type Breaker struct {
	DeviceName string
	Position   string
}

func (b Breaker) Name() string  { return b.DeviceName }
func (b Breaker) State() string { return b.Position }

// Thermometer reports a whole-degree Celsius reading.
type Thermometer struct {
	DeviceName string
	Celsius    int
}

func (t Thermometer) Name() string  { return t.DeviceName }
func (t Thermometer) State() string { return strconv.Itoa(t.Celsius) }

// StaticDevice carries a fixed state string, as loaded from a layout file.
type StaticDevice struct {
	DeviceName  string `yaml:"name"`
	DeviceState string `yaml:"state"`
}

func (s StaticDevice) Name() string  { return s.DeviceName }
func (s StaticDevice) State() string { return s.DeviceState }

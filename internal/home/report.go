package home

import (
	"fmt"
	"strings"

	"home-registry/internal/state"
)

// Result is the outcome of resolving one device during report generation.
// Err is nil when State holds the reported state.
type Result struct {
	Room   string
	Device string
	State  string
	Err    error
}

// Report is the join of a Home's topology with a reporter's device states.
// Err is set when storage failed while listing rooms; Results then hold only
// what was visited before the failure.
type Report struct {
	Home    string
	Results []Result
	Err     error
}

// lineEscaper keeps every rendered value on its own report line.
var lineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Resolved returns the results that produced a state, in visiting order.
func (r *Report) Resolved() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res)
		}
	}
	return out
}

// Skipped returns the results whose state lookup failed, in visiting order.
func (r *Report) Skipped() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// String renders the report text: a header line followed by one line per
// resolved device. Skipped devices do not appear. Line breaks inside room
// names, device names and states are written as \n and \r escapes.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report for: %s\n", lineEscaper.Replace(r.Home))
	for _, res := range r.Results {
		if res.Err != nil {
			continue
		}
		fmt.Fprintf(&b, "Room %s, has device %s with state - %s\n",
			lineEscaper.Replace(res.Room), lineEscaper.Replace(res.Device), lineEscaper.Replace(res.State))
	}
	return b.String()
}

// Collect walks every room and device in storage and asks reporter for each
// device's state. Lookup failures are recorded in the result and never stop
// the walk. The storage key is used as the room name for both the lookup and
// the result. A storage failure ends the walk and is recorded in Report.Err.
func (h *Home) Collect(reporter state.Reporter) *Report {
	rep := &Report{Home: h.name}
	it := h.storage.ListRooms()
	for {
		roomName, room, ok := it.Next()
		if !ok {
			break
		}
		for _, device := range room.Devices() {
			st, err := reporter.GetDeviceState(roomName, device)
			rep.Results = append(rep.Results, Result{
				Room:   roomName,
				Device: device,
				State:  st,
				Err:    err,
			})
		}
	}
	rep.Err = it.Err()
	return rep
}

// GetReport renders the report text. Devices whose state cannot be resolved
// are logged and left out. A storage failure is logged and the rooms read
// before it are still reported.
func (h *Home) GetReport(reporter state.Reporter) string {
	rep := h.Collect(reporter)
	if rep.Err != nil {
		h.logger.Error("failed list rooms", "err", rep.Err)
	}

	skipped := rep.Skipped()
	for _, res := range skipped {
		h.logger.Warn("failed get device state", "room", res.Room, "device", res.Device, "err", res.Err)
	}
	h.metrics.ObserveReport(h.name, len(rep.Results)-len(skipped), len(skipped))

	return rep.String()
}

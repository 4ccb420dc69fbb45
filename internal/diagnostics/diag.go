package diagnostics

import "github.com/coreman2200/ic60led/internal/led"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromStats explains controller counters. Healthy counters yield nothing.
func FromStats(st led.Stats) []Diagnostic {
	var out []Diagnostic
	if st.BusErrors > 0 {
		d := Diagnostic{
			Severity: Warn,
			Code:     "BUS.ERROR",
			Summary:  "LED chip transactions failed",
			Detail:   "The display may lag the keyboard state until the next successful update.",
			LikelyCauses: []string{
				"chip held in hardware shutdown",
				"wrong bus or address",
				"loose SDA/SCL wiring",
			},
			SuggestedFixes: []string{
				"check the enable pin configuration",
				"scan the bus for a device at 0x74",
			},
			Evidence: map[string]any{"bus_errors": st.BusErrors, "applied": st.Applied},
		}
		if st.Applied > 0 && st.BusErrors >= st.Applied {
			d.Severity = Err
			d.Summary = "LED chip is not responding"
		}
		out = append(out, d)
	}
	if st.Dropped > 0 {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "QUEUE.DROP",
			Summary:  "LED commands were dropped while the queue was full",
			Detail:   "The next accepted command restores the full state.",
			Evidence: map[string]any{"dropped": st.Dropped, "enqueued": st.Enqueued},
		})
	}
	return out
}

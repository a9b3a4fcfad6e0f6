package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"go-lift-simulator/pkg/elevator"
)

// WriteJSONL writes one JSON object per frame.
func WriteJSONL(w io.Writer, t *Transcript) error {
	enc := json.NewEncoder(w)
	for _, f := range t.Frames {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// WriteText writes a human readable table of the frames.
func WriteText(w io.Writer, t *Transcript) error {
	if _, err := fmt.Fprintf(w, "# %s (run %s)\n", t.Name, t.RunID); err != nil {
		return err
	}
	for _, f := range t.Frames {
		if _, err := fmt.Fprintln(w, FormatFrame(f)); err != nil {
			return err
		}
	}
	return nil
}

// FormatFrame renders one frame on a single line.
func FormatFrame(f Frame) string {
	line := fmt.Sprintf("%3d %-7s %-9s %s", f.Step, f.Op, f.Action, FormatState(f.State))
	if f.Error != "" {
		line += "  ! " + f.Error
	}
	return line
}

// FormatState renders a snapshot as "floor 3 [open] -> Call 5 Up  window 1-5".
func FormatState(s elevator.Snapshot) string {
	doors := "closed"
	if s.DoorsOpen {
		doors = "open"
	}
	pending := "idle"
	if d := s.Pending; d != nil {
		pending = fmt.Sprintf("-> %s %d", d.Origin, d.Floor)
		if d.Direction != "" {
			pending += " " + string(d.Direction)
		}
	}
	return fmt.Sprintf("floor %2d [%-6s] %-16s window %d-%d", s.Floor, doors, pending, s.WindowMin, s.WindowMax)
}

package convert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"brickforge.dev/internal/machine"
)

// Emitter renders the primitive stream as script text. Position axes use 3
// decimals, the payload marker 4, feeds and dwell times are integers. Output
// is byte-identical across runs for the same input when the clock is pinned;
// only the one generated-on header line consumes it.
type Emitter struct {
	cfg *machine.Config
	now func() time.Time
}

func NewEmitter(cfg *machine.Config, now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	return &Emitter{cfg: cfg, now: now}
}

func (e *Emitter) Emit(rep *Report, prims []Primitive) string {
	var b strings.Builder

	for _, line := range e.header(rep) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i, p := range prims {
		b.WriteString(e.render(p))
		if i < len(prims)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (e *Emitter) header(rep *Report) []string {
	cfg := e.cfg
	ts := e.now().UTC().Format("2006-01-02 at 15:04:05 UTC")

	counts := make([]string, 0, len(rep.ByColor))
	colors := make([]string, 0, len(rep.ByColor))
	for color := range rep.ByColor {
		colors = append(colors, color)
	}
	sort.Strings(colors)
	for _, color := range colors {
		counts = append(counts, fmt.Sprintf("%d %s", rep.ByColor[color], color))
	}

	lines := []string{
		fmt.Sprintf("; generated by brickforge on %s", ts),
		"; prusaslicer:gcode_flavor = marlin2",
		"; prusaslicer:printer_model = MK3S",
		fmt.Sprintf("; layer_count = %d", rep.Rows),
		"; ============================================================",
		fmt.Sprintf("; Structure  : %d wide x %d deep x %d tall", rep.Cols, rep.Depths, rep.Rows),
		fmt.Sprintf("; Bricks     : %d total (%s)", rep.Total, strings.Join(counts, ", ")),
		fmt.Sprintf("; Origin     : X=%.1f  Y=%.1f  Z=%.1f", cfg.OriginX, cfg.OriginY, cfg.OriginZ),
	}

	names := make([]string, 0, len(cfg.Stations))
	for name := range cfg.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := cfg.Stations[name]
		lines = append(lines, fmt.Sprintf("; Station %-6s : X=%g  Y=%g  Z=%g", name, st.X, st.Y, st.GrabZ))
	}

	lines = append(lines,
		"; ============================================================",
		"",
	)
	return lines
}

func (e *Emitter) render(p Primitive) string {
	switch v := p.(type) {
	case Raw:
		return v.Text
	case Dwell:
		if v.Comment == "" {
			return fmt.Sprintf("G4 P%d", v.Millis)
		}
		return fmt.Sprintf("G4 P%d  ; %s", v.Millis, v.Comment)
	case Move:
		// A payload-marked or slower-than-approach move is a working move.
		cmd := "G0"
		if v.E != nil || (v.Feed > 0 && v.Feed < e.cfg.FeedApproach) {
			cmd = "G1"
		}
		parts := []string{cmd}
		if v.X != nil {
			parts = append(parts, fmt.Sprintf("X%.3f", *v.X))
		}
		if v.Y != nil {
			parts = append(parts, fmt.Sprintf("Y%.3f", *v.Y))
		}
		if v.Z != nil {
			parts = append(parts, fmt.Sprintf("Z%.3f", *v.Z))
		}
		if v.E != nil {
			parts = append(parts, fmt.Sprintf("E%.4f", *v.E))
		}
		if v.Feed > 0 {
			parts = append(parts, fmt.Sprintf("F%d", v.Feed))
		}
		if v.Comment != "" {
			parts = append(parts, "; "+v.Comment)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

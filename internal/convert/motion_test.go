package convert

import (
	"strings"
	"testing"

	"brickforge.dev/internal/machine"
)

func compileScript(t *testing.T, cfg machine.Config, units []Unit, layers int) string {
	t.Helper()
	prims := NewCompiler(&cfg).Compile(units, layers)
	e := NewEmitter(&cfg, fixedNow)
	var lines []string
	for _, p := range prims {
		lines = append(lines, e.render(p))
	}
	return strings.Join(lines, "\n")
}

func TestCompile_CycleOrder(t *testing.T) {
	cfg := machine.Default()
	m := NewMapper(&cfg)
	units := []Unit{m.Unit(Cell{Col: 2, Row: 0, Depth: 1, Color: "RED"})}

	script := compileScript(t, cfg, units, 1)

	// The per-unit sub-sequence is fixed; only parameters vary.
	ordered := []string{
		"move over RED dispenser",
		"descend to grab height",
		"let brick seat in socket",
		"rise with brick",
		"position over col=2 depth=1 row=0",
		"slow approach",
		"push brick onto studs",
		"ensure engagement",
		"retract to travel height",
	}
	pos := 0
	for _, want := range ordered {
		i := strings.Index(script[pos:], want)
		if i < 0 {
			t.Fatalf("cycle step missing or out of order: %q\n%s", want, script)
		}
		pos += i
	}
}

func TestCompile_FeedSelectionPerPhase(t *testing.T) {
	cfg := machine.Default()
	m := NewMapper(&cfg)
	units := []Unit{m.Unit(Cell{Col: 0, Row: 0, Depth: 0, Color: "RED"})}

	script := compileScript(t, cfg, units, 1)

	phases := []struct {
		marker string
		feed   string
	}{
		{"move over RED dispenser", "F20000"},  // empty travel
		{"descend to grab height", "F4000"},    // approach feed
		{"rise with brick", "F12000"},          // loaded
		{"position over", "F12000"},            // loaded
		{"slow approach", "F4000"},             // approach feed
		{"push brick onto studs", "F500"},      // slowest
		{"retract to travel height", "F20000"}, // empty again
	}
	for _, p := range phases {
		line := lineContaining(script, p.marker)
		if line == "" {
			t.Fatalf("no line for %q", p.marker)
		}
		if !strings.Contains(line, p.feed) {
			t.Fatalf("%q: want %s in %q", p.marker, p.feed, line)
		}
	}
}

func TestCompile_StationRouting(t *testing.T) {
	cfg := machine.DefaultWall()
	m := NewMapper(&cfg)
	units := []Unit{
		m.Unit(Cell{Col: 0, Row: 0, Depth: 0, Color: "RED"}),
		m.Unit(Cell{Col: 1, Row: 0, Depth: 0, Color: "YELLOW"}),
	}

	script := compileScript(t, cfg, units, 1)

	red := lineContaining(script, "move over RED dispenser")
	if !strings.Contains(red, "X0.000 Y0.000") {
		t.Fatalf("RED station coords: %q", red)
	}
	yellow := lineContaining(script, "move over YELLOW dispenser")
	if !strings.Contains(yellow, "X30.000 Y0.000") {
		t.Fatalf("YELLOW station coords: %q", yellow)
	}
}

func TestCompile_TeardownClampsToMaxZ(t *testing.T) {
	cfg := machine.Default()
	cfg.SafeZ = 205
	cfg.MaxZ = 210
	cfg.ClearRise = 10 // would overshoot without the clamp
	m := NewMapper(&cfg)
	units := []Unit{m.Unit(Cell{Col: 0, Row: 0, Depth: 0, Color: "RED"})}

	script := compileScript(t, cfg, units, 1)

	line := lineContaining(script, "raise nozzle clear of structure")
	if !strings.Contains(line, "Z210.000") {
		t.Fatalf("final rise must clamp to max z: %q", line)
	}
}

func TestCompile_LayerMarkerContent(t *testing.T) {
	cfg := machine.Default()
	m := NewMapper(&cfg)
	units := []Unit{
		m.Unit(Cell{Col: 0, Row: 1, Depth: 0, Color: "RED"}),
	}

	script := compileScript(t, cfg, units, 4)

	if !strings.Contains(script, ";Z:9.600") {
		t.Fatalf("layer marker Z missing:\n%s", script)
	}
	if !strings.Contains(script, ";HEIGHT:9.600") {
		t.Fatalf("layer marker height missing:\n%s", script)
	}
	if !strings.Contains(script, "; --- Layer 2/4 ---") {
		t.Fatalf("layer banner missing:\n%s", script)
	}
}

func lineContaining(s, substr string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

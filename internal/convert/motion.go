package convert

import (
	"fmt"
	"math"

	"brickforge.dev/internal/machine"
)

// Primitive is one atomic step of the compiled command stream. The emitter
// renders each variant as exactly one script line.
type Primitive interface {
	primitive()
}

// Move is an axis motion. Nil fields are omitted from the rendered command.
// E carries the payload marker on loaded travel moves.
type Move struct {
	X, Y, Z *float64
	E       *float64
	Feed    int
	Comment string
}

// Dwell pauses for a fixed duration.
type Dwell struct {
	Millis  int
	Comment string
}

// Raw is a verbatim line: bare commands with non-positional fields, marker
// comments, blank separators.
type Raw struct {
	Text string
}

func (Move) primitive()  {}
func (Dwell) primitive() {}
func (Raw) primitive()   {}

func f(v float64) *float64 { return &v }

// Compiler expands the ordered unit list into the full primitive stream:
// a setup block, one fixed pick/place cycle per unit with layer and progress
// bookkeeping, and a teardown block.
//
// The compiler performs no reachability or collision checks; geometry
// outside the physical envelope is a configuration error the operator sees
// on the machine, not here.
type Compiler struct {
	cfg *machine.Config
}

func NewCompiler(cfg *machine.Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// payloadMark is the incremental extruder value attached to loaded travel
// moves so downstream viewers can tell carry moves from empty travel.
const payloadMark = 0.05

func (c *Compiler) Compile(units []Unit, layers int) []Primitive {
	cfg := c.cfg
	total := len(units)
	out := make([]Primitive, 0, total*20+32)

	out = append(out, c.setup()...)

	currentRow := math.MinInt
	for idx, u := range units {
		if u.Row != currentRow {
			currentRow = u.Row
			out = append(out,
				Raw{";LAYER_CHANGE"},
				Raw{fmt.Sprintf(";Z:%.3f", u.PlaceZ)},
				Raw{fmt.Sprintf(";HEIGHT:%.3f", cfg.RowPitch)},
				Raw{fmt.Sprintf("; --- Layer %d/%d ---", u.Row+1, layers)},
			)
		}

		pct := int(math.Round(float64(idx) / float64(total) * 100))
		out = append(out,
			Raw{fmt.Sprintf("M73 P%d R0 Q%d S0  ; progress %d%%", pct, pct, pct)},
			Raw{fmt.Sprintf("; -- Brick %4d/%d  [%-6s]  col=%d  depth=%d  row=%d  ->  X=%.1f  Y=%.1f  Z=%.1f --",
				idx+1, total, u.Color, u.Col, u.Depth, u.Row, u.X, u.Y, u.PlaceZ)},
		)

		st := cfg.Stations[u.Color]

		// Pick up from the color's dispenser.
		out = append(out,
			Raw{fmt.Sprintf(";    [pick-up %s]", u.Color)},
			Raw{";TYPE:Travel"},
			Move{X: f(st.X), Y: f(st.Y), Feed: cfg.FeedTravel,
				Comment: fmt.Sprintf("move over %s dispenser", u.Color)},
			Move{Z: f(st.GrabZ), Feed: cfg.FeedApproach,
				Comment: "descend to grab height"},
			Dwell{Millis: cfg.PickDwellMs, Comment: "dwell - let brick seat in socket"},
			Move{Z: f(cfg.SafeZ), Feed: cfg.FeedCarry, Comment: "rise with brick"},
			Raw{""},
		)

		// Carry to the target column.
		out = append(out,
			Raw{";    [travel to brick]"},
			Raw{";TYPE:Custom"},
			Move{X: f(u.X), Y: f(u.Y), E: f(payloadMark), Feed: cfg.FeedCarry,
				Comment: fmt.Sprintf("position over col=%d depth=%d row=%d", u.Col, u.Depth, u.Row)},
			Raw{"G92 E0   ; reset E after travel mark"},
			Raw{""},
		)

		// Slow approach, force-limited push, settle, retract.
		out = append(out,
			Raw{";    [place]"},
			Raw{";TYPE:Travel"},
			Move{Z: f(u.ApproachZ), Feed: cfg.FeedApproach,
				Comment: fmt.Sprintf("slow approach (%.0f mm above target)", cfg.ApproachClearance)},
			Move{Z: f(u.PlaceZ), Feed: cfg.FeedPush, Comment: "push brick onto studs"},
			Dwell{Millis: cfg.SettleDwellMs, Comment: fmt.Sprintf("dwell %d ms - ensure engagement", cfg.SettleDwellMs)},
			Raw{";TYPE:Travel"},
			Move{Z: f(cfg.SafeZ), Feed: cfg.FeedTravel, Comment: "retract to travel height"},
			Raw{""},
		)
	}

	out = append(out, c.teardown()...)
	return out
}

// setup homes XY, declares the parked nozzle position as the Z datum (the
// machine has no absolute Z reference), lifts the software endstop clamp so
// an intentionally negative Z is accepted, and rises to travel height.
func (c *Compiler) setup() []Primitive {
	cfg := c.cfg
	out := []Primitive{
		Raw{"M73 P0 R0 Q0 S0        ; progress: 0%"},
		Raw{"M201 X1000 Y1000 Z200  ; max accelerations [mm/s^2]"},
		Raw{"M203 X200 Y200 Z12     ; max feedrates [mm/s]"},
		Raw{"M204 P1250 T1250       ; print / travel acceleration [mm/s^2]"},
		Raw{"M205 X8.00 Y8.00 Z0.40 ; jerk limits [mm/s]"},
		Raw{"G21                    ; units: millimetres"},
		Raw{"G90                    ; absolute positioning"},
		Raw{"G28 X Y                ; home X and Y"},
	}
	if cfg.HomeOffsetX != 0 || cfg.HomeOffsetY != 0 {
		out = append(out, Raw{fmt.Sprintf("G92 X%g Y%g           ; offset origin to working zero", cfg.HomeOffsetX, cfg.HomeOffsetY)})
	}
	out = append(out,
		Raw{fmt.Sprintf("G92 Z%g               ; declare current Z (manually parked before run)", cfg.ZDatum)},
		Raw{"M211 S0                ; disable software endstops - allow negative Z"},
		Raw{"M83                    ; relative extruder mode"},
		Raw{"G92 E0                 ; reset extruder position"},
		Raw{""},
		Move{Z: f(cfg.SafeZ), Feed: cfg.FeedTravel, Comment: "raise to safe travel height"},
		Raw{";TYPE:Travel"},
		Raw{""},
	)
	return out
}

// teardown rises clear of the build (clamped to the machine's reach),
// restores the endstop clamp, and drops holding torque.
func (c *Compiler) teardown() []Primitive {
	cfg := c.cfg
	finalZ := cfg.SafeZ + cfg.ClearRise
	if finalZ > cfg.MaxZ {
		finalZ = cfg.MaxZ
	}
	return []Primitive{
		Raw{"M73 P100 R0 Q100 S0  ; progress: 100%"},
		Raw{""},
		Raw{"; -- All bricks placed ------------------------------------"},
		Raw{";TYPE:Travel"},
		Move{Z: f(finalZ), Feed: cfg.FeedPark, Comment: "raise nozzle clear of structure"},
		Raw{"M211 S1      ; re-enable software endstops"},
		Raw{"M84          ; disable steppers"},
		Raw{""},
	}
}

package convert

import (
	"testing"

	"brickforge.dev/internal/machine"
)

func TestMapper_Affine(t *testing.T) {
	cfg := machine.Default() // origin (64,32,0), pitches (16,9.6,8)
	m := NewMapper(&cfg)

	u := m.Unit(Cell{Col: 3, Row: 2, Depth: 1, Color: "RED"})
	if u.X != 64.0+3*16.0 {
		t.Fatalf("X: got %v", u.X)
	}
	if u.Y != 32.0+1*8.0 {
		t.Fatalf("Y: got %v", u.Y)
	}
	if u.PlaceZ != 2*9.6 {
		t.Fatalf("PlaceZ: got %v", u.PlaceZ)
	}
	if u.ApproachZ != u.PlaceZ+cfg.ApproachClearance {
		t.Fatalf("ApproachZ: got %v", u.ApproachZ)
	}
}

func TestMapper_NozzleGeometry(t *testing.T) {
	cfg := machine.DefaultWall() // nozzle drop 20, push extra 1.5, origin z 5
	m := NewMapper(&cfg)

	// Row 0: brick bottom at origin Z, nozzle 20 above, pushed 1.5 below.
	if got, want := m.PlaceZ(0), 5.0+20.0-1.5; got != want {
		t.Fatalf("row 0 place z: got %v want %v", got, want)
	}
	if got, want := m.PlaceZ(3), 5.0+3*9.6+20.0-1.5; got != want {
		t.Fatalf("row 3 place z: got %v want %v", got, want)
	}
}

func TestMapper_CollapsedDepth(t *testing.T) {
	cfg := machine.DefaultWall() // depth pitch zero
	m := NewMapper(&cfg)
	if m.Y(0) != m.Y(7) {
		t.Fatalf("depth must collapse onto origin Y when pitch is zero")
	}
	if m.Y(0) != cfg.OriginY {
		t.Fatalf("collapsed Y: got %v want %v", m.Y(0), cfg.OriginY)
	}
}

func TestMapper_ClearanceSignIndependentOfRowPitch(t *testing.T) {
	// The push is always downward; the approach offset keeps its sign when
	// the row convention flips to top-down.
	for _, pitch := range []float64{9.6, -9.6} {
		cfg := machine.Default()
		cfg.RowPitch = pitch
		m := NewMapper(&cfg)
		for _, row := range []int{0, 1, 5} {
			if diff := m.ApproachZ(row) - m.PlaceZ(row); diff != cfg.ApproachClearance {
				t.Fatalf("pitch %v row %d: approach-place = %v, want %v", pitch, row, diff, cfg.ApproachClearance)
			}
		}
	}
}

func TestMapper_NegativeRowPitchBuildsDownward(t *testing.T) {
	cfg := machine.Default()
	cfg.RowPitch = -9.6
	cfg.OriginZ = 96.0
	m := NewMapper(&cfg)
	if m.PlaceZ(1) >= m.PlaceZ(0) {
		t.Fatalf("negative pitch must lower Z per row: row0=%v row1=%v", m.PlaceZ(0), m.PlaceZ(1))
	}
}

package convert

import (
	"testing"

	"brickforge.dev/internal/machine"
	"brickforge.dev/internal/structure"
)

func wallStructure(blocks []structure.Block, palette ...string) *structure.Structure {
	return &structure.Structure{
		Size:    [3]int{4, 4, 2},
		Palette: palette,
		Blocks:  blocks,
	}
}

func TestClassifier_FiltersAir(t *testing.T) {
	cfg := machine.Default()
	cl := NewClassifier(&cfg, machine.DefaultColorMap())

	st := wallStructure([]structure.Block{
		{Pos: [3]int{0, 0, 0}, State: 0},
		{Pos: [3]int{1, 0, 0}, State: 1},
		{Pos: [3]int{2, 0, 0}, State: 2},
	}, "minecraft:air", "minecraft:red_wool", "minecraft:cave_air")

	cells, err := cl.Cells(st)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("want 1 cell, got %d", len(cells))
	}
	if cells[0].Color != "RED" || cells[0].Col != 1 {
		t.Fatalf("got %+v", cells[0])
	}
	if len(cl.Unmapped()) != 0 {
		t.Fatalf("air must not count as unmapped: %v", cl.Unmapped())
	}
}

func TestClassifier_DepthSlice(t *testing.T) {
	cfg := machine.DefaultWall() // slice 0
	cl := NewClassifier(&cfg, machine.DefaultColorMap())

	st := wallStructure([]structure.Block{
		{Pos: [3]int{0, 0, 0}, State: 0},
		{Pos: [3]int{0, 1, 1}, State: 0}, // depth 1, outside the slice
	}, "minecraft:red_wool")

	cells, err := cl.Cells(st)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 1 || cells[0].Row != 0 {
		t.Fatalf("slice filter: got %+v", cells)
	}
}

func TestClassifier_UnmappedOncePerName(t *testing.T) {
	cfg := machine.DefaultWall()
	cm := machine.DefaultColorMap()
	cl := NewClassifier(&cfg, cm)

	st := wallStructure([]structure.Block{
		{Pos: [3]int{0, 0, 0}, State: 0},
		{Pos: [3]int{1, 0, 0}, State: 0},
		{Pos: [3]int{2, 0, 0}, State: 0},
		{Pos: [3]int{3, 0, 0}, State: 1},
	}, "minecraft:diamond_block", "minecraft:emerald_block")

	cells, err := cl.Cells(st)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	// Unknown blocks are still placed, with the default color.
	if len(cells) != 4 {
		t.Fatalf("want 4 cells, got %d", len(cells))
	}
	for _, c := range cells {
		if c.Color != cm.Default {
			t.Fatalf("fallback color: got %+v", c)
		}
	}
	un := cl.Unmapped()
	if len(un) != 2 {
		t.Fatalf("want 2 distinct unmapped names, got %v", un)
	}
	if un[0] != "minecraft:diamond_block" || un[1] != "minecraft:emerald_block" {
		t.Fatalf("unmapped must be sorted: %v", un)
	}
}

func TestClassifier_AxisRemap(t *testing.T) {
	// Structure axis 2 as column, axis 0 as row.
	cfg := machine.Default()
	cfg.ColAxis = 2
	cfg.RowAxis = 0
	cfg.DepthAxis = 1
	cl := NewClassifier(&cfg, machine.MonoColorMap("RED"))

	st := wallStructure([]structure.Block{
		{Pos: [3]int{5, 6, 7}, State: 0},
	}, "minecraft:stone")

	cells, err := cl.Cells(st)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	c := cells[0]
	if c.Col != 7 || c.Row != 5 || c.Depth != 6 {
		t.Fatalf("axis remap: got %+v", c)
	}
}

func TestClassifier_BadPalette(t *testing.T) {
	cfg := machine.Default()
	cl := NewClassifier(&cfg, machine.DefaultColorMap())
	st := wallStructure([]structure.Block{{Pos: [3]int{0, 0, 0}, State: 9}}, "minecraft:stone")
	if _, err := cl.Cells(st); err == nil {
		t.Fatalf("want error for out-of-range palette index")
	}
}

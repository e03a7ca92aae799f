package convert

import (
	"sort"

	"brickforge.dev/internal/machine"
)

// Sequence deduplicates classified cells and orders them into the total
// placement sequence: row ascending (supporting layers before supported
// ones), then depth front-to-back where depth is physical, then column
// left-to-right.
//
// Dedup is first-wins in cell order, which is the structure file's block
// order. When depth pitch is zero every depth lands on the same physical
// spot, so the key collapses to (col,row); the format does not promise a
// particular block order, so which duplicate survives a depth merge is
// whatever the producer wrote first. No secondary sort is applied before
// dedup.
func Sequence(cells []Cell, cfg *machine.Config) []Unit {
	type key struct{ col, row, depth int }

	seen := make(map[key]bool, len(cells))
	m := NewMapper(cfg)
	units := make([]Unit, 0, len(cells))
	for _, c := range cells {
		k := key{col: c.Col, row: c.Row}
		if cfg.DepthPitch != 0 {
			k.depth = c.Depth
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		units = append(units, m.Unit(c))
	}

	// When depth pitch is zero the surviving unit's depth is just whichever
	// slice its cell came from; it carries no position, so it must not steer
	// the order either.
	byDepth := cfg.DepthPitch != 0
	sort.SliceStable(units, func(i, j int) bool {
		a, b := units[i], units[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if byDepth && a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.Col < b.Col
	})
	return units
}

package convert

import (
	"sort"

	"brickforge.dev/internal/machine"
	"brickforge.dev/internal/structure"
)

// Classifier turns raw structure blocks into placement cells: air names are
// dropped, the configured depth slice is applied, block names resolve to
// colors, and names absent from the map are recorded once each.
type Classifier struct {
	cfg *machine.Config
	cm  *machine.ColorMap

	unmapped map[string]bool
}

func NewClassifier(cfg *machine.Config, cm *machine.ColorMap) *Classifier {
	return &Classifier{cfg: cfg, cm: cm, unmapped: map[string]bool{}}
}

// Cells filters and classifies every block, preserving the structure's block
// order. The returned error only reflects palette corruption; unknown names
// are not errors.
func (c *Classifier) Cells(st *structure.Structure) ([]Cell, error) {
	cells := make([]Cell, 0, len(st.Blocks))
	for _, b := range st.Blocks {
		name, err := st.BlockName(b.State)
		if err != nil {
			return nil, err
		}
		if c.cm.IsAir(name) {
			continue
		}
		depth := b.Pos[c.cfg.DepthAxis]
		if c.cfg.DepthSlice != nil && depth != *c.cfg.DepthSlice {
			continue
		}
		color, mapped := c.cm.Color(name)
		if !mapped {
			c.unmapped[name] = true
		}
		cells = append(cells, Cell{
			Col:   b.Pos[c.cfg.ColAxis],
			Row:   b.Pos[c.cfg.RowAxis],
			Depth: depth,
			Color: color,
		})
	}
	return cells, nil
}

// Unmapped returns the distinct block names that used the fallback color,
// sorted for stable reporting.
func (c *Classifier) Unmapped() []string {
	out := make([]string, 0, len(c.unmapped))
	for name := range c.unmapped {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

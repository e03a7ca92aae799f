package convert

import "brickforge.dev/internal/machine"

// Mapper converts discrete placement indices into machine millimetres. Each
// axis is an affine map: origin + index * pitch. Axis permutation and pitch
// signs live in the config, not here; a negative row pitch builds top-down
// through the same arithmetic.
type Mapper struct {
	cfg *machine.Config
}

func NewMapper(cfg *machine.Config) Mapper {
	return Mapper{cfg: cfg}
}

func (m Mapper) X(col int) float64 {
	return m.cfg.OriginX + float64(col)*m.cfg.ColPitch
}

// Y collapses onto the origin when depth pitch is zero (flat-wall layouts).
func (m Mapper) Y(depth int) float64 {
	return m.cfg.OriginY + float64(depth)*m.cfg.DepthPitch
}

// PlaceZ is the nozzle height at the moment the brick engages: the brick's
// resting height plus the nozzle-to-brick drop, minus the extra push that
// seats the studs.
func (m Mapper) PlaceZ(row int) float64 {
	return m.cfg.OriginZ + float64(row)*m.cfg.RowPitch + m.cfg.NozzleDrop - m.cfg.PushExtra
}

// ApproachZ sits one clearance above PlaceZ. The push is always downward, so
// the clearance sign does not depend on the row pitch sign.
func (m Mapper) ApproachZ(row int) float64 {
	return m.PlaceZ(row) + m.cfg.ApproachClearance
}

// Unit resolves a cell into a fully positioned placement unit.
func (m Mapper) Unit(c Cell) Unit {
	return Unit{
		Col:       c.Col,
		Row:       c.Row,
		Depth:     c.Depth,
		Color:     c.Color,
		X:         m.X(c.Col),
		Y:         m.Y(c.Depth),
		PlaceZ:    m.PlaceZ(c.Row),
		ApproachZ: m.ApproachZ(c.Row),
	}
}

package convert

// Cell is one classified, non-empty voxel: structure indices remapped to
// machine roles plus the resolved brick color.
type Cell struct {
	Col   int
	Row   int
	Depth int
	Color string
}

// Unit is one brick to place: the surviving cell after dedup, with machine
// coordinates resolved. Immutable once built.
type Unit struct {
	Col   int
	Row   int
	Depth int
	Color string

	X         float64
	Y         float64
	PlaceZ    float64
	ApproachZ float64
}

// Report summarises a finished conversion for the operator and the run log.
type Report struct {
	Cols   int
	Rows   int
	Depths int

	Total   int
	ByColor map[string]int

	// Unmapped lists block names that fell back to the default color,
	// sorted, one entry per distinct name.
	Unmapped []string

	// Units is the final placement sequence, for previews and run records.
	Units []Unit
}

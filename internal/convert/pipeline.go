package convert

import (
	"errors"
	"fmt"
	"time"

	"brickforge.dev/internal/machine"
	"brickforge.dev/internal/structure"
)

// ErrNoBricks is returned when nothing survives filtering and dedup. It is
// terminal: no script is produced.
var ErrNoBricks = errors.New("no placeable bricks")

// Options carries run-scoped collaborators. Now lets tests pin the header
// timestamp; nil means time.Now.
type Options struct {
	Now func() time.Time
}

// Convert runs the whole pipeline on one decoded structure: classify,
// sequence, compile, emit. Synchronous and single-pass; it either returns a
// complete script or an error with nothing written.
func Convert(st *structure.Structure, cfg machine.Config, cm *machine.ColorMap, opts Options) (string, *Report, error) {
	if err := cfg.Validate(cm); err != nil {
		return "", nil, err
	}

	cl := NewClassifier(&cfg, cm)
	cells, err := cl.Cells(st)
	if err != nil {
		return "", nil, err
	}

	units := Sequence(cells, &cfg)
	if len(units) == 0 {
		return "", nil, fmt.Errorf("%w: no non-empty cells after filtering", ErrNoBricks)
	}

	rep := &Report{
		Cols:     st.Size[cfg.ColAxis],
		Rows:     st.Size[cfg.RowAxis],
		Depths:   st.Size[cfg.DepthAxis],
		Total:    len(units),
		ByColor:  map[string]int{},
		Unmapped: cl.Unmapped(),
		Units:    units,
	}
	for _, u := range units {
		rep.ByColor[u.Color]++
	}

	prims := NewCompiler(&cfg).Compile(units, rep.Rows)
	script := NewEmitter(&cfg, opts.Now).Emit(rep, prims)
	return script, rep, nil
}

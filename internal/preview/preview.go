// Package preview renders placement sequences as ASCII art so the operator
// can sanity-check axis mapping before committing machine time.
package preview

import (
	"fmt"
	"strings"

	"brickforge.dev/internal/convert"
)

const maxCols = 80

func initial(color string) byte {
	if color == "" {
		return '?'
	}
	return color[0]
}

// Wall draws the front view of a flat build: row 0 at the bottom, one color
// initial per brick, '.' for empty.
func Wall(units []convert.Unit, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]byte, rows)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(".", cols))
	}
	for _, u := range units {
		if u.Row >= 0 && u.Row < rows && u.Col >= 0 && u.Col < cols {
			grid[u.Row][u.Col] = initial(u.Color)
		}
	}

	shown := cols
	if shown > maxCols {
		shown = maxCols
	}
	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		line := string(grid[r][:shown])
		if cols > maxCols {
			line += "…"
		}
		fmt.Fprintf(&b, "%3d|%s\n", r, line)
	}
	fmt.Fprintf(&b, "   +%s\n", strings.Repeat("-", shown))
	return b.String()
}

// Layers draws one top-down slice per height row for 3-D builds.
func Layers(units []convert.Unit, cols, rows, depths int) string {
	if cols <= 0 || rows <= 0 || depths <= 0 {
		return ""
	}
	filled := make(map[[3]int]byte, len(units))
	for _, u := range units {
		filled[[3]int{u.Col, u.Depth, u.Row}] = initial(u.Color)
	}

	shown := cols
	if shown > maxCols {
		shown = maxCols
	}
	var b strings.Builder
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, "Layer row=%d:\n", r)
		for d := 0; d < depths; d++ {
			line := make([]byte, shown)
			for c := 0; c < shown; c++ {
				ch, ok := filled[[3]int{c, d, r}]
				if !ok {
					ch = '.'
				}
				line[c] = ch
			}
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}

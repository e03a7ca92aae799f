package structure

import "fmt"

// Block is one voxel entry from the structure's block list: an integer
// position and an index into the palette.
type Block struct {
	Pos   [3]int
	State int
}

// Structure is the decoded form of a structure file: overall dimensions, the
// ordered block-name palette, and every block entry in file order. Blocks is
// kept in decode order on purpose; downstream dedup is first-wins and keys
// off this order.
type Structure struct {
	Size    [3]int
	Palette []string
	Blocks  []Block
}

// BlockName resolves a palette index to its block name.
func (s *Structure) BlockName(state int) (string, error) {
	if state < 0 || state >= len(s.Palette) {
		return "", fmt.Errorf("palette index %d out of range (palette has %d entries)", state, len(s.Palette))
	}
	return s.Palette[state], nil
}

// fromRoot extracts the three required fields from a decoded tag tree.
func fromRoot(root map[string]any) (*Structure, error) {
	// Some writers wrap the real root under an empty-string key.
	if inner, ok := root[""].(map[string]any); ok && len(root) == 1 {
		root = inner
	}

	var s Structure

	size, err := intTriple(root["size"])
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	s.Size = size

	pal, ok := root["palette"].([]any)
	if !ok {
		return nil, fmt.Errorf("palette: missing or not a list")
	}
	s.Palette = make([]string, 0, len(pal))
	for i, e := range pal {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("palette[%d]: not a compound", i)
		}
		name, ok := entry["Name"].(string)
		if !ok {
			return nil, fmt.Errorf("palette[%d]: missing Name", i)
		}
		s.Palette = append(s.Palette, name)
	}

	blocks, ok := root["blocks"].([]any)
	if !ok {
		return nil, fmt.Errorf("blocks: missing or not a list")
	}
	s.Blocks = make([]Block, 0, len(blocks))
	for i, e := range blocks {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("blocks[%d]: not a compound", i)
		}
		pos, err := intTriple(entry["pos"])
		if err != nil {
			return nil, fmt.Errorf("blocks[%d].pos: %w", i, err)
		}
		state, ok := asInt(entry["state"])
		if !ok {
			return nil, fmt.Errorf("blocks[%d]: missing state", i)
		}
		if state < 0 || state >= len(s.Palette) {
			return nil, fmt.Errorf("blocks[%d]: state %d out of palette range", i, state)
		}
		s.Blocks = append(s.Blocks, Block{Pos: pos, State: state})
	}

	return &s, nil
}

func intTriple(v any) ([3]int, error) {
	var out [3]int
	list, ok := v.([]any)
	if !ok {
		return out, fmt.Errorf("missing or not a list")
	}
	if len(list) != 3 {
		return out, fmt.Errorf("want 3 elements, got %d", len(list))
	}
	for i, e := range list {
		n, ok := asInt(e)
		if !ok {
			return out, fmt.Errorf("element %d is not an integer", i)
		}
		out[i] = n
	}
	return out, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

package machine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ColorMap resolves structure block names to brick colors. Air names are
// filtered out before any mapping; unknown names fall back to Default.
type ColorMap struct {
	Default string            `json:"default"`
	Air     []string          `json:"air"`
	Blocks  map[string]string `json:"blocks"`

	// Digest of the raw catalog bytes, for run records.
	Digest string `json:"-"`

	airSet map[string]bool
}

// colorMapSchema is compiled once and applied to catalog files before they
// are decoded, so a malformed file fails with a schema message instead of a
// zero-value map.
const colorMapSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["default", "air", "blocks"],
  "properties": {
    "default": {"type": "string", "minLength": 1},
    "air": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "blocks": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    }
  },
  "additionalProperties": false
}`

var compiledColorMapSchema = jsonschema.MustCompileString("colormap.schema.json", colorMapSchema)

// LoadColorMap reads a catalog file, validates it against the embedded
// schema, and indexes the air set.
func LoadColorMap(path string) (*ColorMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := compiledColorMapSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	var m ColorMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Digest = sha256Hex(raw)
	m.index()
	return &m, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (m *ColorMap) index() {
	m.airSet = make(map[string]bool, len(m.Air))
	for _, name := range m.Air {
		m.airSet[name] = true
	}
}

// IsAir reports whether a block name is always treated as empty, regardless
// of the block map.
func (m *ColorMap) IsAir(name string) bool {
	return m.airSet[name]
}

// Color maps a block name to a brick color. ok is false when the name was
// absent and Default was used.
func (m *ColorMap) Color(name string) (color string, ok bool) {
	if c, ok := m.Blocks[name]; ok {
		return c, true
	}
	return m.Default, false
}

// MonoColorMap sends every non-air block to a single dispenser color. The
// 3-D profile uses this: one dispenser, shape over palette.
func MonoColorMap(color string) *ColorMap {
	m := &ColorMap{
		Default: color,
		Air: []string{
			"minecraft:air",
			"minecraft:cave_air",
			"minecraft:void_air",
		},
		Blocks: map[string]string{},
	}
	raw, _ := json.Marshal(m)
	m.Digest = sha256Hex(raw)
	m.index()
	return m
}

// Block names that read as red at brick scale, with pink and magenta folded
// into the nearest stock color.
var redBlocks = []string{
	"red_wool", "red_concrete", "red_concrete_powder",
	"red_terracotta", "red_glazed_terracotta", "terracotta",
	"red_stained_glass", "red_stained_glass_pane",
	"redstone_block", "magma_block",
	"nether_brick", "nether_bricks", "red_nether_bricks", "red_nether_brick_slab",
	"netherrack", "crimson_planks", "crimson_stem", "crimson_hyphae",
	"stripped_crimson_stem", "stripped_crimson_hyphae", "crimson_nylium",
	"shroomlight", "red_mushroom_block", "red_candle",
	"poppy", "rose_bush", "fire", "soul_fire",
	"pink_wool", "pink_concrete", "pink_concrete_powder",
	"pink_terracotta", "pink_glazed_terracotta",
	"pink_stained_glass", "pink_stained_glass_pane",
	"pink_candle", "peony", "pink_petals",
	"magenta_wool", "magenta_concrete", "magenta_concrete_powder",
	"magenta_terracotta", "magenta_glazed_terracotta",
	"magenta_stained_glass", "magenta_stained_glass_pane",
	"magenta_candle", "allium", "lilac",
}

// Block names that read as yellow, with orange folded in.
var yellowBlocks = []string{
	"yellow_wool", "yellow_concrete", "yellow_concrete_powder",
	"yellow_terracotta", "yellow_glazed_terracotta",
	"yellow_stained_glass", "yellow_stained_glass_pane", "yellow_candle",
	"gold_block", "raw_gold_block", "glowstone", "light",
	"hay_block", "honeycomb_block", "sponge", "wet_sponge",
	"bamboo_block", "stripped_bamboo_block",
	"dandelion", "sunflower", "torchflower",
	"pumpkin", "carved_pumpkin", "jack_o_lantern",
	"orange_wool", "orange_concrete", "orange_concrete_powder",
	"orange_terracotta", "orange_glazed_terracotta",
	"orange_stained_glass", "orange_stained_glass_pane",
	"orange_candle", "orange_tulip",
}

// DefaultColorMap is the built-in catalog for the two stock dispenser colors.
func DefaultColorMap() *ColorMap {
	blocks := make(map[string]string, len(redBlocks)+len(yellowBlocks))
	for _, n := range redBlocks {
		blocks["minecraft:"+n] = "RED"
	}
	for _, n := range yellowBlocks {
		blocks["minecraft:"+n] = "YELLOW"
	}
	m := &ColorMap{
		Default: "RED",
		Air: []string{
			"minecraft:air",
			"minecraft:cave_air",
			"minecraft:void_air",
		},
		Blocks: blocks,
	}
	raw, _ := json.Marshal(m)
	m.Digest = sha256Hex(raw)
	m.index()
	return m
}

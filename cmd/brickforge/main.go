package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"brickforge.dev/internal/convert"
	"brickforge.dev/internal/machine"
	"brickforge.dev/internal/preview"
	"brickforge.dev/internal/runlog"
	"brickforge.dev/internal/structure"
)

func main() {
	var (
		profile     = flag.String("profile", "3d", "machine profile: 3d or wall")
		configPath  = flag.String("config", "", "machine config YAML overlaying the profile (optional)")
		colormap    = flag.String("colormap", "", "block color catalog JSON (default: built-in RED/YELLOW map)")
		trial       = flag.Bool("trial", false, "trial run: scale all feed rates to 10%")
		feedScale   = flag.Float64("feed_scale", 0, "explicit feed rate scale (overrides -trial)")
		depthSlice  = flag.Int("depth_slice", -1, "use only this depth slice (>= 0)")
		mergeDepths = flag.Bool("merge_depths", false, "merge all depth slices into one layer")
		showPreview = flag.Bool("preview", true, "print an ASCII preview of the parsed structure")
		dbPath      = flag.String("db", "./data/runs.db", "run history database path")
		disableDB   = flag.Bool("disable_db", false, "do not record the run")
	)
	flag.Parse()

	if flag.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "usage: brickforge [flags] <structure.nbt> [output.gcode]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inPath := flag.Arg(0)
	outPath := flag.Arg(1)
	if outPath == "" {
		stem := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
		outPath = stem + ".gcode"
	}

	var cfg machine.Config
	switch *profile {
	case "3d":
		cfg = machine.Default()
	case "wall":
		cfg = machine.DefaultWall()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile %q (want 3d or wall)\n", *profile)
		os.Exit(2)
	}
	if *configPath != "" {
		var err error
		cfg, err = machine.Load(*configPath, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			os.Exit(1)
		}
	}
	if *depthSlice >= 0 {
		s := *depthSlice
		cfg.DepthSlice = &s
		cfg.DepthPitch = 0
	}
	if *mergeDepths {
		cfg.DepthSlice = nil
		cfg.DepthPitch = 0
	}

	scale := *feedScale
	if scale == 0 && *trial {
		scale = 0.1
	}
	if scale != 0 {
		cfg = cfg.WithFeedScale(scale)
	}

	// The 3-D profile has a single dispenser; shape matters, palette does not.
	cm := machine.MonoColorMap("RED")
	if *profile == "wall" {
		cm = machine.DefaultColorMap()
	}
	if *colormap != "" {
		var err error
		cm, err = machine.LoadColorMap(*colormap)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load colormap:", err)
			os.Exit(1)
		}
	}

	st, err := structure.Load(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load structure:", err)
		os.Exit(1)
	}

	started := time.Now()
	script, rep, err := convert.Convert(st, cfg, cm, convert.Options{})
	if err != nil {
		if errors.Is(err, convert.ErrNoBricks) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "check col/row/depth axis roles and the depth slice")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "convert:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, []byte(script), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		os.Exit(1)
	}

	fmt.Printf("structure : %d wide x %d deep x %d tall\n", rep.Cols, rep.Depths, rep.Rows)
	fmt.Printf("bricks    : %d (%s)\n", rep.Total, colorSummary(rep.ByColor))
	fmt.Printf("physical  : %.0f mm x %.0f mm x %.0f mm\n",
		float64(rep.Cols)*cfg.ColPitch,
		float64(rep.Depths)*math.Abs(cfg.DepthPitch),
		float64(rep.Rows)*math.Abs(cfg.RowPitch))
	if scale != 0 {
		fmt.Printf("feed scale: %.2f\n", scale)
	}
	if len(rep.Unmapped) > 0 {
		fmt.Fprintf(os.Stderr, "note: %d unmapped block type(s) defaulted to %s:\n", len(rep.Unmapped), cm.Default)
		for _, name := range rep.Unmapped {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
	}
	if *showPreview {
		if cfg.DepthPitch != 0 {
			fmt.Print(preview.Layers(rep.Units, rep.Cols, rep.Rows, rep.Depths))
		} else {
			fmt.Print(preview.Wall(rep.Units, rep.Cols, rep.Rows))
		}
	}
	fmt.Printf("written   : %s\n", outPath)

	if !*disableDB {
		if err := recordRun(*dbPath, runlog.Run{
			StartedAt:      started,
			StructurePath:  inPath,
			ColorMapDigest: cm.Digest,
			Cols:           rep.Cols,
			Rows:           rep.Rows,
			Depths:         rep.Depths,
			Bricks:         rep.Total,
			ByColor:        rep.ByColor,
			Unmapped:       len(rep.Unmapped),
			OutputPath:     outPath,
			FeedScale:      scale,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "warning: run not recorded:", err)
		}
	}
}

func recordRun(path string, r runlog.Run) error {
	db, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Record(context.Background(), r)
}

func colorSummary(byColor map[string]int) string {
	parts := make([]string, 0, len(byColor))
	for _, color := range sortedKeys(byColor) {
		parts = append(parts, fmt.Sprintf("%d %s", byColor[color], color))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

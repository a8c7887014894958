// Package main generates deterministic grid level documents for the
// fleet simulator. Chargers are placed by seeded random draw so the
// same parameters always produce the same level.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/elektrokombinacija/fleetsim/internal/level"
)

func main() {
	var (
		width    = flag.Int("width", 5, "grid width")
		height   = flag.Int("height", 5, "grid height")
		spacing  = flag.Float64("spacing", 1.0, "distance between adjacent vertices")
		chargers = flag.Float64("chargers", 0.1, "fraction of vertices that are chargers")
		seed     = flag.Int64("seed", 42, "random seed")
		name     = flag.String("name", "level1", "level name")
		out      = flag.String("out", "", "output path (default stdout)")
	)
	flag.Parse()

	if *width < 2 || *height < 2 {
		fmt.Fprintln(os.Stderr, "grid must be at least 2x2")
		os.Exit(1)
	}

	doc := generate(*width, *height, *spacing, *chargers, *seed, *name)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := doc.Write(w); err != nil {
		fmt.Fprintln(os.Stderr, "write level:", err)
		os.Exit(1)
	}
}

func generate(width, height int, spacing, chargerFrac float64, seed int64, name string) *level.Document {
	rng := rand.New(rand.NewSource(seed))
	lvl := level.Level{}

	n := width * height
	chargerCount := int(float64(n) * chargerFrac)
	isCharger := make(map[int]bool, chargerCount)
	for len(isCharger) < chargerCount {
		isCharger[rng.Intn(n)] = true
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := y*width + x
			lvl.Vertices = append(lvl.Vertices, level.VertexDef{
				X:         float64(x) * spacing,
				Y:         float64(y) * spacing,
				Name:      fmt.Sprintf("v%d", id),
				IsCharger: isCharger[id],
			})
		}
	}

	// 4-connected grid; the loader adds the reverse direction.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := y*width + x
			if x < width-1 {
				lvl.Lanes = append(lvl.Lanes, level.LaneDef{From: id, To: id + 1})
			}
			if y < height-1 {
				lvl.Lanes = append(lvl.Lanes, level.LaneDef{From: id, To: id + width})
			}
		}
	}

	return &level.Document{Levels: map[string]level.Level{name: lvl}}
}

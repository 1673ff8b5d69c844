package netlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a circuit from disk. Schematics (.toml, .json) are compiled;
// SPICE decks (.cir, .sp, .net, .spice) are parsed and also return their
// directives. Directives is empty for schematics.
func Load(path string) (*Netlist, *Directives, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".json":
		s, err := LoadSchematic(path)
		if err != nil {
			return nil, nil, err
		}
		nl, err := Compile(s)
		if err != nil {
			return nil, nil, fmt.Errorf("compiling %s: %w", filepath.Base(path), err)
		}
		return nl, &Directives{}, nil

	case ".cir", ".sp", ".net", ".spice":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading deck: %w", err)
		}
		nl, dir, err := ParseDeck(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
		return nl, dir, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrFormat, filepath.Base(path))
	}
}

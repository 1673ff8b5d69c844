package netlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// GroundKind is the component kind of a ground symbol. It is a connectivity
// marker, not a device.
const GroundKind = "GND"

// Point is an exact grid coordinate. Points connect only when they are equal.
type Point struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
}

// Pin is a component terminal. A Net of "GND" ties the pin to ground
// regardless of wiring.
type Pin struct {
	X   float64 `toml:"x" json:"x"`
	Y   float64 `toml:"y" json:"y"`
	Net string  `toml:"net,omitempty" json:"net,omitempty"`
}

func (p Pin) Point() Point { return Point{X: p.X, Y: p.Y} }

func (p Pin) isGroundNet() bool { return strings.EqualFold(p.Net, GroundKind) }

// Component pins are ordered per kind: (n1, n2) for two-terminal parts,
// (+, -) for sources and (drain, gate, source) for MOS.
type Component struct {
	ID     string         `toml:"id" json:"id"`
	Kind   string         `toml:"kind" json:"kind"`
	Pins   []Pin          `toml:"pins" json:"pins"`
	Params map[string]any `toml:"params,omitempty" json:"params,omitempty"`
}

func (c Component) isGround() bool { return strings.EqualFold(c.Kind, GroundKind) }

// Wire is a polyline; consecutive points are connected.
type Wire struct {
	Points []Point `toml:"points" json:"points"`
}

type Schematic struct {
	Components []Component `toml:"components" json:"components"`
	Wires      []Wire      `toml:"wires,omitempty" json:"wires,omitempty"`
}

func ParseSchematicTOML(data []byte) (*Schematic, error) {
	var s Schematic
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schematic TOML: %w", err)
	}
	return &s, nil
}

func ParseSchematicJSON(data []byte) (*Schematic, error) {
	var s Schematic
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schematic JSON: %w", err)
	}
	return &s, nil
}

// LoadSchematic reads a .toml or .json schematic file.
func LoadSchematic(path string) (*Schematic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schematic: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseSchematicTOML(data)
	case ".json":
		return ParseSchematicJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, filepath.Base(path))
	}
}

package netlist

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const mixedDeck = `mixed element deck
* comment line
V1 in 0 DC 5
R1 in out 1k
C1 out 0 1u IC = 2
I1 0 out 1m ; inline comment
M1 d g 0 0 NMOS W=4u
+ L=2u
Vac a 0 SIN(0 1 1k 90)
.tran 10u 5m uic
.dc V1 0 5 1
.op
.end
Q1 x y z
`

func TestParseDeck(t *testing.T) {
	nl, dir, err := ParseDeck(mixedDeck)
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}

	if dir.Title != "mixed element deck" {
		t.Errorf("title = %q", dir.Title)
	}
	if !dir.OP {
		t.Error(".op not recorded")
	}
	if dir.Tran == nil || math.Abs(dir.Tran.Step-10e-6) > 1e-18 || math.Abs(dir.Tran.Stop-5e-3) > 1e-15 || !dir.Tran.UIC {
		t.Errorf(".tran = %+v", dir.Tran)
	}
	if dir.DC == nil || dir.DC.Source != "V1" || dir.DC.Stop != 5 || dir.DC.Step != 1 {
		t.Errorf(".dc = %+v", dir.DC)
	}

	wantNodes := []string{"GND", "in", "out", "d", "g", "a"}
	if len(nl.Nodes) != len(wantNodes) {
		t.Fatalf("nodes = %v", nl.Nodes)
	}
	for i, name := range wantNodes {
		if nl.Nodes[i].Name != name || nl.Nodes[i].ID != i {
			t.Errorf("node %d = %+v, want %s", i, nl.Nodes[i], name)
		}
	}

	tests := []struct {
		name  string
		kind  string
		nodes []int
		param string
		value float64
	}{
		{"V1", "VDC", []int{1, 0}, "V", 5},
		{"R1", "R", []int{1, 2}, "R", 1e3},
		{"C1", "C", []int{2, 0}, "IC", 2},
		{"I1", "IDC", []int{2, 0}, "I", 1e-3},
		{"M1", "MOS", []int{3, 4, 0}, "L", 2e-6},
		{"Vac", "VAC", []int{5, 0}, "phase", math.Pi / 2},
	}
	if len(nl.Devices) != len(tests) {
		t.Fatalf("devices = %d, want %d", len(nl.Devices), len(tests))
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := nl.Device(tt.name)
			if !ok {
				t.Fatalf("device %s missing", tt.name)
			}
			if d.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", d.Kind, tt.kind)
			}
			for i, n := range tt.nodes {
				if d.Nodes[i] != n {
					t.Errorf("nodes = %v, want %v", d.Nodes, tt.nodes)
					break
				}
			}
			v, ok := d.Params[tt.param].(float64)
			if !ok || math.Abs(v-tt.value) > math.Abs(tt.value)*1e-12 {
				t.Errorf("%s = %v, want %g", tt.param, d.Params[tt.param], tt.value)
			}
		})
	}

	if _, err := nl.Build(); err != nil {
		t.Errorf("Build: %v", err)
	}
}

func TestParseDeckDivider(t *testing.T) {
	deck := "* divider\nV1 in 0 10\nR1 in out 1k\nR2 out gnd 1k\n.op\n"
	nl, _, err := ParseDeck(deck)
	if err != nil {
		t.Fatalf("ParseDeck: %v", err)
	}
	id, ok := nl.NodeID("OUT")
	if !ok {
		t.Fatal("node out missing")
	}

	s, err := nl.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res, err := s.RunDC(); err != nil || !res.Converged {
		t.Fatalf("RunDC = %+v, %v", res, err)
	}
	if v := s.NodeVoltage(id); math.Abs(v-5) > 1e-6 {
		t.Errorf("V(out) = %g, want 5", v)
	}
	if v := s.Snapshot()["V(out)"]; math.Abs(v-5) > 1e-6 {
		t.Errorf("snapshot V(out) = %g, want 5", v)
	}
}

func TestParseDeckErrors(t *testing.T) {
	tests := []struct {
		name string
		deck string
		want error
	}{
		{"unknown element", "t\nQ1 c b e\n", ErrUnknownDevice},
		{"unsupported directive", "t\nR1 a 0 1k\n.ac dec 10 1 1k\n", ErrSyntax},
		{"no ground", "t\nR1 a b 1k\n", ErrNoReference},
		{"bad value", "t\nR1 a 0 lots\n", ErrBadParam},
		{"dangling continuation", "t\n+ R1 a 0 1k\n", ErrSyntax},
		{"duplicate", "t\nR1 a 0 1k\nR1 a 0 2k\n", ErrSyntax},
		{"short tran", "t\nR1 a 0 1k\n.tran 1u\n", ErrSyntax},
		{"bad mos param", "t\nM1 d g 0 NMOS XJ=1\n", ErrBadParam},
		{"resistor IC", "t\nR1 a 0 1k IC=1\n", ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ParseDeck(tt.deck); !errors.Is(err, tt.want) {
				t.Errorf("ParseDeck error = %v, want %v", err, tt.want)
			}
		})
	}
}

const dividerTOML = `
[[components]]
id = "V1"
kind = "VDC"
pins = [{ x = 0.0, y = 0.0 }, { x = 0.0, y = 10.0 }]
params = { V = 10 }

[[components]]
id = "R1"
kind = "R"
pins = [{ x = 0.0, y = 0.0 }, { x = 10.0, y = 0.0 }]
params = { R = "1k" }

[[components]]
id = "R2"
kind = "R"
pins = [{ x = 10.0, y = 0.0 }, { x = 0.0, y = 10.0 }]
params = { R = "1k" }

[[components]]
id = "G1"
kind = "GND"
pins = [{ x = 0.0, y = 10.0 }]
`

const dividerJSON = `{
  "components": [
    {"id": "V1", "kind": "VDC", "pins": [{"x": 0, "y": 0}, {"x": 0, "y": 10, "net": "GND"}], "params": {"V": 10}},
    {"id": "R1", "kind": "R", "pins": [{"x": 0, "y": 0}, {"x": 10, "y": 0}], "params": {"R": "1k"}},
    {"id": "R2", "kind": "R", "pins": [{"x": 10, "y": 0}, {"x": 20, "y": 0}], "params": {"R": "1k"}}
  ],
  "wires": [{"points": [{"x": 20, "y": 0}, {"x": 20, "y": 10}, {"x": 0, "y": 10}]}]
}`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"divider.toml": dividerTOML,
		"divider.json": dividerJSON,
		"divider.cir":  "divider\nV1 1 0 10\nR1 1 2 1k\nR2 2 0 1k\n.end\n",
	}

	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			nl, directives, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if directives == nil {
				t.Fatal("nil directives")
			}

			s, err := nl.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if res, err := s.RunDC(); err != nil || !res.Converged {
				t.Fatalf("RunDC = %+v, %v", res, err)
			}
			if v := s.NodeVoltage(2); math.Abs(v-5) > 1e-6 {
				t.Errorf("V(2) = %g, want 5", v)
			}
		})
	}

	path := filepath.Join(dir, "divider.xml")
	if err := os.WriteFile(path, []byte("<x/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); !errors.Is(err, ErrFormat) {
		t.Errorf("Load(.xml) error = %v, want ErrFormat", err)
	}
}

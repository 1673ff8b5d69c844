package netlist

import (
	"bufio"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
	"github.com/kaminglui/circuit-sim/pkg/device"
)

// TranDirective holds .tran tstep tstop [tstart] [uic].
type TranDirective struct {
	Step  float64
	Stop  float64
	Start float64
	UIC   bool
}

// DCDirective holds .dc src start stop incr.
type DCDirective struct {
	Source string
	Start  float64
	Stop   float64
	Step   float64
}

// Directives are the analysis requests found in a deck.
type Directives struct {
	Title string
	OP    bool
	Tran  *TranDirective
	DC    *DCDirective
}

var equalsRe = regexp.MustCompile(`\s*=\s*`)

// ParseDeck reads a SPICE-style text netlist.
//
// The first line is the title. Supported elements are R, C, L, V (DC, bare
// value or SIN), I and M; supported directives are .op, .tran, .dc and .end.
// Node "0" or "gnd" is ground; other nodes keep their deck names.
func ParseDeck(text string) (*Netlist, *Directives, error) {
	d := &deckParser{
		nodes:      map[string]int{},
		netlist:    &Netlist{Nodes: []circuit.Node{{ID: 0, Name: circuit.NodeName(0)}}},
		directives: &Directives{},
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	if scanner.Scan() {
		d.directives.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var current string
	currentLine, lineNo := 0, 1
	flush := func() error {
		if current == "" {
			return nil
		}
		err := d.parseLine(current)
		current = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", currentLine, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, "+") {
			if current == "" {
				return nil, nil, fmt.Errorf("line %d: %w: continuation without a statement", lineNo, ErrSyntax)
			}
			current += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, nil, err
		}
		if strings.EqualFold(strings.Fields(line)[0], ".end") {
			break
		}
		current, currentLine = line, lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading deck: %w", err)
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}

	if len(d.netlist.Devices) > 0 && !d.grounded {
		return nil, nil, fmt.Errorf("parsing deck: no element connects to node 0: %w", ErrNoReference)
	}
	return d.netlist, d.directives, nil
}

type deckParser struct {
	nodes      map[string]int
	netlist    *Netlist
	directives *Directives
	grounded   bool
}

func (d *deckParser) node(name string) int {
	key := strings.ToLower(name)
	if key == "0" || key == "gnd" {
		d.grounded = true
		return 0
	}
	if id, ok := d.nodes[key]; ok {
		return id
	}
	id := len(d.netlist.Nodes)
	d.nodes[key] = id
	d.netlist.Nodes = append(d.netlist.Nodes, circuit.Node{ID: id, Name: name})
	return id
}

func (d *deckParser) parseLine(line string) error {
	line = equalsRe.ReplaceAllString(line, "=")
	fields := strings.Fields(line)

	if strings.HasPrefix(fields[0], ".") {
		return d.parseDirective(fields)
	}

	name := fields[0]
	if _, dup := d.netlist.Device(name); dup {
		return fmt.Errorf("%w: duplicate element %s", ErrSyntax, name)
	}

	var (
		spec *DeviceSpec
		err  error
	)
	switch strings.ToUpper(name[:1]) {
	case "R":
		spec, err = d.parsePassive(fields, device.KindResistor, "R")
	case "C":
		spec, err = d.parsePassive(fields, device.KindCapacitor, "C")
	case "L":
		spec, err = d.parsePassive(fields, device.KindInductor, "L")
	case "V":
		spec, err = d.parseVoltageSource(fields)
	case "I":
		spec, err = d.parseCurrentSource(fields)
	case "M":
		spec, err = d.parseMosfet(fields)
	default:
		return fmt.Errorf("%w: element %s", ErrUnknownDevice, name)
	}
	if err != nil {
		return fmt.Errorf("element %s: %w", name, err)
	}

	d.netlist.Devices = append(d.netlist.Devices, *spec)
	return nil
}

// parsePassive handles "X n1 n2 value [IC=v]".
func (d *deckParser) parsePassive(fields []string, kind device.Kind, key string) (*DeviceSpec, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: need two nodes and a value", ErrSyntax)
	}
	value, err := ParseValue(fields[3])
	if err != nil {
		return nil, err
	}

	params := map[string]any{key: value}
	for _, f := range fields[4:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || !strings.EqualFold(k, "IC") || kind == device.KindResistor {
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, f)
		}
		ic, err := ParseValue(v)
		if err != nil {
			return nil, err
		}
		params["IC"] = ic
	}

	return &DeviceSpec{
		Name:   fields[0],
		Kind:   kind.String(),
		Nodes:  []int{d.node(fields[1]), d.node(fields[2])},
		Params: params,
	}, nil
}

func sourceWords(fields []string) []string {
	rest := strings.Join(fields[3:], " ")
	rest = strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(rest)
	return strings.Fields(rest)
}

// parseVoltageSource handles "V n+ n- [DC] v" and
// "V n+ n- SIN(offset amp freq [phase])" with phase in degrees.
func (d *deckParser) parseVoltageSource(fields []string) (*DeviceSpec, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: need two nodes and a value", ErrSyntax)
	}
	words := sourceWords(fields)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: missing source value", ErrSyntax)
	}
	spec := &DeviceSpec{Name: fields[0]}

	switch strings.ToUpper(words[0]) {
	case "SIN":
		if len(words) < 4 || len(words) > 5 {
			return nil, fmt.Errorf("%w: SIN needs offset, amplitude, frequency and optional phase", ErrSyntax)
		}
		vals := make([]float64, 4)
		for i, w := range words[1:] {
			v, err := ParseValue(w)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		spec.Kind = device.KindACVoltage.String()
		spec.Params = map[string]any{
			"offset": vals[0],
			"vPeak":  vals[1],
			"freq":   vals[2],
			"phase":  vals[3] * math.Pi / 180,
		}

	default:
		v, err := dcValue(words)
		if err != nil {
			return nil, err
		}
		spec.Kind = device.KindDCVoltage.String()
		spec.Params = map[string]any{"V": v}
	}

	spec.Nodes = []int{d.node(fields[1]), d.node(fields[2])}
	return spec, nil
}

// parseCurrentSource handles "I n+ n- [DC] i". The current flows from n+
// through the source to n-, so it is injected into n-.
func (d *deckParser) parseCurrentSource(fields []string) (*DeviceSpec, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: need two nodes and a value", ErrSyntax)
	}
	v, err := dcValue(sourceWords(fields))
	if err != nil {
		return nil, err
	}
	nPlus, nMinus := d.node(fields[1]), d.node(fields[2])
	return &DeviceSpec{
		Name:   fields[0],
		Kind:   device.KindDCCurrent.String(),
		Nodes:  []int{nMinus, nPlus},
		Params: map[string]any{"I": v},
	}, nil
}

func dcValue(words []string) (float64, error) {
	if len(words) > 0 && strings.EqualFold(words[0], "DC") {
		words = words[1:]
	}
	if len(words) != 1 {
		return 0, fmt.Errorf("%w: expected a single DC value", ErrSyntax)
	}
	return ParseValue(words[0])
}

// parseMosfet handles "M d g s [b] NMOS|PMOS [W=..] [L=..] [VTO=..] ...".
// The bulk node is accepted and ignored.
func (d *deckParser) parseMosfet(fields []string) (*DeviceSpec, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: need drain, gate, source and a type", ErrSyntax)
	}

	typeAt := 4
	if len(fields) > 5 && !strings.Contains(fields[5], "=") {
		if _, err := device.ParseMOSType(fields[5]); err == nil {
			typeAt = 5
		}
	}
	typ, err := device.ParseMOSType(fields[typeAt])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadParam, err)
	}

	params := map[string]any{"type": typ.String()}
	for _, f := range fields[typeAt+1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, f)
		}
		key := strings.ToUpper(k)
		switch key {
		case "W", "L", "VTO", "KP", "LAMBDA":
		default:
			return nil, fmt.Errorf("%w: unknown MOS parameter %s", ErrBadParam, k)
		}
		val, err := ParseValue(v)
		if err != nil {
			return nil, err
		}
		params[key] = val
	}
	return &DeviceSpec{
		Name:   fields[0],
		Kind:   device.KindMOSFET.String(),
		Nodes:  []int{d.node(fields[1]), d.node(fields[2]), d.node(fields[3])},
		Params: params,
	}, nil
}

func (d *deckParser) parseDirective(fields []string) error {
	values := func(list []string, names ...string) ([]float64, error) {
		out := make([]float64, len(list))
		for i, s := range list {
			v, err := ParseValue(s)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", fields[0], names[i], err)
			}
			out[i] = v
		}
		return out, nil
	}

	switch strings.ToLower(fields[0]) {
	case ".op":
		d.directives.OP = true

	case ".tran":
		args := fields[1:]
		uic := false
		if n := len(args); n > 0 && strings.EqualFold(args[n-1], "uic") {
			uic, args = true, args[:n-1]
		}
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("%w: .tran tstep tstop [tstart] [uic]", ErrSyntax)
		}
		v, err := values(args, "tstep", "tstop", "tstart")
		if err != nil {
			return err
		}
		tran := &TranDirective{Step: v[0], Stop: v[1], UIC: uic}
		if len(v) == 3 {
			tran.Start = v[2]
		}
		d.directives.Tran = tran

	case ".dc":
		if len(fields) != 5 {
			return fmt.Errorf("%w: .dc source start stop incr", ErrSyntax)
		}
		v, err := values(fields[2:], "start", "stop", "incr")
		if err != nil {
			return err
		}
		d.directives.DC = &DCDirective{Source: fields[1], Start: v[0], Stop: v[1], Step: v[2]}

	default:
		return fmt.Errorf("%w: unsupported directive %s", ErrSyntax, fields[0])
	}
	return nil
}

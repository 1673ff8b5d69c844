package netlist

import (
	"fmt"
	"math"
	"strings"

	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/device"
)

// CreateDevice instantiates a device from its spec. Node ids must already be
// resolved.
func CreateDevice(spec DeviceSpec) (device.Device, error) {
	kind, ok := device.ParseKind(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("device %s: %w: %q", spec.Name, ErrUnknownDevice, spec.Kind)
	}
	if len(spec.Nodes) != kind.Terminals() {
		return nil, fmt.Errorf("device %s: %w: %s needs %d nodes, got %d",
			spec.Name, ErrPinCount, kind, kind.Terminals(), len(spec.Nodes))
	}

	p := params{name: spec.Name, values: spec.Params}
	n := spec.Nodes

	switch kind {
	case device.KindResistor:
		r, err := p.float("R", consts.DefaultResistance)
		if err != nil {
			return nil, err
		}
		return device.NewResistor(spec.Name, n[0], n[1], r), nil

	case device.KindCapacitor:
		c, err := p.float("C", consts.DefaultCapacitance)
		if err != nil {
			return nil, err
		}
		ic, err := p.float("IC", 0)
		if err != nil {
			return nil, err
		}
		dev := device.NewCapacitor(spec.Name, n[0], n[1], c)
		dev.SetInitialVoltage(ic)
		return dev, nil

	case device.KindInductor:
		l, err := p.float("L", consts.DefaultInductance)
		if err != nil {
			return nil, err
		}
		ic, err := p.float("IC", 0)
		if err != nil {
			return nil, err
		}
		dev := device.NewInductor(spec.Name, n[0], n[1], l)
		dev.SetInitialCurrent(ic)
		return dev, nil

	case device.KindDCVoltage:
		v, err := p.float("V", 0)
		if err != nil {
			return nil, err
		}
		return device.NewDCVoltageSource(spec.Name, n[0], n[1], v), nil

	case device.KindACVoltage:
		vals, err := p.floats(
			param{"vPeak", 0},
			param{"freq", consts.DefaultACFrequency},
			param{"phase", 0},
			param{"offset", 0},
		)
		if err != nil {
			return nil, err
		}
		return device.NewACVoltageSource(spec.Name, n[0], n[1], vals[0], vals[1], vals[2], vals[3]), nil

	case device.KindDCCurrent:
		i, err := p.float("I", 0)
		if err != nil {
			return nil, err
		}
		return device.NewDCCurrentSource(spec.Name, n[0], n[1], i), nil

	case device.KindMOSFET:
		typ, err := device.ParseMOSType(p.text("type"))
		if err != nil {
			return nil, fmt.Errorf("device %s: %w: %v", spec.Name, ErrBadParam, err)
		}
		def := device.DefaultProcess(typ)
		vals, err := p.floats(
			param{"VTO", def.VTO},
			param{"KP", def.KPrime},
			param{"LAMBDA", def.Lambda},
			param{"W", def.W},
			param{"L", def.L},
		)
		if err != nil {
			return nil, err
		}
		proc := device.ProcessParams{VTO: vals[0], KPrime: vals[1], Lambda: vals[2], W: vals[3], L: vals[4]}
		return device.NewMosfet(spec.Name, typ, n[0], n[1], n[2], proc), nil

	default:
		return nil, fmt.Errorf("device %s: %w: %s", spec.Name, ErrUnknownDevice, kind)
	}
}

type param struct {
	key string
	def float64
}

// params reads component parameters. Keys match exactly first, then
// case-insensitively.
type params struct {
	name   string
	values map[string]any
}

func (p params) lookup(key string) (any, bool) {
	if v, ok := p.values[key]; ok {
		return v, true
	}
	for k, v := range p.values {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func (p params) float(key string, def float64) (float64, error) {
	raw, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	v, err := toFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("device %s param %s: %w", p.name, key, err)
	}
	return v, nil
}

func (p params) floats(list ...param) ([]float64, error) {
	out := make([]float64, len(list))
	for i, pr := range list {
		v, err := p.float(pr.key, pr.def)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p params) text(key string) string {
	raw, ok := p.lookup(key)
	if !ok {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func toFloat(raw any) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case int32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case string:
		parsed, err := ParseValue(x)
		if err != nil {
			return 0, err
		}
		v = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrBadParam, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite value %v", ErrBadParam, v)
	}
	return v, nil
}

package netlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suffixes are matched case-insensitively, so "M" is milli as in SPICE and
// mega must be written "meg".
var unitMap = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"mil": 25.4e-6,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:e[-+]?\d+)?)(meg|mil|[tgkmunpf])?([a-z]*)$`)

// ParseValue parses a number with an optional engineering suffix: 1k -> 1000,
// 4.7u -> 4.7e-6, 2meg -> 2e6. Trailing unit letters ("10uF", "5V") are
// ignored.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(val)))
	if matches == nil {
		return 0, fmt.Errorf("%w: invalid value %q", ErrBadParam, val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadParam, err)
	}

	if factor, ok := unitMap[matches[2]]; ok {
		num *= factor
	}
	return num, nil
}

package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseable is returned for strings that hold no number.
var ErrUnparseable = errors.New("unparseable value")

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// multiplierRe matches a scale word only as a whole token, so "120 beds"
// and "$2,500,000 minimum" keep their face value.
var multiplierRe = regexp.MustCompile(`^(billion|million|thousand|bn|mm|b|m|k)\b`)

var multipliers = map[string]float64{
	"billion":  1e9,
	"million":  1e6,
	"thousand": 1e3,
	"bn":       1e9,
	"mm":       1e6,
	"b":        1e9,
	"m":        1e6,
	"k":        1e3,
}

// ParseAmount parses dollar amounts such as "$1,250,000", "$1.25M",
// "850K", "2.1 million" or "(5,000)".
func ParseAmount(s string) (float64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	neg := strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")")
	clean := strings.NewReplacer("$", "", ",", "", "(", "", ")", "", "usd", "").Replace(raw)
	clean = strings.TrimSpace(clean)

	num := numberRe.FindString(clean)
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	rest := strings.TrimSpace(clean[strings.Index(clean, num)+len(num):])
	if m := multiplierRe.FindStringSubmatch(rest); m != nil {
		v *= multipliers[m[1]]
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ParsePercent parses "6.5%", "6.5 percent" or "0.065" into a decimal.
// A bare number above 1 is read as a percentage.
func ParsePercent(s string) (float64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	num := numberRe.FindString(strings.ReplaceAll(raw, ",", ""))
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	if strings.Contains(raw, "%") || strings.Contains(raw, "percent") || v > 1 {
		return v / 100, nil
	}
	return v, nil
}

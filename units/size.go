package units

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInvalidSizeFormat is returned when the input is not <number><unit>.
	ErrInvalidSizeFormat = errors.New("invalid size format")
	// ErrInvalidSizeUnit is returned when the unit is not a byte multiple.
	ErrInvalidSizeUnit = errors.New("invalid size unit")
)

var sizePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]*)$`)

// Bare prefixes ("100M") scale by 1024, like the explicit binary units.
// Decimal units ("100MB") keep their 1000-based value.
var sizeUnits = map[string]int64{
	"":    humanize.Byte,
	"b":   humanize.Byte,
	"k":   humanize.KiByte,
	"ki":  humanize.KiByte,
	"kib": humanize.KiByte,
	"kb":  humanize.KByte,
	"m":   humanize.MiByte,
	"mi":  humanize.MiByte,
	"mib": humanize.MiByte,
	"mb":  humanize.MByte,
	"g":   humanize.GiByte,
	"gi":  humanize.GiByte,
	"gib": humanize.GiByte,
	"gb":  humanize.GByte,
	"t":   humanize.TiByte,
	"ti":  humanize.TiByte,
	"tib": humanize.TiByte,
	"tb":  humanize.TByte,
	"p":   humanize.PiByte,
	"pi":  humanize.PiByte,
	"pib": humanize.PiByte,
	"pb":  humanize.PByte,
}

// ParseSize converts a human-entered size such as "100MiB" or "42kB" into bytes.
func ParseSize(input string) (int64, error) {
	match := sizePattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return 0, fmt.Errorf("%w: %q (examples: 100MiB, 42kB)", ErrInvalidSizeFormat, input)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidSizeFormat, input, err)
	}

	factor, ok := sizeUnits[strings.ToLower(match[2])]
	if !ok {
		return 0, fmt.Errorf("%w: %q (valid examples: 100MiB, 42kB)", ErrInvalidSizeUnit, match[2])
	}

	bytes := math.Round(value * float64(factor))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidSizeFormat, input)
	}

	return int64(bytes), nil
}

// Format renders a byte count with binary units, e.g. "80 MiB".
func Format(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

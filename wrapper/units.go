package wrapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// memoryPattern matches "<number><unit>" where unit is one of K/M/G/T with an
// optional trailing B (200G, 180000M, 1024KB). Case is normalized before the
// match.
var memoryPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*(?:([KMGT])B?)?$`)

// ParseMemoryMB converts a memory specification from the finished config into
// whole megabytes. Bare numbers are already megabytes. Unit suffixes scale
// binary: K rounds to at least 1 MB, G multiplies by 1024, T by 1024².
func ParseMemoryMB(value any) (int, error) {
	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}

	literal := fmt.Sprintf("%v", value)
	m := memoryPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(literal)))
	if m == nil {
		return 0, &UnitParseError{Kind: "memory", Literal: literal}
	}

	number, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &UnitParseError{Kind: "memory", Literal: literal}
	}

	switch m[2] {
	case "K":
		mb := int(number/1024 + 0.5)
		if mb < 1 {
			mb = 1
		}
		return mb, nil
	case "", "M":
		return int(number), nil
	case "G":
		return int(number * 1024), nil
	case "T":
		return int(number * 1024 * 1024), nil
	}
	return 0, &UnitParseError{Kind: "memory", Literal: literal}
}

// ParseRuntimeMinutes converts a wall-time specification into whole minutes.
// Bare integers are already minutes; HH:MM:SS and MM:SS clock strings round
// up to the next minute when seconds remain.
func ParseRuntimeMinutes(value any) (int, error) {
	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}

	literal := fmt.Sprintf("%v", value)
	s := strings.TrimSpace(literal)

	if minutes, err := strconv.Atoi(s); err == nil {
		return minutes, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &UnitParseError{Kind: "time", Literal: literal}
	}

	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, &UnitParseError{Kind: "time", Literal: literal}
		}
		fields[i] = n
	}

	if len(parts) == 3 {
		minutes := fields[0]*60 + fields[1]
		if fields[2] > 0 {
			minutes++
		}
		return minutes, nil
	}
	minutes := fields[0]
	if fields[1] > 0 {
		minutes++
	}
	return minutes, nil
}

package extender

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// timeToken matches the first time=<value> field of an ffmpeg stats or -progress line.
// out_time= lines from -progress match as well and carry the same value.
var timeToken = regexp.MustCompile(`time=(\S+)`)

// ParseProgress converts the elapsed time reported on line into a percentage of totalSeconds.
// ok is false when the line carries no usable time or totalSeconds is not positive.
func ParseProgress(line string, totalSeconds float64) (int, bool) {
	if totalSeconds <= 0 || math.IsNaN(totalSeconds) || math.IsInf(totalSeconds, 0) {
		return 0, false
	}

	m := timeToken.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}

	elapsed, ok := ParseTimestamp(m[1])
	if !ok {
		return 0, false
	}

	return int(math.Min(100, math.Floor(100*elapsed/totalSeconds))), true
}

// ParseTimestamp parses HH:MM:SS[.fraction] into seconds.
// Negative components, N/A and anything not made of three fields are rejected.
func ParseTimestamp(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}

	var fields [3]float64
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, "+-eE") {
			return 0, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		fields[i] = v
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], true
}

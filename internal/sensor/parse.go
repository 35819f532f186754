package sensor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned when an IMU line cannot be parsed.
var ErrMalformedLine = errors.New("malformed IMU line")

// ParseLine parses a comma separated "ax,ay,az,gx,gy,gz" line.
// Surrounding whitespace is ignored.
func ParseLine(line string) (Reading, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return Reading{}, fmt.Errorf("%w: want 6 fields, got %d", ErrMalformedLine, len(fields))
	}

	var vals [6]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Reading{}, fmt.Errorf("%w: field %d: %v", ErrMalformedLine, i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{}, fmt.Errorf("%w: field %d is not finite", ErrMalformedLine, i+1)
		}
		vals[i] = v
	}

	return Reading{
		Accel: [3]float64{vals[0], vals[1], vals[2]},
		Gyro:  [3]float64{vals[3], vals[4], vals[5]},
	}, nil
}

// Package timex provides duration helpers for TTL configuration values that
// use a whole-day suffix such as "1d" or "30d", which time.ParseDuration does
// not understand.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is the unit behind the "d" suffix.
const Day = 24 * time.Hour

// Days converts a whole number of days into a time.Duration.
func Days(n int) time.Duration {
	return time.Duration(n) * Day
}

// ParseDuration accepts everything time.ParseDuration does plus a whole-day
// form: "1d", "30d". Mixed forms like "1d12h" are not supported.
func ParseDuration(s string) (time.Duration, error) {
	if v, ok := strings.CutSuffix(s, "d"); ok && !strings.ContainsAny(v, "hmsuµn") {
		days, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return Days(days), nil
	}
	return time.ParseDuration(s)
}

// Duration is a time.Duration that unmarshals from JSON strings ("30d",
// "45m") or integer nanoseconds. It is used by configuration DTOs; runtime
// structs keep plain time.Duration.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

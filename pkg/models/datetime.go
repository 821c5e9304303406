package models

import (
	"fmt"
	"strconv"
	"time"
)

// DateTimeLayout is the wire format of every timestamp: a local date-time with second precision.
const DateTimeLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{DateTimeLayout, "2006-01-02T15:04", time.RFC3339}

// LocalDateTime is a time.Time that travels as yyyy-MM-ddTHH:mm:ss in the server's zone.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.In(time.Local).Truncate(time.Second)}
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.In(time.Local).Format(DateTimeLayout))), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	s, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("datetime must be a string: %w", err)
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t LocalDateTime) String() string {
	return t.In(time.Local).Format(DateTimeLayout)
}

// ParseDateTime accepts the wire layout, the minute-precision variant and RFC 3339.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed.Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q, expected %s", s, "yyyy-MM-ddTHH:mm:ss")
}

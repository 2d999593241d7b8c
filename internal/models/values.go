package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var jsonNull = []byte("null")

// Date is a calendar date read leniently from form input. Values that cannot
// be parsed are kept verbatim and reported as invalid instead of failing the
// whole decode.
type Date struct {
	t     time.Time
	raw   string
	valid bool
}

func NewDate(t time.Time) Date {
	return Date{t: t, valid: !t.IsZero()}
}

// ParseDate accepts anything cast.ToTimeE understands.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return Date{raw: s}
	}
	return Date{t: t, raw: s, valid: true}
}

func (d Date) Time() (time.Time, bool) {
	return d.t, d.valid
}

func (d Date) IsZero() bool {
	return !d.valid && d.raw == ""
}

func (d Date) Valid() bool {
	return d.valid
}

func (d Date) Raw() string {
	return d.raw
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*d = Date{}
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	// Numbers are kept raw: a form value like 20250501 is not an epoch.
	s, ok := v.(string)
	if !ok {
		*d = Date{raw: string(bytes.TrimSpace(b))}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	switch {
	case d.valid:
		return json.Marshal(d.t.Format("2006-01-02"))
	case d.raw != "":
		return json.Marshal(d.raw)
	default:
		return jsonNull, nil
	}
}

// Money is a dollar amount that may arrive as a JSON number or a string.
type Money struct {
	value float64
	raw   string
	valid bool
}

func NewMoney(v float64) Money {
	return Money{value: v, valid: finite(v)}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ParseMoney(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	clean := strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := cast.ToFloat64E(clean)
	if err != nil || !finite(v) {
		return Money{raw: s}
	}
	return Money{value: v, raw: s, valid: true}
}

func (m Money) Float64() (float64, bool) {
	return m.value, m.valid
}

func (m Money) IsZero() bool {
	return !m.valid && m.raw == ""
}

func (m *Money) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*m = Money{}
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		*m = ParseMoney(s)
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || !finite(f) {
		*m = Money{raw: string(b)}
		return nil
	}
	*m = NewMoney(f)
	return nil
}

// MarshalJSON emits null for unparsable amounts so schema validation can
// reject them by type.
func (m Money) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return jsonNull, nil
	}
	return json.Marshal(m.value)
}

// Text accepts a JSON string, number or bool and keeps its string form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*t = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string {
	return string(t)
}

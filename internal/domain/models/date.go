package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	formDateLayout = "2006-01-02"
	wireDateLayout = "02012006"
)

// Date is a calendar date without time of day. Forms use YYYY-MM-DD, the API uses DDMMYYYY.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if !d.valid() {
		return Date{}, fmt.Errorf("invalid date: %04d-%02d-%02d", year, int(month), day)
	}
	return d, nil
}

func ParseFormDate(s string) (Date, error) {
	return parseDate(formDateLayout, s)
}

func ParseWireDate(s string) (Date, error) {
	return parseDate(wireDateLayout, s)
}

func parseDate(layout, s string) (Date, error) {
	if len(s) != len(layout) {
		return Date{}, fmt.Errorf("invalid date %q, expected layout %s", s, layout)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Date())
}

// FormToWire converts YYYY-MM-DD into DDMMYYYY.
func FormToWire(s string) (string, error) {
	d, err := ParseFormDate(s)
	if err != nil {
		return "", err
	}
	return d.WireString(), nil
}

// WireToForm converts DDMMYYYY into YYYY-MM-DD.
func WireToForm(s string) (string, error) {
	d, err := ParseWireDate(s)
	if err != nil {
		return "", err
	}
	return d.FormString(), nil
}

func (d Date) FormString() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) WireString() string {
	return fmt.Sprintf("%02d%02d%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return d.FormString()
}

func (d Date) valid() bool {
	if d.Year < 1 || d.Year > 9999 {
		return false
	}
	t := d.Time()
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.WireString())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseWireDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// BloodType is one of the four ABO groups accepted by the fortune API.
type BloodType string

const (
	BloodTypeA  BloodType = "A"
	BloodTypeB  BloodType = "B"
	BloodTypeAB BloodType = "AB"
	BloodTypeO  BloodType = "O"
)

// BloodTypes lists the selectable groups in picker order.
var BloodTypes = []BloodType{BloodTypeA, BloodTypeB, BloodTypeAB, BloodTypeO}

// ParseBloodType accepts any casing and surrounding whitespace.
func ParseBloodType(s string) (BloodType, error) {
	bt := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range BloodTypes {
		if bt == known {
			return bt, nil
		}
	}
	return "", &ValidationError{
		Field:   "bloodType",
		Key:     MsgInvalidBloodType,
		Message: fmt.Sprintf("unknown blood type %q", s),
	}
}

// YearMonthDay is a calendar date without time or zone.
type YearMonthDay struct {
	Year  int `json:"year" mapstructure:"year"`
	Month int `json:"month" mapstructure:"month"`
	Day   int `json:"day" mapstructure:"day"`
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) YearMonthDay {
	y, m, d := t.Date()
	return YearMonthDay{Year: y, Month: int(m), Day: d}
}

// Valid reports whether the date exists in the proleptic Gregorian calendar.
func (d YearMonthDay) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

func (d YearMonthDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FortuneRequest is the profile sent to the fortune API.
// Values are only produced by NewFortuneRequest and are never mutated afterwards.
type FortuneRequest struct {
	Name      string       `json:"name"`
	Birthday  YearMonthDay `json:"birthday"`
	BloodType BloodType    `json:"bloodType"`
	Today     YearMonthDay `json:"today"`
}

// NewFortuneRequest validates the form values and builds a request.
// The first failing field is reported as a *ValidationError.
func NewFortuneRequest(name string, birthday YearMonthDay, bloodType string, today YearMonthDay) (*FortuneRequest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Key: MsgNameRequired, Message: "name is required"}
	}
	if !birthday.Valid() {
		return nil, &ValidationError{
			Field:   "birthday",
			Key:     MsgInvalidBirthday,
			Message: fmt.Sprintf("birthday %s is not a calendar date", birthday),
		}
	}
	bt, err := ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if !today.Valid() {
		return nil, &ValidationError{
			Field:   "today",
			Key:     MsgInvalidToday,
			Message: fmt.Sprintf("today %s is not a calendar date", today),
		}
	}
	return &FortuneRequest{
		Name:      name,
		Birthday:  birthday,
		BloodType: bt,
		Today:     today,
	}, nil
}

// Form is the raw, unvalidated input collected by a presentation layer.
type Form struct {
	Name      string       `json:"name" mapstructure:"name"`
	Birthday  YearMonthDay `json:"birthday" mapstructure:"birthday"`
	BloodType string       `json:"bloodType" mapstructure:"blood_type"`
	Today     YearMonthDay `json:"today" mapstructure:"today"`
}

// Request validates the form.
func (f Form) Request() (*FortuneRequest, error) {
	return NewFortuneRequest(f.Name, f.Birthday, f.BloodType, f.Today)
}

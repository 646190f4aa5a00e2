package domain

import "fmt"

// SavedResultsKey is the fixed key under which the latest result is persisted.
const SavedResultsKey = "savedResults"

// MonthDay is a recurring day of the year, such as a prefecture's citizen day.
type MonthDay struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Valid allows Feb 29 since the value recurs yearly.
func (md MonthDay) Valid() bool {
	return YearMonthDay{Year: 2000, Month: md.Month, Day: md.Day}.Valid()
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", md.Month, md.Day)
}

// FortuneResult is the prefecture returned by the fortune API.
type FortuneResult struct {
	Name         string    `json:"name"`
	Capital      string    `json:"capital"`
	CitizenDay   *MonthDay `json:"citizen_day,omitempty"`
	HasCoastLine bool      `json:"has_coast_line"`
	LogoURL      string    `json:"logo_url"`
	Brief        string    `json:"brief"`
}

// Clone returns a deep copy so the caller cannot alias the citizen day.
func (r *FortuneResult) Clone() *FortuneResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.CitizenDay != nil {
		md := *r.CitizenDay
		c.CitizenDay = &md
	}
	return &c
}

package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aretw0/fatefinder/pkg/domain"
)

type wireMonthDay struct {
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// Decode parses a response body strictly. Every required field must be
// present with the right JSON type; citizen_day may be absent or null.
func Decode(body []byte) (*domain.FortuneResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &domain.DecodingError{Err: err}
	}
	if fields == nil {
		return nil, &domain.DecodingError{Err: errors.New("body is null")}
	}

	var res domain.FortuneResult
	for _, f := range []struct {
		name string
		dst  any
	}{
		{"name", &res.Name},
		{"capital", &res.Capital},
		{"has_coast_line", &res.HasCoastLine},
		{"logo_url", &res.LogoURL},
		{"brief", &res.Brief},
	} {
		if err := required(fields, f.name, f.dst); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(res.LogoURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, &domain.DecodingError{Field: "logo_url", Err: fmt.Errorf("not an absolute URI: %q", res.LogoURL)}
	}

	if raw, ok := fields["citizen_day"]; ok && !isNull(raw) {
		var md wireMonthDay
		if err := json.Unmarshal(raw, &md); err != nil {
			return nil, &domain.DecodingError{Field: "citizen_day", Err: err}
		}
		if md.Month == nil || md.Day == nil {
			return nil, &domain.DecodingError{Field: "citizen_day", Err: errors.New("month and day are required")}
		}
		cd := domain.MonthDay{Month: *md.Month, Day: *md.Day}
		if !cd.Valid() {
			return nil, &domain.DecodingError{Field: "citizen_day", Err: fmt.Errorf("invalid month/day %s", cd)}
		}
		res.CitizenDay = &cd
	}

	return &res, nil
}

func required(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return &domain.DecodingError{Field: name, Err: errors.New("missing")}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &domain.DecodingError{Field: name, Err: err}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

package mcp

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type submitArgs struct {
	domain.Form `mapstructure:",squash"`
	Wait        *bool `mapstructure:"wait"`
}

// decodeArgs maps tool arguments onto out. Dates may be given as
// "YYYY-MM-DD" strings or as {year, month, day} objects.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       dateHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

var yearMonthDayType = reflect.TypeOf(domain.YearMonthDay{})

// dateHook parses loosely; calendar validity is checked by the domain so the
// caller gets a ValidationError.
func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != yearMonthDayType || from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return domain.YearMonthDay{}, nil
	}
	var d domain.YearMonthDay
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &d.Month, &d.Day); err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return d, nil
}

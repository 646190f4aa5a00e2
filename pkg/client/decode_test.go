package client_test

import (
	"errors"
	"testing"

	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantErr   bool
	}{
		{
			name: "without citizen day",
			body: `{"name":"奈良県","capital":"奈良市","has_coast_line":false,"logo_url":"https://example.com/nara.png","brief":"b"}`,
		},
		{
			name: "null citizen day",
			body: `{"name":"奈良県","capital":"奈良市","citizen_day":null,"has_coast_line":false,"logo_url":"https://example.com/nara.png","brief":"b"}`,
		},
		{
			name:      "missing capital",
			body:      `{"name":"奈良県","has_coast_line":false,"logo_url":"https://example.com/nara.png","brief":"b"}`,
			wantErr:   true,
			wantField: "capital",
		},
		{
			name:      "coastline as string",
			body:      `{"name":"奈良県","capital":"奈良市","has_coast_line":"false","logo_url":"https://example.com/nara.png","brief":"b"}`,
			wantErr:   true,
			wantField: "has_coast_line",
		},
		{
			name:      "relative logo url",
			body:      `{"name":"奈良県","capital":"奈良市","has_coast_line":false,"logo_url":"/nara.png","brief":"b"}`,
			wantErr:   true,
			wantField: "logo_url",
		},
		{
			name:      "impossible citizen day",
			body:      `{"name":"奈良県","capital":"奈良市","citizen_day":{"month":2,"day":30},"has_coast_line":false,"logo_url":"https://example.com/nara.png","brief":"b"}`,
			wantErr:   true,
			wantField: "citizen_day",
		},
		{
			name:    "not json",
			body:    `<html>oops</html>`,
			wantErr: true,
		},
		{
			name:    "json array",
			body:    `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.Decode([]byte(tt.body))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "奈良県", res.Name)
				assert.Nil(t, res.CitizenDay)
				return
			}
			require.Error(t, err)
			var de *domain.DecodingError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantField, de.Field)
		})
	}
}

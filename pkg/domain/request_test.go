package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFortuneRequest(t *testing.T) {
	birthday := domain.YearMonthDay{Year: 2000, Month: 1, Day: 1}
	today := domain.YearMonthDay{Year: 2024, Month: 1, Day: 8}

	t.Run("Valid", func(t *testing.T) {
		req, err := domain.NewFortuneRequest("  Yumemi ", birthday, "a", today)
		require.NoError(t, err)
		assert.Equal(t, "Yumemi", req.Name)
		assert.Equal(t, domain.BloodTypeA, req.BloodType)
		assert.Equal(t, birthday, req.Birthday)
		assert.Equal(t, today, req.Today)
	})

	cases := []struct {
		name      string
		input     string
		birthday  domain.YearMonthDay
		bloodType string
		today     domain.YearMonthDay
		field     string
		key       string
	}{
		{"EmptyName", "", birthday, "A", today, "name", domain.MsgNameRequired},
		{"BlankName", "   ", birthday, "A", today, "name", domain.MsgNameRequired},
		{"Feb30", "Yumemi", domain.YearMonthDay{Year: 2001, Month: 2, Day: 30}, "A", today, "birthday", domain.MsgInvalidBirthday},
		{"NonLeapFeb29", "Yumemi", domain.YearMonthDay{Year: 2023, Month: 2, Day: 29}, "A", today, "birthday", domain.MsgInvalidBirthday},
		{"Month13", "Yumemi", birthday, "A", domain.YearMonthDay{Year: 2024, Month: 13, Day: 1}, "today", domain.MsgInvalidToday},
		{"ZeroToday", "Yumemi", birthday, "A", domain.YearMonthDay{}, "today", domain.MsgInvalidToday},
		{"UnknownBloodType", "Yumemi", birthday, "C", today, "bloodType", domain.MsgInvalidBloodType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := domain.NewFortuneRequest(tc.input, tc.birthday, tc.bloodType, tc.today)
			assert.Nil(t, req)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.key, verr.Key)
		})
	}
}

func TestYearMonthDay_Valid(t *testing.T) {
	assert.True(t, domain.YearMonthDay{Year: 2024, Month: 2, Day: 29}.Valid())
	assert.False(t, domain.YearMonthDay{Year: 2024, Month: 4, Day: 31}.Valid())
	assert.False(t, domain.YearMonthDay{Year: 0, Month: 1, Day: 1}.Valid())
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, time.January, 8, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, domain.YearMonthDay{Year: 2024, Month: 1, Day: 8}, domain.DateOf(ts))
}

func TestParseBloodType(t *testing.T) {
	for _, in := range []string{"ab", "AB", " Ab "} {
		bt, err := domain.ParseBloodType(in)
		require.NoError(t, err)
		assert.Equal(t, domain.BloodTypeAB, bt)
	}
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeepsWallClockDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2024, 3, 31, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), Day(late))
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.December, 31},
		{2024, time.April, 30},
	}

	for _, tt := range tests {
		r := MonthRange(tt.year, tt.month)
		assert.Equal(t, 1, r.From.Day())
		assert.Equal(t, tt.month, r.To.Month())
		assert.Equal(t, tt.days, r.Days(), "%d-%02d", tt.year, tt.month)
	}
}

func TestParseMonth(t *testing.T) {
	r, err := ParseMonth("2024-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), r.To)

	_, err = ParseMonth("May 2024")
	assert.Error(t, err)
}

func TestDateRangeContains(t *testing.T) {
	r := NewDateRange(
		time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	)

	assert.True(t, r.Valid())
	assert.Equal(t, 3, r.Days())
	assert.True(t, r.Contains(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 5, 3, 22, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)))
}

func TestDateRangeInvalid(t *testing.T) {
	backwards := NewDateRange(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, backwards.Valid())
	assert.Equal(t, 0, backwards.Days())
	assert.False(t, DateRange{}.Valid())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2024, 5, 2, 13, 0, 0, 0, time.UTC))

	data, err := json.Marshal(struct {
		Date Date `json:"date"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-05-02"}`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-02"`), &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"02/05/2024"`), &back))
}

func TestDateScan(t *testing.T) {
	want := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	for _, src := range []interface{}{
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.FixedZone("", 0)),
		[]byte("2024-05-02"),
		"2024-05-02T00:00:00Z",
	} {
		var d Date
		require.NoError(t, d.Scan(src), "%T", src)
		assert.Equal(t, want, d.Time)
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

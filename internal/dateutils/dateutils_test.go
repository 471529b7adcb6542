package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayoutISO, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNormalizeISO(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-01-05", want: "2024-01-05"},
		{in: " 05/01/2024 ", want: "2024-01-05"},
		{in: "05/01/2024 13:45", want: "2024-01-05"},
		{in: "5 Jan 2024", want: "2024-01-05"},
		{in: "05-Jan-2024", want: "2024-01-05"},
		{in: "2024-01-05 08:30:00", want: "2024-01-05"},
		{in: "05.01.2024", want: "2024-01-05"},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "31/02/2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeISO(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekBoundaries(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	assert.Equal(t, "2024-03-04", ToISODate(StartOfWeek(date("2024-03-06"))))
	assert.Equal(t, "2024-03-10", ToISODate(EndOfWeek(date("2024-03-06"))))
	// Monday and Sunday map to their own week.
	assert.Equal(t, "2024-03-04", ToISODate(StartOfWeek(date("2024-03-04"))))
	assert.Equal(t, "2024-03-04", ToISODate(StartOfWeek(date("2024-03-10"))))
}

func TestMonthBoundaries(t *testing.T) {
	assert.Equal(t, "2024-02-29", ToISODate(EndOfMonth(date("2024-02-10"))))
	assert.Equal(t, "2024-01-31", ToISODate(EndOfPreviousMonth(date("2024-02-10"))))
	assert.Equal(t, "2024-02", MonthKey(date("2024-02-10")))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 1, MonthsBetween(date("2024-03-01"), date("2024-03-31")))
	assert.Equal(t, 3, MonthsBetween(date("2024-01-15"), date("2024-03-02")))
	assert.Equal(t, 13, MonthsBetween(date("2023-01-01"), date("2024-01-01")))
	assert.Equal(t, 0, MonthsBetween(date("2024-05-01"), date("2024-03-01")))
}

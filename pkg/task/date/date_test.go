package date

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:00", Clock{9, 0}, false},
		{"21:30", Clock{21, 30}, false},
		{"9:05", Clock{9, 5}, false},
		{" 00:00 ", Clock{0, 0}, false},
		{"23:59", Clock{23, 59}, false},
		{"24:00", Clock{}, true},
		{"12:60", Clock{}, true},
		{"12:5", Clock{}, true},
		{"1200", Clock{}, true},
		{"ab:cd", Clock{}, true},
		{"+9:00", Clock{}, true},
		{"-0:00", Clock{}, true},
		{"09:+5", Clock{}, true},
		{"9: 5", Clock{}, true},
		{"", Clock{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseClock(tt.in)
			is.Equal(err != nil, tt.wantErr)
			is.Equal(got, tt.want)
		})
	}
}

func TestClock_String(t *testing.T) {
	is := is.New(t)
	is.Equal(Clock{9, 5}.String(), "09:05")
}

func TestClock_Next(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("later today", func(t *testing.T) {
		is := is.New(t)
		is.Equal(Clock{21, 0}.Next(now), time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC))
	})
	t.Run("already passed", func(t *testing.T) {
		is := is.New(t)
		is.Equal(Clock{9, 0}.Next(now), time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC))
	})
	t.Run("exactly now", func(t *testing.T) {
		is := is.New(t)
		is.Equal(Clock{12, 0}.Next(now), time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))
	})
	t.Run("end of month", func(t *testing.T) {
		is := is.New(t)
		last := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
		is.Equal(Clock{8, 0}.Next(last), time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC))
	})
}

func TestSameDay(t *testing.T) {
	is := is.New(t)
	loc := time.FixedZone("UTC+2", 2*60*60)
	lateUTC := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC) // 01:00 on the 11th in loc
	is.True(!SameDay(lateUTC, time.Date(2026, 3, 10, 12, 0, 0, 0, loc), loc))
	is.True(SameDay(lateUTC, time.Date(2026, 3, 11, 12, 0, 0, 0, loc), loc))
	is.True(SameDay(lateUTC, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), time.UTC))
}

package function

import (
	"testing"
	"time"

	"github.com/ncobase/formula/types"
)

// fixedCtx pins the evaluation clock to a Saturday afternoon UTC
func fixedCtx() *types.Context {
	ctx := types.NewContext()
	ctx.Now = time.Date(2024, 6, 1, 15, 30, 45, 0, time.UTC) // Saturday
	return ctx
}

func TestNowAndToday(t *testing.T) {
	ctx := fixedCtx()
	now := callCtx(t, ctx, "NOW").(time.Time)
	if !now.Equal(ctx.Now) {
		t.Errorf("NOW = %v, want %v", now, ctx.Now)
	}
	today := callCtx(t, ctx, "TODAY").(time.Time)
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !today.Equal(want) {
		t.Errorf("TODAY = %v, want %v", today, want)
	}
}

func TestTodayHonorsTimezone(t *testing.T) {
	ctx := fixedCtx()
	ctx.Timezone = "America/New_York" // 11:30 local, still June 1st
	today := callCtx(t, ctx, "TODAY").(time.Time)
	if today.Day() != 1 || today.Hour() != 0 {
		t.Errorf("TODAY in New York = %v", today)
	}
}

func TestDateConstruction(t *testing.T) {
	d := call(t, "DATE", 2024.0, 6.0, 1.0).(time.Time)
	if d.Year() != 2024 || d.Month() != time.June || d.Day() != 1 {
		t.Errorf("DATE = %v", d)
	}
	dt := call(t, "DATETIME", 2024.0, 6.0, 1.0, 13.0, 30.0).(time.Time)
	if dt.Hour() != 13 || dt.Minute() != 30 || dt.Second() != 0 {
		t.Errorf("DATETIME = %v", dt)
	}
}

func TestDateParts(t *testing.T) {
	date := time.Date(2024, 6, 1, 13, 30, 45, 0, time.UTC)
	tests := []struct {
		name string
		want float64
	}{
		{"YEAR", 2024}, {"MONTH", 6}, {"DAY", 1},
		{"HOUR", 13}, {"MINUTE", 30}, {"SECOND", 45},
	}
	for _, tt := range tests {
		if got := call(t, tt.name, date); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDatePartAcceptsString(t *testing.T) {
	if got := call(t, "YEAR", "2024-06-01"); got != 2024.0 {
		t.Errorf("YEAR(string) = %v", got)
	}
	callErr(t, "YEAR", "not a date")
}

func TestWeekday(t *testing.T) {
	saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	if got := call(t, "WEEKDAY", saturday); got != 7.0 {
		t.Errorf("WEEKDAY(sat) = %v, want 7", got)
	}
	if got := call(t, "WEEKDAY", monday, 2.0); got != 1.0 {
		t.Errorf("WEEKDAY(mon, 2) = %v, want 1", got)
	}
	if got := call(t, "WEEKDAY", sunday, 2.0); got != 7.0 {
		t.Errorf("WEEKDAY(sun, 2) = %v, want 7", got)
	}
	if got := call(t, "WEEKDAY", monday, 3.0); got != 0.0 {
		t.Errorf("WEEKDAY(mon, 3) = %v, want 0", got)
	}
}

func TestDateAdd(t *testing.T) {
	date := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		amount float64
		unit   string
		want   time.Time
	}{
		{1, "days", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{2, "hours", time.Date(2024, 1, 31, 2, 0, 0, 0, time.UTC)},
		{1, "years", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
		{-1, "d", time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := call(t, "DATEADD", date, tt.amount, tt.unit).(time.Time)
		if !got.Equal(tt.want) {
			t.Errorf("DATEADD(%v, %v, %s) = %v, want %v", date, tt.amount, tt.unit, got, tt.want)
		}
	}
	callErr(t, "DATEADD", date, 1.0, "fortnights")
}

func TestDateDiff(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	if got := call(t, "DATEDIFF", start, end, "days"); got != 59.0 {
		t.Errorf("DATEDIFF days = %v, want 59", got)
	}
	// End day is before the start day in the month, so only one whole month.
	if got := call(t, "DATEDIFF", start, end, "months"); got != 1.0 {
		t.Errorf("DATEDIFF months = %v, want 1", got)
	}
	if got := call(t, "DATEDIFF", end, start, "days"); got != -59.0 {
		t.Errorf("DATEDIFF reversed = %v, want -59", got)
	}
	if got := call(t, "DATEDIFF", start, start.Add(90*time.Minute), "hours"); got != 1.0 {
		t.Errorf("DATEDIFF hours = %v, want 1", got)
	}
}

func TestEOMonth(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := call(t, "EOMONTH", date).(time.Time); got.Day() != 31 {
		t.Errorf("EOMONTH = %v", got)
	}
	// February 2024 was a leap month.
	if got := call(t, "EOMONTH", date, 1.0).(time.Time); got.Day() != 29 {
		t.Errorf("EOMONTH(+1) = %v", got)
	}
}

func TestWorkday(t *testing.T) {
	friday := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	got := call(t, "WORKDAY", friday, 1.0).(time.Time)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) // Monday
	if !got.Equal(want) {
		t.Errorf("WORKDAY(fri, 1) = %v, want %v", got, want)
	}
	back := call(t, "WORKDAY", friday, -5.0).(time.Time)
	if back.Weekday() == time.Saturday || back.Weekday() == time.Sunday {
		t.Errorf("WORKDAY backwards landed on %v", back.Weekday())
	}
}

func TestNetworkDays(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	if got := call(t, "NETWORKDAYS", monday, sunday); got != 5.0 {
		t.Errorf("NETWORKDAYS = %v, want 5", got)
	}
	if got := call(t, "NETWORKDAYS", sunday, monday); got != -5.0 {
		t.Errorf("NETWORKDAYS reversed = %v, want -5", got)
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC)
	if got := call(t, "FORMATDATE", date, "YYYY/MM/DD HH:mm"); got != "2024/06/01 09:05" {
		t.Errorf("FORMATDATE = %v", got)
	}
}

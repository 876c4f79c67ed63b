package function

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncobase/formula/types"
)

func registerDate(r *Registry) {
	mustRegister(r,
		&Descriptor{
			Name: "NOW", Category: CategoryDate, Description: "Current date and time of the evaluation context",
			MinArgs: 0, MaxArgs: 0, ReturnType: "date",
			Impl: func(_ []types.Value, ctx *types.Context) (types.Value, error) {
				return ctx.Now.In(ctx.Location()), nil
			},
		},
		&Descriptor{
			Name: "TODAY", Category: CategoryDate, Description: "Current date at midnight in the context timezone",
			MinArgs: 0, MaxArgs: 0, ReturnType: "date",
			Impl: func(_ []types.Value, ctx *types.Context) (types.Value, error) {
				now := ctx.Now.In(ctx.Location())
				return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
			},
		},
		&Descriptor{
			Name: "DATE", Category: CategoryDate, Description: "Build a date from year, month, day",
			Args:    []ArgSpec{{Name: "year", Type: "number"}, {Name: "month", Type: "number"}, {Name: "day", Type: "number"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "date",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				return time.Date(
					int(types.ToNumber(args[0])), time.Month(types.ToNumber(args[1])), int(types.ToNumber(args[2])),
					0, 0, 0, 0, ctx.Location()), nil
			},
		},
		&Descriptor{
			Name: "DATETIME", Category: CategoryDate, Description: "Build a timestamp from year, month, day, hour, minute, second",
			Args: []ArgSpec{
				{Name: "year", Type: "number"}, {Name: "month", Type: "number"}, {Name: "day", Type: "number"},
				{Name: "hour", Type: "number"}, {Name: "minute", Type: "number"}, {Name: "second", Type: "number"},
			},
			MinArgs: 3, MaxArgs: 6, ReturnType: "date",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				part := func(i int) int {
					if len(args) > i {
						return int(types.ToNumber(args[i]))
					}
					return 0
				}
				return time.Date(part(0), time.Month(part(1)), part(2), part(3), part(4), part(5), 0, ctx.Location()), nil
			},
		},
		datePart("YEAR", "Year of a date", func(t time.Time) float64 { return float64(t.Year()) }),
		datePart("MONTH", "Month of a date (1-12)", func(t time.Time) float64 { return float64(t.Month()) }),
		datePart("DAY", "Day of the month of a date", func(t time.Time) float64 { return float64(t.Day()) }),
		datePart("HOUR", "Hour of a timestamp (0-23)", func(t time.Time) float64 { return float64(t.Hour()) }),
		datePart("MINUTE", "Minute of a timestamp", func(t time.Time) float64 { return float64(t.Minute()) }),
		datePart("SECOND", "Second of a timestamp", func(t time.Time) float64 { return float64(t.Second()) }),
		&Descriptor{
			Name: "WEEKDAY", Category: CategoryDate, Description: "Day of the week; mode 1 is Sunday=1, mode 2 Monday=1, mode 3 Monday=0",
			Args:    []ArgSpec{{Name: "date", Type: "date"}, {Name: "mode", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				mode := 1
				if len(args) > 1 {
					mode = int(types.ToNumber(args[1]))
				}
				wd := int(t.Weekday()) // Sunday=0
				switch mode {
				case 2:
					if wd == 0 {
						return float64(7), nil
					}
					return float64(wd), nil
				case 3:
					return float64((wd + 6) % 7), nil
				default:
					return float64(wd + 1), nil
				}
			},
		},
		&Descriptor{
			Name: "WEEKNUM", Category: CategoryDate, Description: "Week number of the year; the week containing January 1st is week 1",
			Args:    []ArgSpec{{Name: "date", Type: "date"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				jan1 := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
				offset := int(jan1.Weekday())
				return float64((t.YearDay()+offset-1)/7 + 1), nil
			},
		},
		&Descriptor{
			Name: "ISOWEEKNUM", Category: CategoryDate, Description: "ISO 8601 week number",
			Args:    []ArgSpec{{Name: "date", Type: "date"}},
			MinArgs: 1, MaxArgs: 1, ReturnType: "number",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				_, week := t.ISOWeek()
				return float64(week), nil
			},
		},
		&Descriptor{
			Name: "DATEADD", Category: CategoryDate, Description: "Add an amount of a unit (years, months, days, hours, minutes, seconds) to a date",
			Args:    []ArgSpec{{Name: "date", Type: "date"}, {Name: "amount", Type: "number"}, {Name: "unit", Type: "string"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "date",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				amount := int(types.ToNumber(args[1]))
				unit, err := parseDateUnit(types.ToString(args[2]))
				if err != nil {
					return nil, err
				}
				switch unit {
				case unitYears:
					return t.AddDate(amount, 0, 0), nil
				case unitMonths:
					return t.AddDate(0, amount, 0), nil
				case unitDays:
					return t.AddDate(0, 0, amount), nil
				case unitHours:
					return t.Add(time.Duration(amount) * time.Hour), nil
				case unitMinutes:
					return t.Add(time.Duration(amount) * time.Minute), nil
				default:
					return t.Add(time.Duration(amount) * time.Second), nil
				}
			},
		},
		&Descriptor{
			Name: "DATEDIFF", Category: CategoryDate, Description: "Difference between two dates in a unit, end minus start",
			Args:    []ArgSpec{{Name: "start", Type: "date"}, {Name: "end", Type: "date"}, {Name: "unit", Type: "string"}},
			MinArgs: 3, MaxArgs: 3, ReturnType: "number",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				start, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				end, err := argTime(args[1], ctx)
				if err != nil {
					return nil, err
				}
				unit, err := parseDateUnit(types.ToString(args[2]))
				if err != nil {
					return nil, err
				}
				return dateDiff(start, end, unit), nil
			},
		},
		&Descriptor{
			Name: "EOMONTH", Category: CategoryDate, Description: "Last day of the month, offset by a number of months",
			Args:    []ArgSpec{{Name: "date", Type: "date"}, {Name: "months", Type: "number", Optional: true}},
			MinArgs: 1, MaxArgs: 2, ReturnType: "date",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				months := 0
				if len(args) > 1 {
					months = int(types.ToNumber(args[1]))
				}
				firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months+1, 0)
				return firstOfTarget.AddDate(0, 0, -1), nil
			},
		},
		&Descriptor{
			Name: "WORKDAY", Category: CategoryDate, Description: "Date a number of working days (skipping weekends) from a start date",
			Args:    []ArgSpec{{Name: "start", Type: "date"}, {Name: "days", Type: "number"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "date",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				days := int(types.ToNumber(args[1]))
				step := 1
				if days < 0 {
					step = -1
					days = -days
				}
				for days > 0 {
					t = t.AddDate(0, 0, step)
					if isWeekday(t) {
						days--
					}
				}
				return t, nil
			},
		},
		&Descriptor{
			Name: "NETWORKDAYS", Category: CategoryDate, Description: "Count of working days between two dates, inclusive",
			Args:    []ArgSpec{{Name: "start", Type: "date"}, {Name: "end", Type: "date"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "number",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				start, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				end, err := argTime(args[1], ctx)
				if err != nil {
					return nil, err
				}
				sign := 1.0
				if end.Before(start) {
					start, end = end, start
					sign = -1
				}
				start = truncateDay(start)
				end = truncateDay(end)
				count := 0
				for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
					if isWeekday(t) {
						count++
					}
				}
				return sign * float64(count), nil
			},
		},
		&Descriptor{
			Name: "FORMATDATE", Category: CategoryDate, Description: "Format a date with YYYY MM DD HH mm ss tokens",
			Args:    []ArgSpec{{Name: "date", Type: "date"}, {Name: "format", Type: "string"}},
			MinArgs: 2, MaxArgs: 2, ReturnType: "string",
			Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
				t, err := argTime(args[0], ctx)
				if err != nil {
					return nil, err
				}
				return formatDateTokens(t.In(ctx.Location()), types.ToString(args[1])), nil
			},
		},
	)
}

func datePart(name, description string, extract func(time.Time) float64) *Descriptor {
	return &Descriptor{
		Name: name, Category: CategoryDate, Description: description,
		Args:    []ArgSpec{{Name: "date", Type: "date"}},
		MinArgs: 1, MaxArgs: 1, ReturnType: "number",
		Impl: func(args []types.Value, ctx *types.Context) (types.Value, error) {
			t, err := argTime(args[0], ctx)
			if err != nil {
				return nil, err
			}
			return extract(t.In(ctx.Location())), nil
		},
	}
}

func argTime(v types.Value, ctx *types.Context) (time.Time, error) {
	t, ok := types.ToTime(v)
	if !ok {
		return time.Time{}, fmt.Errorf("cannot interpret %v as a date", v)
	}
	return t.In(ctx.Location()), nil
}

type dateUnit int

const (
	unitYears dateUnit = iota
	unitMonths
	unitDays
	unitHours
	unitMinutes
	unitSeconds
)

func parseDateUnit(s string) (dateUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "years", "year", "y", "yy":
		return unitYears, nil
	case "months", "month", "mo", "m":
		return unitMonths, nil
	case "days", "day", "d", "dd":
		return unitDays, nil
	case "hours", "hour", "h", "hh":
		return unitHours, nil
	case "minutes", "minute", "min", "mi":
		return unitMinutes, nil
	case "seconds", "second", "sec", "s", "ss":
		return unitSeconds, nil
	default:
		return 0, fmt.Errorf("unknown date unit %q", s)
	}
}

func dateDiff(start, end time.Time, unit dateUnit) float64 {
	switch unit {
	case unitYears:
		return float64(calendarMonths(start, end) / 12)
	case unitMonths:
		return float64(calendarMonths(start, end))
	case unitDays:
		return float64(int(end.Sub(start).Hours() / 24))
	case unitHours:
		return float64(int(end.Sub(start).Hours()))
	case unitMinutes:
		return float64(int(end.Sub(start).Minutes()))
	default:
		return float64(int(end.Sub(start).Seconds()))
	}
}

// calendarMonths returns whole calendar months from start to end, negative
// when end precedes start
func calendarMonths(start, end time.Time) int {
	if end.Before(start) {
		return -calendarMonths(end, start)
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

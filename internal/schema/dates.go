package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Mode selects how slash- or dash-separated dates with ambiguous day and month are read.
type Mode string

const (
	// DayFirst reads 01/10/2025 as 1 October 2025.
	DayFirst Mode = "day-first"
	// Ambiguous prefers month-first and falls back to day-first when the month would overflow.
	Ambiguous Mode = "ambiguous"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case DayFirst, Ambiguous:
		return m, nil
	case "":
		return DayFirst, nil
	default:
		return "", fmt.Errorf("unknown date parse mode %q", s)
	}
}

var isoLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04:05",
}

var dayFirstLayouts = withTimes("2/1/2006", "2-1-2006", "2.1.2006", "2/1/06")

var monthFirstLayouts = withTimes("1/2/2006", "1-2-2006", "1.2.2006", "1/2/06")

func withTimes(dates ...string) []string {
	out := make([]string, 0, len(dates)*3)
	for _, d := range dates {
		out = append(out, d, d+" 15:04", d+" 15:04:05")
	}
	return out
}

// ParseDate reads a spreadsheet cell as a calendar date, discarding any time of day.
// Blank or unparseable values report false; they are never an error.
func ParseDate(value string, mode Mode) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	// Excel date serials arrive as plain numbers when cells are read raw.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return midnight(t), true
			}
		}
		return time.Time{}, false
	}

	layouts := make([]string, 0, len(isoLayouts)+len(dayFirstLayouts)+len(monthFirstLayouts))
	layouts = append(layouts, isoLayouts...)
	if mode == Ambiguous {
		layouts = append(layouts, monthFirstLayouts...)
		layouts = append(layouts, dayFirstLayouts...)
	} else {
		layouts = append(layouts, dayFirstLayouts...)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

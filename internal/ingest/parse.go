package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Serials outside this window are treated as plain numbers, not dates
// (roughly 1954 to 2119).
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// dayFirstLayouts are tried before monthFirstLayouts, so "05/03/2024" is
// 5 March. Month-first only wins when day-first is impossible ("03/15/2024").
var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/06 15:04",
	"2/1/06 3:04 PM",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2.1.2006 15:04",
	"2 Jan 2006 15:04",
	"2-Jan-2006 15:04",
	"2 January 2006 15:04",
	"2/1/2006",
	"2-1-2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
	"2006-01-02",
}

var monthFirstLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
	"1/2/06 3:04 PM",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"1/2/2006",
}

// ParseStartTime converts a start-time cell into a wall-clock time in UTC.
// Accepts Excel serial numbers and common textual forms, day-first.
// ok is false when the value cannot be interpreted.
func ParseStartTime(value string) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return time.Time{}, false
		}
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return wallClock(parsed.Round(time.Second)), true
	}

	upper := strings.ToUpper(value)
	for _, layouts := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range layouts {
			if parsed, err := time.Parse(layout, upper); err == nil {
				return wallClock(parsed), true
			}
		}
	}
	return time.Time{}, false
}

// ParseMiles converts a miles cell to a non-negative number.
// Blank cells are 0 without being flagged; anything else unusable is 0 with
// ok=false.
func ParseMiles(value string) (miles float64, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// wallClock drops any zone offset while keeping the displayed clock reading.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

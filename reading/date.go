package reading

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DisplayLayout renders dates as "15-Mar-24".
const DisplayLayout = "02-Jan-06"

// MissingValue is written wherever a date or cell has no value.
const MissingValue = "NA"

// Date is an optional calendar date. The zero value is a missing date.
type Date struct {
	Time  time.Time
	Valid bool
}

func NewDate(value time.Time) Date {
	return Date{Time: time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// Display renders the date in DisplayLayout, or MissingValue when missing.
func (d Date) Display() string {
	if !d.Valid {
		return MissingValue
	}
	return d.Time.Format(DisplayLayout)
}

// Before orders missing dates ahead of every valid date.
func (d Date) Before(other Date) bool {
	switch {
	case !d.Valid:
		return other.Valid
	case !other.Valid:
		return false
	default:
		return d.Time.Before(other.Time)
	}
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"2-1-2006",
	"02-01-06",
	"2-1-06",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/06 15:04",
	"2/1/06 15:04",
	"02-01-2006 15:04",
	"02-Jan-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02/Jan/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 Jan 06",
	"2 Jan 06",
}

// ParseDate reads a day-first date from a cell value. Raw Excel serial numbers
// are accepted as well. Anything unparsable yields a missing Date.
func ParseDate(raw string) Date {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, MissingValue) {
		return Date{}
	}

	if isPlainDecimal(value) {
		serial, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Date{}
		}
		return parseSerial(serial)
	}

	for _, layout := range dayFirstLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return NewDate(parsed)
		}
	}

	return Date{}
}

// Serial dates before 1900-03-01 or past 9999 are treated as plain numbers.
func parseSerial(serial float64) Date {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 61 || serial > 2958465 {
		return Date{}
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return Date{}
	}
	return NewDate(parsed)
}

// isPlainDecimal reports digits with at most one decimal point, so words
// like "nan" or "inf" never reach the serial path.
func isPlainDecimal(value string) bool {
	digits, dots := 0, 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

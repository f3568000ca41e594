package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"hotel/shared/constant"
	"hotel/shared/timezone"
)

const dateLength = len(constant.DateOnlyFormat)

var ErrInvalidDate = errors.New("dates must be in YYYY-MM-DD format")

// Date is a calendar day without a time or zone component. It is bound to Postgres as a
// YYYY-MM-DD literal so the session timezone can never shift it.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts an ISO calendar date. Longer ISO strings such as full timestamps are
// truncated to their date part.
func ParseDate(value string) (Date, error) {
	if len(value) > dateLength {
		value = value[:dateLength]
	}

	parsed, err := time.Parse(constant.DateOnlyFormat, value)
	if err != nil {
		return Date{}, ErrInvalidDate
	}

	return Date{Time: parsed}, nil
}

// Today is the current calendar day in the application timezone.
func Today() Date {
	now := timezone.Now()

	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string {
	return d.Format(constant.DateOnlyFormat)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Nights is the number of nights between d and checkOut.
func (d Date) Nights(checkOut Date) int {
	return int(checkOut.Sub(d.Time).Hours() / 24)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch value := src.(type) {
	case time.Time:
		*d = NewDate(value.Year(), value.Month(), value.Day())

		return nil
	case string:
		return d.scanString(value)
	case []byte:
		return d.scanString(string(value))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(value string) error {
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidDate
	}

	return d.scanString(string(data[1 : len(data)-1]))
}

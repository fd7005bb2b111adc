package xdb

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar day without a time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalised date for y-m-d, so NewDate(2024, 2, 30) is
// March 1st.
func NewDate(y int, m time.Month, d int) Date {
	return DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "2006-01-02". Full timestamps in the layouts accepted by
// the accessors are tolerated and reduced to their calendar day.
func ParseDate(s string) (Date, error) {
	t, err := parseTime(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("xdb: parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Before(o Date) bool { return d.In(time.UTC).Before(o.In(time.UTC)) }
func (d Date) After(o Date) bool  { return d.In(time.UTC).After(o.In(time.UTC)) }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Value implements driver.Valuer as UTC midnight.
func (d Date) Value() (driver.Value, error) { return d.In(time.UTC), nil }

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
	case []byte:
		p, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = p
	default:
		return fmt.Errorf("xdb: cannot scan %T into Date", src)
	}
	return nil
}

// DateTimeOffset is an instant that keeps the UTC offset it was recorded
// with. It is distinct from time.Time so the two map to different tags.
type DateTimeOffset struct {
	time.Time
}

// NewDateTimeOffset wraps t.
func NewDateTimeOffset(t time.Time) DateTimeOffset { return DateTimeOffset{Time: t} }

// Offset returns the offset from UTC.
func (o DateTimeOffset) Offset() time.Duration {
	_, secs := o.Zone()
	return time.Duration(secs) * time.Second
}

func (o DateTimeOffset) String() string { return o.Format(time.RFC3339Nano) }

// Value implements driver.Valuer.
func (o DateTimeOffset) Value() (driver.Value, error) { return o.Time, nil }

// Scan implements sql.Scanner.
func (o *DateTimeOffset) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = DateTimeOffset{}
	case time.Time:
		o.Time = v
	case string:
		return o.scanText(v)
	case []byte:
		return o.scanText(string(v))
	default:
		return fmt.Errorf("xdb: cannot scan %T into DateTimeOffset", src)
	}
	return nil
}

func (o *DateTimeOffset) scanText(s string) error {
	t, err := parseTime(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("xdb: parse date-time offset %q: %w", s, err)
	}
	o.Time = t
	return nil
}

// CurrencyScale is the number of fractional digits a Currency keeps.
const CurrencyScale = 4

// Currency is a monetary amount with four fractional digits.
type Currency struct {
	d decimal.Decimal
}

// NewCurrency rounds d to CurrencyScale digits.
func NewCurrency(d decimal.Decimal) Currency { return Currency{d: d.Round(CurrencyScale)} }

// ParseCurrency parses a plain decimal literal such as "12.3456".
func ParseCurrency(s string) (Currency, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Currency{}, fmt.Errorf("xdb: parse currency %q: %w", s, err)
	}
	return NewCurrency(d), nil
}

// Decimal returns the amount as a decimal.
func (c Currency) Decimal() decimal.Decimal { return c.d }

func (c Currency) Equal(o Currency) bool { return c.d.Equal(o.d) }

func (c Currency) String() string { return c.d.StringFixed(CurrencyScale) }

// Value implements driver.Valuer using the canonical decimal text.
func (c Currency) Value() (driver.Value, error) { return c.String(), nil }

// Scan implements sql.Scanner.
func (c *Currency) Scan(src any) error {
	if src == nil {
		*c = Currency{}
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	*c = NewCurrency(d)
	return nil
}

package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Recurrence holds the five standard fields of a repeating schedule.
// Each field is a literal value, "*", or a comma-separated list of literals.
// Day-of-week uses the 0=Sunday..6=Saturday convention.
type Recurrence struct {
	Minute     string
	Hour       string
	DayOfMonth string
	Month      string
	DayOfWeek  string
}

// Symbolic day names in the trigger scheduler's convention, indexed 0=Sunday.
var dowNames = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var dowNumbers = func() map[string]int {
	m := make(map[string]int, len(dowNames))
	for i, name := range dowNames {
		m[name] = i
	}
	return m
}()

type fieldDomain struct {
	name string
	min  int
	max  int
}

var domains = []fieldDomain{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

// ParseRecurrence validates the five fields and returns a Recurrence.
// A field value outside its domain is rejected here, before anything is
// persisted or registered.
func ParseRecurrence(minute, hour, dayOfMonth, month, dayOfWeek string) (Recurrence, error) {
	r := Recurrence{
		Minute:     strings.TrimSpace(minute),
		Hour:       strings.TrimSpace(hour),
		DayOfMonth: strings.TrimSpace(dayOfMonth),
		Month:      strings.TrimSpace(month),
		DayOfWeek:  strings.TrimSpace(dayOfWeek),
	}

	for i, field := range r.fields() {
		if err := validateField(field, domains[i]); err != nil {
			return Recurrence{}, err
		}
	}

	return r, nil
}

func (r Recurrence) fields() [5]string {
	return [5]string{r.Minute, r.Hour, r.DayOfMonth, r.Month, r.DayOfWeek}
}

func validateField(value string, domain fieldDomain) error {
	if value == "*" {
		return nil
	}
	if value == "" {
		return fmt.Errorf("%s: empty field", domain.name)
	}
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("%s: invalid value %q", domain.name, part)
		}
		if n < domain.min || n > domain.max {
			return fmt.Errorf("%s: value %d out of range %d-%d", domain.name, n, domain.min, domain.max)
		}
	}
	return nil
}

// CronSpec converts the recurrence into the five-field spec the trigger
// scheduler parses. Numeric day-of-week literals become the scheduler's
// symbolic names element-wise, preserving list order.
func (r Recurrence) CronSpec() string {
	return strings.Join([]string{
		r.Minute,
		r.Hour,
		r.DayOfMonth,
		r.Month,
		symbolicDayOfWeek(r.DayOfWeek),
	}, " ")
}

func symbolicDayOfWeek(field string) string {
	if field == "*" {
		return field
	}
	parts := strings.Split(field, ",")
	out := make([]string, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			// ParseRecurrence already rejected this; pass through untouched.
			out[i] = part
			continue
		}
		out[i] = dowNames[n]
	}
	return strings.Join(out, ",")
}

// FromCronSpec is the inverse of CronSpec: it maps a converted spec back to
// the numeric five-field representation used for display and storage.
func FromCronSpec(spec string) (Recurrence, error) {
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return Recurrence{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	dow := fields[4]
	if dow != "*" {
		parts := strings.Split(dow, ",")
		out := make([]string, len(parts))
		for i, part := range parts {
			n, ok := dowNumbers[strings.ToUpper(strings.TrimSpace(part))]
			if !ok {
				return Recurrence{}, fmt.Errorf("day-of-week: unknown name %q", part)
			}
			out[i] = strconv.Itoa(n)
		}
		dow = strings.Join(out, ",")
	}

	return ParseRecurrence(fields[0], fields[1], fields[2], fields[3], dow)
}

// String renders the recurrence in crontab order with numeric day-of-week.
func (r Recurrence) String() string {
	return strings.Join([]string{r.Minute, r.Hour, r.DayOfMonth, r.Month, r.DayOfWeek}, " ")
}

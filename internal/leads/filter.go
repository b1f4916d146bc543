package leads

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Filter is the compiled predicate for a list query: a mapping from
// field name to a single constraint. An empty filter matches all leads.
type Filter map[string]Condition

// Condition is one constraint over a single Lead field.
type Condition interface {
	condition()
}

// Equals matches a string or enum field exactly.
type Equals struct {
	Value string
}

// Contains matches a string field by case-insensitive substring.
type Contains struct {
	Value string
}

// In matches an enum field against a set of values.
type In struct {
	Values []string
}

// EqualsNumber matches a numeric field exactly.
type EqualsNumber struct {
	Value float64
}

// NumberRange bounds a numeric field. Any subset of bounds may be set;
// GT/LT are exclusive, GTE/LTE inclusive.
type NumberRange struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// TimeRange bounds a date field. Any subset of bounds may be set;
// GT/LT are exclusive, GTE/LTE inclusive.
type TimeRange struct {
	GT  *time.Time
	GTE *time.Time
	LT  *time.Time
	LTE *time.Time
}

// EqualsBool matches a boolean field.
type EqualsBool struct {
	Value bool
}

func (Equals) condition()       {}
func (Contains) condition()     {}
func (In) condition()           {}
func (EqualsNumber) condition() {}
func (NumberRange) condition()  {}
func (TimeRange) condition()    {}
func (EqualsBool) condition()   {}

// Field families. Each family shares one set of filter operators.
var (
	stringFilterFields = []string{"email", "company", "city"}
	enumFilterFields   = []string{"status", "source"}
	numberFilterFields = []string{"score", "lead_value"}
	dateFilterFields   = []string{"created_at", "last_activity_at"}
)

// filterFields is the fixed dispatch order, used wherever a Filter has
// to be walked deterministically (SQL building, matching).
var filterFields = []string{
	"email", "company", "city",
	"status", "source",
	"score", "lead_value",
	"created_at", "last_activity_at",
	"is_qualified",
}

// ParseFilter translates raw list-query parameters into a Filter.
// Malformed values never fail the request; they degrade to "no
// constraint" for the field in question.
func ParseFilter(query url.Values) Filter {
	f := Filter{}

	// String fields: equals wins over contains.
	for _, field := range stringFilterFields {
		if v := query.Get(field); v != "" {
			f[field] = Equals{Value: v}
		} else if c := query.Get(field + "_contains"); c != "" {
			f[field] = Contains{Value: c}
		}
	}

	// Enum fields: equals wins over a comma-separated "in" list.
	for _, field := range enumFilterFields {
		if v := query.Get(field); v != "" {
			f[field] = Equals{Value: v}
			continue
		}
		if in := query.Get(field + "_in"); in != "" {
			var values []string
			for _, part := range strings.Split(in, ",") {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
			if len(values) > 0 {
				f[field] = In{Values: values}
			}
		}
	}

	// Numeric fields: an exact match overrides gt/lt/between entirely;
	// otherwise the three merge into a single range.
	for _, field := range numberFilterFields {
		if eq := parseNumber(query.Get(field)); eq != nil {
			f[field] = EqualsNumber{Value: *eq}
			continue
		}
		var r NumberRange
		r.GT = parseNumber(query.Get(field + "_gt"))
		r.LT = parseNumber(query.Get(field + "_lt"))
		if between := query.Get(field + "_between"); between != "" {
			min, max := splitPair(between)
			r.GTE = parseNumber(min)
			r.LTE = parseNumber(max)
		}
		if r.GT != nil || r.GTE != nil || r.LT != nil || r.LTE != nil {
			f[field] = r
		}
	}

	// Date fields: "_on" pins the whole calendar day and silences the
	// other operators; otherwise before/after/between merge.
	for _, field := range dateFilterFields {
		if on := query.Get(field + "_on"); on != "" {
			if d := parseDate(on); d != nil {
				start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
				end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
				f[field] = TimeRange{GTE: &start, LTE: &end}
				continue
			}
		}
		var r TimeRange
		r.LT = parseDate(query.Get(field + "_before"))
		r.GT = parseDate(query.Get(field + "_after"))
		if between := query.Get(field + "_between"); between != "" {
			from, to := splitPair(between)
			r.GTE = parseDate(from)
			r.LTE = parseDate(to)
		}
		if r.GT != nil || r.GTE != nil || r.LT != nil || r.LTE != nil {
			f[field] = r
		}
	}

	// Boolean field: only literal true/false constrain.
	if b := parseBoolean(query.Get("is_qualified")); b != nil {
		f["is_qualified"] = EqualsBool{Value: *b}
	}

	return f
}

// splitPair splits a "low,high" parameter into its trimmed halves.
// A missing half comes back empty and parses to no bound.
func splitPair(s string) (string, string) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) < 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// parseNumber accepts only values parsing to a finite number.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// dateLayouts are tried in order when parsing date parameters. Layouts
// without an offset are interpreted in the process local time zone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

func parseBoolean(s string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return nil
	}
	return &b
}

// Matches evaluates the filter against a lead in process. This is the
// reference semantics; the Postgres repository renders the same filter
// to SQL.
func (f Filter) Matches(l *Lead) bool {
	for field, cond := range f {
		if !matchField(l, field, cond) {
			return false
		}
	}
	return true
}

func matchField(l *Lead, field string, cond Condition) bool {
	switch c := cond.(type) {
	case Equals:
		return l.stringField(field) == c.Value
	case Contains:
		return strings.Contains(
			strings.ToLower(l.stringField(field)),
			strings.ToLower(c.Value),
		)
	case In:
		v := l.stringField(field)
		for _, want := range c.Values {
			if v == want {
				return true
			}
		}
		return false
	case EqualsNumber:
		return l.numberField(field) == c.Value
	case NumberRange:
		n := l.numberField(field)
		if c.GT != nil && !(n > *c.GT) {
			return false
		}
		if c.GTE != nil && !(n >= *c.GTE) {
			return false
		}
		if c.LT != nil && !(n < *c.LT) {
			return false
		}
		if c.LTE != nil && !(n <= *c.LTE) {
			return false
		}
		return true
	case TimeRange:
		t, ok := l.timeField(field)
		if !ok {
			return false
		}
		if c.GT != nil && !t.After(*c.GT) {
			return false
		}
		if c.GTE != nil && t.Before(*c.GTE) {
			return false
		}
		if c.LT != nil && !t.Before(*c.LT) {
			return false
		}
		if c.LTE != nil && t.After(*c.LTE) {
			return false
		}
		return true
	case EqualsBool:
		return l.IsQualified == c.Value
	}
	return true
}

func (l *Lead) stringField(name string) string {
	switch name {
	case "email":
		return l.Email
	case "company":
		return l.Company
	case "city":
		return l.City
	case "status":
		return l.Status
	case "source":
		return l.Source
	}
	return ""
}

func (l *Lead) numberField(name string) float64 {
	switch name {
	case "score":
		return float64(l.Score)
	case "lead_value":
		return l.LeadValue
	}
	return 0
}

func (l *Lead) timeField(name string) (time.Time, bool) {
	switch name {
	case "created_at":
		return l.CreatedAt, true
	case "last_activity_at":
		if l.LastActivityAt == nil {
			return time.Time{}, false
		}
		return *l.LastActivityAt, true
	}
	return time.Time{}, false
}

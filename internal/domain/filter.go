package domain

import (
	"fmt"
	"strings"
	"time"
)

// DatePreset is a named relative date window.
type DatePreset string

// Known date presets.
const (
	PresetToday     DatePreset = "today"
	PresetYesterday DatePreset = "yesterday"
	PresetWeek      DatePreset = "week"
	PresetMonth     DatePreset = "month"
	PresetQuarter   DatePreset = "quarter"
	PresetYear      DatePreset = "year"
)

// DateRange is an explicit creation-date window.
// Both bounds are inclusive; a zero bound imposes no constraint.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filter narrows a candidate set by structured criteria. Within a dimension
// membership is OR; active dimensions are AND-ed together. A zero Filter
// passes every document through.
type Filter struct {
	Types       []DocType
	Collections []string
	Tags        []string
	Sources     []string
	DatePreset  DatePreset
	DateRange   *DateRange
}

// IsZero reports whether no dimension is active.
func (f Filter) IsZero() bool {
	return len(f.Types) == 0 && len(f.Collections) == 0 && len(f.Tags) == 0 &&
		len(f.Sources) == 0 && f.DatePreset == "" && f.DateRange == nil
}

// Validate checks preset names and the preset/range exclusivity rule.
func (f Filter) Validate() error {
	if f.DatePreset != "" && f.DateRange != nil {
		return fmt.Errorf("%w: date_preset and date_range are mutually exclusive", ErrInvalidRequest)
	}
	switch f.DatePreset {
	case "", PresetToday, PresetYesterday, PresetWeek, PresetMonth, PresetQuarter, PresetYear:
	default:
		return fmt.Errorf("%w: unknown date preset %q", ErrInvalidRequest, f.DatePreset)
	}
	return nil
}

// WindowStart resolves a preset to the start of its half-open window
// [start, now). The today and yesterday presets anchor at local midnight;
// the rest are rolling windows measured back from now.
func (p DatePreset) WindowStart(now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PresetToday:
		return midnight, true
	case PresetYesterday:
		return midnight.AddDate(0, 0, -1), true
	case PresetWeek:
		return now.AddDate(0, 0, -7), true
	case PresetMonth:
		return now.AddDate(0, 0, -30), true
	case PresetQuarter:
		return now.AddDate(0, 0, -90), true
	case PresetYear:
		return now.AddDate(0, 0, -365), true
	default:
		return time.Time{}, false
	}
}

// Matches reports whether the document satisfies every active dimension.
func (f Filter) Matches(doc Document, now time.Time) bool {
	if len(f.Types) > 0 && !containsType(f.Types, doc.Type) {
		return false
	}
	if len(f.Collections) > 0 && !containsFold(f.Collections, doc.CollectionID) {
		return false
	}
	if len(f.Sources) > 0 && !containsFold(f.Sources, doc.Source) {
		return false
	}
	if len(f.Tags) > 0 && !f.anyTag(doc) {
		return false
	}
	return f.matchesDate(doc.CreatedAt, now)
}

// anyTag reports whether the document has at least one of the requested tags.
func (f Filter) anyTag(doc Document) bool {
	for _, want := range f.Tags {
		if doc.HasTag(want) {
			return true
		}
	}
	return false
}

func (f Filter) matchesDate(createdAt, now time.Time) bool {
	if f.DatePreset != "" {
		start, ok := f.DatePreset.WindowStart(now)
		if !ok {
			return false
		}
		// Half-open window [start, now).
		return !createdAt.Before(start) && createdAt.Before(now)
	}
	if f.DateRange != nil {
		if !f.DateRange.From.IsZero() && createdAt.Before(f.DateRange.From) {
			return false
		}
		if !f.DateRange.To.IsZero() && createdAt.After(f.DateRange.To) {
			return false
		}
	}
	return true
}

func containsType(set []DocType, t DocType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

package models

// DateFilterKind discriminates the date-filter variants of a search
type DateFilterKind string

const (
	// DateFilterSpecific matches documents dated exactly on the reference date
	DateFilterSpecific DateFilterKind = "specific"
	// DateFilterBefore matches documents dated on or before the end date
	DateFilterBefore DateFilterKind = "before"
	// DateFilterAfter matches documents dated on or after the start date
	DateFilterAfter DateFilterKind = "after"
	// DateFilterRange matches documents dated within [start, end]
	DateFilterRange DateFilterKind = "range"
	// DateFilterLatest matches everything; the filter stage narrows to the
	// most recent survivor(s) afterwards
	DateFilterLatest DateFilterKind = "latest"
)

// DateFilter is a tagged variant over the five filter kinds. The kind fully
// determines which of DateStart/DateEnd are meaningful; use the constructor
// functions so invalid kind/field combinations cannot be built.
type DateFilter struct {
	Kind      DateFilterKind `json:"type"`
	DateStart string         `json:"date_start,omitempty"` // ISO YYYY-MM-DD
	DateEnd   string         `json:"date_end,omitempty"`   // ISO YYYY-MM-DD
}

// LatestFilter matches all dates and narrows to the newest survivor(s)
func LatestFilter() DateFilter {
	return DateFilter{Kind: DateFilterLatest}
}

// SpecificFilter matches documents dated exactly on date. The reference date
// populates both endpoints, mirroring the wire shape the interpreter emits.
func SpecificFilter(date string) DateFilter {
	return DateFilter{Kind: DateFilterSpecific, DateStart: date, DateEnd: date}
}

// BeforeFilter matches documents dated on or before date
func BeforeFilter(date string) DateFilter {
	return DateFilter{Kind: DateFilterBefore, DateEnd: date}
}

// AfterFilter matches documents dated on or after date
func AfterFilter(date string) DateFilter {
	return DateFilter{Kind: DateFilterAfter, DateStart: date}
}

// RangeFilter matches documents dated within [start, end]
func RangeFilter(start, end string) DateFilter {
	return DateFilter{Kind: DateFilterRange, DateStart: start, DateEnd: end}
}

// SearchSpec is the structured output of query interpretation, constructed
// fresh per query and consumed exactly once by the filter stage.
type SearchSpec struct {
	DocumentType Section    `json:"document_type"` // Concrete section or SectionAny
	DateFilter   DateFilter `json:"date_filter"`
	Keywords     []string   `json:"keywords"` // Lowercase terms, may be empty
}

// DefaultSpec is the safest wildcard: all sections, latest, no keywords.
// The interpreter falls back to it on any internal anomaly.
func DefaultSpec() *SearchSpec {
	return &SearchSpec{
		DocumentType: SectionAny,
		DateFilter:   LatestFilter(),
		Keywords:     []string{},
	}
}

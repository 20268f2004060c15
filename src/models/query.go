package models

import "strings"

// Segment names a symbol universe.
type Segment string

const (
	SegmentNifty50   Segment = "NIFTY50"
	SegmentBankNifty Segment = "BANKNIFTY"
)

// IsBroad reports whether the segment is the broad index itself.
func (s Segment) IsBroad() bool {
	return s == SegmentNifty50
}

// -----------------------------------------------------------------------------

// SortField selects the row attribute used to order a page.
type SortField uint8

const (
	_sort_field_beg SortField = iota
	SortByID
	SortByName
	SortByPrice
	SortByPosition
	_sort_field_end
)

func (f SortField) IsAvailable() bool {
	return f > _sort_field_beg && f < _sort_field_end
}

// ParseSortField maps a query value to a sort field. Empty means id.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return SortByID, true
	case "name":
		return SortByName, true
	case "price":
		return SortByPrice, true
	case "position":
		return SortByPosition, true
	}
	return 0, false
}

// ParseSortDesc maps "asc"/"desc" to a descending flag. Empty means ascending.
func ParseSortDesc(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return false, true
	case "desc":
		return true, true
	}
	return false, false
}

// -----------------------------------------------------------------------------

// MRowQuery is one request against a segment.
type MRowQuery struct {
	Segment        Segment
	Scale          Scale
	Search         string
	Position       PositionFilter
	Category       string
	SortBy         SortField
	SortDesc       bool
	Page           int
	PageSize       int
	IncludeCandles bool
}

// MRow is one composed row. Price is nil when no quote is available.
type MRow struct {
	ID              int64          `json:"id"`
	InstrumentToken int64          `json:"instrument_token"`
	TradingSymbol   string         `json:"tradingsymbol"`
	Name            string         `json:"name"`
	Price           *float64       `json:"price"`
	Position        PositionStatus `json:"position"`
	Candles         []MCandle      `json:"candles"`
}

// MRowPage is a paginated row list. Total counts the filtered set before slicing.
type MRowPage struct {
	Items    []MRow `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PricePlaceholder is shown when no display price could be derived
const PricePlaceholder = "Rp -"

// ProductRecord is the canonical product shape produced regardless of upstream shape
type ProductRecord struct {
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	PriceValue *float64 `json:"price_value"`
	URL        string   `json:"url"`
	Image      string   `json:"image"`
}

// UnmarshalJSON accepts price_value stored either as a number or as a numeric string,
// which older cache documents contain.
func (p *ProductRecord) UnmarshalJSON(data []byte) error {
	type plain ProductRecord
	var aux struct {
		plain
		PriceValue json.RawMessage `json:"price_value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*p = ProductRecord(aux.plain)
	p.PriceValue = decodePriceValue(aux.PriceValue)
	if p.Price == "" {
		p.Price = PricePlaceholder
	}
	return nil
}

func decodePriceValue(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return &v
	}
	return nil
}

// Float64Ptr is a small helper for building records with a known numeric price
func Float64Ptr(v float64) *float64 {
	return &v
}

// ResultSource tells where a search result came from
type ResultSource string

const (
	SourceCache    ResultSource = "cache"
	SourceUpstream ResultSource = "upstream"
	SourceNone     ResultSource = "none"
)

// SearchResult is the outcome of a cached product search.
// Err carries a non-fatal fault observed along the way; Items is always usable.
type SearchResult struct {
	Keyword string          `json:"keyword"`
	Items   []ProductRecord `json:"items"`
	Source  ResultSource    `json:"source"`
	Err     error           `json:"-"`
}

// Empty reports whether the search produced no products
func (r SearchResult) Empty() bool {
	return len(r.Items) == 0
}

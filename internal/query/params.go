// Package query turns HTTP list parameters into a store-level filter and
// carries the page envelope returned by list endpoints.
package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*pageSize well inside int. Pages past the last
	// one are empty, so clamping changes no answer.
	MaxPage = 1_000_000
)

// RangeMode selects a relative or custom date window.
type RangeMode string

const (
	RangeAll       RangeMode = "all"
	RangeLastWeek  RangeMode = "lastWeek"
	RangeLastMonth RangeMode = "lastMonth"
	RangeLastYear  RangeMode = "lastYear"
	RangeCustom    RangeMode = "custom"
)

// Params are the client-supplied list options after lenient parsing.
type Params struct {
	Page      int
	PageSize  int
	Label     string
	Range     RangeMode
	StartDate *core.Date
	EndDate   *core.Date
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// FromValues reads list parameters from a query string. labelKey is
// "category" or "source". Values that fail to parse are dropped rather than
// rejected.
func FromValues(v url.Values, labelKey string) Params {
	p := Params{
		Page:     positiveInt(v.Get("page"), DefaultPage),
		PageSize: positiveInt(v.Get("limit"), DefaultPageSize),
		Label:    strings.TrimSpace(v.Get(labelKey)),
		Range:    parseRange(v.Get("dateRange")),
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Range == RangeCustom {
		p.StartDate = optionalDate(v.Get("startDate"))
		p.EndDate = optionalDate(v.Get("endDate"))
	}
	p.MinAmount = optionalDecimal(v.Get("minAmount"))
	p.MaxAmount = optionalDecimal(v.Get("maxAmount"))
	return p
}

// Normalize applies defaults to zero-valued fields and clamps the page
// and page size.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Range == "" {
		p.Range = RangeAll
	}
	return p
}

// Offset is the number of rows skipped before the requested page.
func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

func parseRange(s string) RangeMode {
	switch RangeMode(strings.TrimSpace(s)) {
	case RangeLastWeek:
		return RangeLastWeek
	case RangeLastMonth:
		return RangeLastMonth
	case RangeLastYear:
		return RangeLastYear
	case RangeCustom:
		return RangeCustom
	}
	return RangeAll
}

// positiveInt saturates out-of-range positive input so callers can clamp it.
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n < 1 {
		return def
	}
	return n
}

func optionalDate(s string) *core.Date {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func optionalDecimal(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := core.ParseDecimal(s)
	if err != nil {
		return nil
	}
	return &d
}

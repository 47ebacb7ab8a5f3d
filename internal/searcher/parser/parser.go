package parser

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
)

type QueryType int

const (
	QueryAND QueryType = iota
	QueryOR
)

func (q QueryType) String() string {
	if q == QueryOR {
		return "OR"
	}
	return "AND"
}

// ParseMode accepts "AND" or "OR" in any case.
func ParseMode(mode string) (QueryType, error) {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "AND":
		return QueryAND, nil
	case "OR":
		return QueryOR, nil
	default:
		return QueryAND, apperrors.InvalidSearchMode(mode)
	}
}

// QueryPlan is a whitespace-split query. Words stay raw; normalization
// happens per word during resolution.
type QueryPlan struct {
	Words    []string
	Type     QueryType
	RawQuery string
}

// Parse validates mode before anything else so an unknown mode aborts the
// query even when it has a single word.
func Parse(query string, mode string) (*QueryPlan, error) {
	qt, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return &QueryPlan{
		Words:    strings.Fields(query),
		Type:     qt,
		RawQuery: query,
	}, nil
}

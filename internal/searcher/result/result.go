// Package result holds the per-document match aggregate produced by a
// query and the pure merge used to combine partial results.
package result

import "sort"

// Span is a half-open byte range [Start, End) into a title or a line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Len() int {
	return s.End - s.Start
}

// LineMatch is one matching line. LineNo is 1-based. Spans may overlap or
// repeat until they are merged for rendering.
type LineMatch struct {
	LineNo int    `json:"line_no"`
	Text   string `json:"text"`
	Spans  []Span `json:"spans"`
}

func (lm LineMatch) clone() LineMatch {
	spans := make([]Span, len(lm.Spans))
	copy(spans, lm.Spans)
	return LineMatch{LineNo: lm.LineNo, Text: lm.Text, Spans: spans}
}

// SearchResult aggregates every match of a query inside one document.
// Matches is the raw number of contributing postings and is never
// deduplicated.
type SearchResult struct {
	DocID      int         `json:"doc_id"`
	Title      string      `json:"title"`
	TitleSpans []Span      `json:"title_spans"`
	Lines      []LineMatch `json:"lines"`
	Matches    int         `json:"matches"`
}

// Merge combines two results for the same document without mutating
// either side. Title spans are concatenated and sorted, lines are keyed by
// number with the left text kept, and match counts are summed.
func Merge(a, b SearchResult) SearchResult {
	out := SearchResult{
		DocID:   a.DocID,
		Title:   a.Title,
		Matches: a.Matches + b.Matches,
	}

	out.TitleSpans = make([]Span, 0, len(a.TitleSpans)+len(b.TitleSpans))
	out.TitleSpans = append(out.TitleSpans, a.TitleSpans...)
	out.TitleSpans = append(out.TitleSpans, b.TitleSpans...)
	SortSpans(out.TitleSpans)

	byLine := make(map[int]int, len(a.Lines)+len(b.Lines))
	out.Lines = make([]LineMatch, 0, len(a.Lines)+len(b.Lines))
	for _, lm := range a.Lines {
		if pos, ok := byLine[lm.LineNo]; ok {
			out.Lines[pos].Spans = append(out.Lines[pos].Spans, lm.Spans...)
			continue
		}
		byLine[lm.LineNo] = len(out.Lines)
		out.Lines = append(out.Lines, lm.clone())
	}
	for _, lm := range b.Lines {
		if pos, ok := byLine[lm.LineNo]; ok {
			out.Lines[pos].Spans = append(out.Lines[pos].Spans, lm.Spans...)
			continue
		}
		byLine[lm.LineNo] = len(out.Lines)
		out.Lines = append(out.Lines, lm.clone())
	}
	sort.SliceStable(out.Lines, func(i, j int) bool {
		return out.Lines[i].LineNo < out.Lines[j].LineNo
	})
	return out
}

// SortSpans orders spans by start, then end. Duplicates are kept.
func SortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
}

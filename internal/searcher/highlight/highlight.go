// Package highlight merges overlapping match spans and wraps the covered
// text in ANSI escape sequences.
package highlight

import (
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
)

type Style int

const (
	Off Style = iota
	Default
	Green
)

const (
	openDefault = "\033[43m\033[30m"
	openGreen   = "\033[1;92m"
	reset       = "\033[0m"
)

func (s Style) String() string {
	switch s {
	case Default:
		return "DEFAULT"
	case Green:
		return "GREEN"
	default:
		return "OFF"
	}
}

// ParseStyle accepts OFF, DEFAULT and GREEN in any case. An empty string
// means OFF.
func ParseStyle(name string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "OFF", "NONE":
		return Off, nil
	case "DEFAULT":
		return Default, nil
	case "GREEN":
		return Green, nil
	default:
		return Off, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown highlight style %q", name)
	}
}

func (s Style) open() string {
	if s == Default {
		return openDefault
	}
	return openGreen
}

// MergeSpans returns the minimal set of disjoint, ascending ranges covering
// spans. Touching ranges are joined. The input is not modified.
func MergeSpans(spans []result.Span) []result.Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]result.Span, len(spans))
	copy(sorted, spans)
	result.SortSpans(sorted)

	merged := make([]result.Span, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if s.Start <= cur.End {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	return append(merged, cur)
}

// Apply renders text with every merged span wrapped in the style's
// markers. With Off, or no spans, text is returned unchanged. Spans are
// clamped to the text.
func Apply(text string, spans []result.Span, style Style) string {
	if style == Off || len(spans) == 0 {
		return text
	}
	open := style.open()

	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(open)+len(reset)))
	i := 0
	for _, s := range MergeSpans(spans) {
		start, end := clamp(s.Start, len(text)), clamp(s.End, len(text))
		if start < i {
			start = i
		}
		if end <= start {
			continue
		}
		b.WriteString(text[i:start])
		b.WriteString(open)
		b.WriteString(text[start:end])
		b.WriteString(reset)
		i = end
	}
	b.WriteString(text[i:])
	return b.String()
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

// Strip removes the markers Apply inserts.
func Strip(s string) string {
	return stripper.Replace(s)
}

var stripper = strings.NewReplacer(openDefault, "", openGreen, "", reset, "")

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/result"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/internal/searcher/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc         *service.Service
	cache       *cache.QueryCache
	defaultMode string
	logger      *slog.Logger
}

// New builds the HTTP handlers. queryCache may be nil.
func New(svc *service.Service, queryCache *cache.QueryCache, defaultMode string) *Handler {
	return &Handler{
		svc:         svc,
		cache:       queryCache,
		defaultMode: defaultMode,
		logger:      slog.Default().With("component", "search-handler"),
	}
}

type lineJSON struct {
	LineNo int    `json:"line_no"`
	Text   string `json:"text"`
	// Spans are half-open UTF-8 byte offsets into Text.
	Spans    []result.Span `json:"spans"`
	Rendered string        `json:"rendered,omitempty"`
}

type hitJSON struct {
	Rank  int    `json:"rank"`
	DocID int    `json:"doc_id"`
	Title string `json:"title"`
	// TitleSpans are half-open UTF-8 byte offsets into Title.
	TitleSpans    []result.Span `json:"title_spans"`
	RenderedTitle string        `json:"rendered_title,omitempty"`
	Matches       int           `json:"matches"`
	Lines         []lineJSON    `json:"lines"`
}

type searchJSON struct {
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Matched   int       `json:"matched"`
	Total     int       `json:"total"`
	ElapsedMs float64   `json:"elapsed_ms"`
	CacheHit  bool      `json:"cache_hit"`
	TraceID   string    `json:"trace_id,omitempty"`
	Results   []hitJSON `json:"results"`
}

// Search serves GET /api/v1/search?q=&mode=&highlight=. Spans in the
// response are merged and count UTF-8 bytes, not characters, into the
// title or line text. "rendered" fields carry ANSI markup when a highlight
// style is requested.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	params := r.URL.Query()

	if !params.Has("q") {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	mode := params.Get("mode")
	if mode == "" {
		mode = h.defaultMode
	}
	style, err := highlight.ParseStyle(params.Get("highlight"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.svc.Search(ctx, params.Get("q"), mode, "http")
	if err != nil {
		log.Info("search rejected", "query", params.Get("q"), "mode", mode, "error", err)
		h.writeError(w, err)
		return
	}

	out := searchJSON{
		Query:     resp.Query,
		Mode:      resp.Mode,
		Matched:   resp.Matched,
		Total:     resp.Total,
		ElapsedMs: float64(resp.Elapsed.Microseconds()) / 1000,
		CacheHit:  resp.CacheHit,
		TraceID:   resp.TraceID,
		Results:   make([]hitJSON, 0, len(resp.Results)),
	}
	for i, res := range resp.Results {
		out.Results = append(out.Results, toHit(i+1, res, style))
	}
	log.Info("search completed",
		"query", resp.Query,
		"mode", resp.Mode,
		"matched", resp.Matched,
		"cache_hit", resp.CacheHit,
		"elapsed", resp.Elapsed,
	)
	h.writeJSON(w, http.StatusOK, out)
}

func toHit(rank int, r result.SearchResult, style highlight.Style) hitJSON {
	hit := hitJSON{
		Rank:       rank,
		DocID:      r.DocID,
		Title:      r.Title,
		TitleSpans: nonNil(highlight.MergeSpans(r.TitleSpans)),
		Matches:    r.Matches,
		Lines:      make([]lineJSON, 0, len(r.Lines)),
	}
	if style != highlight.Off && len(r.TitleSpans) > 0 {
		hit.RenderedTitle = highlight.Apply(r.Title, r.TitleSpans, style)
	}
	for _, lm := range r.Lines {
		line := lineJSON{
			LineNo: lm.LineNo,
			Text:   lm.Text,
			Spans:  nonNil(highlight.MergeSpans(lm.Spans)),
		}
		if style != highlight.Off {
			line.Rendered = highlight.Apply(lm.Text, lm.Spans, style)
		}
		hit.Lines = append(hit.Lines, line)
	}
	return hit
}

func nonNil(spans []result.Span) []result.Span {
	if spans == nil {
		return []result.Span{}
	}
	return spans
}

type documentJSON struct {
	ID    int      `json:"id"`
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Document serves GET /api/v1/documents/{id}.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "document id must be an integer"))
		return
	}
	doc, err := h.svc.Document(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, documentJSON{ID: doc.ID, Title: doc.Title, Lines: doc.Lines})
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.IndexStats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	stats := h.cache.Stats()
	total := stats.Hits + stats.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"total":    total,
		"hit_rate": hitRate,
		"breaker":  stats.Breaker,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrSourceUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": msg})
}

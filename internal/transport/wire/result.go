package wire

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
)

// snippetRunes bounds the body excerpt attached to each hit.
const snippetRunes = 200

// Hit is one ranked result.
type Hit struct {
	ID         string   `json:"id"`
	SourceType string   `json:"source_type"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet,omitempty"`
	CreatedAt  string   `json:"created_at"`
	Tags       []string `json:"tags,omitempty"`
	Score      float64  `json:"score"`
	Lanes      []string `json:"lanes"`
	Reasons    []string `json:"reasons,omitempty"`
}

// SearchOutput is the response body of a search.
type SearchOutput struct {
	Results []Hit `json:"results"`
	Count   int   `json:"count"`
}

// NewSearchOutput renders fused results in rank order. Reasons are kept only when why is set.
func NewSearchOutput(results []result.Fused, why bool) SearchOutput {
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		rec := r.Record()
		lanes := make([]string, 0, len(r.Lanes()))
		for _, l := range r.Lanes() {
			lanes = append(lanes, string(l))
		}
		h := Hit{
			ID:         r.ContentID(),
			SourceType: string(rec.SourceType()),
			Title:      rec.Title(),
			Snippet:    snippet(rec.Body()),
			CreatedAt:  rec.CreatedAt().UTC().Format(time.RFC3339),
			Tags:       rec.Tags(),
			Score:      r.Score(),
			Lanes:      lanes,
		}
		if why {
			h.Reasons = r.Reasons()
		}
		hits = append(hits, h)
	}
	return SearchOutput{Results: hits, Count: len(hits)}
}

func snippet(body string) string {
	if utf8.RuneCountInString(body) <= snippetRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:snippetRunes]) + "…"
}

// ErrorBody is the error response shared by every surface. Code is a domain.Kind id.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorBody classifies err. Validation messages are returned as is;
// backend failures only expose the sentinel text.
func NewErrorBody(err error) ErrorBody {
	kind := domain.KindOf(err)
	msg := "internal error"
	switch kind {
	case domain.KindValidation:
		msg = err.Error()
	case domain.KindVectorUnavailable:
		msg = domain.ErrVectorUnavailable.Error()
	case domain.KindEmbedding:
		msg = domain.ErrEmbedding.Error()
	case domain.KindStoreUnavailable:
		msg = domain.ErrStoreUnavailable.Error()
	}
	return ErrorBody{Code: string(kind), Message: msg}
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindVectorUnavailable, domain.KindEmbedding, domain.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package chi

import (
	"time"

	"github.com/marksearch/marksearch/internal/domain"
	searchuc "github.com/marksearch/marksearch/internal/usecase/search"
)

// searchRequest is the POST /search body.
type searchRequest struct {
	Query   string     `json:"query"`
	Filters *filterDTO `json:"filters,omitempty"`
	Page    int        `json:"page,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	SortBy  string     `json:"sort_by,omitempty"`
}

// semanticRequest is the POST /search/semantic body.
type semanticRequest struct {
	Query     string     `json:"query"`
	Filters   *filterDTO `json:"filters,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Threshold *float64   `json:"threshold,omitempty"`
}

// filterDTO is the wire shape of a filter bundle.
type filterDTO struct {
	Types       []string   `json:"types,omitempty"`
	Collections []string   `json:"collections,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	DatePreset  string     `json:"date_preset,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
}

type documentDTO struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Notes        string    `json:"notes,omitempty"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	OCRText      string    `json:"ocr_text,omitempty"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	CollectionID string    `json:"collection_id,omitempty"`
	Source       string    `json:"source,omitempty"`
	Type         string    `json:"type"`
}

type fieldMatchDTO struct {
	Field     string `json:"field"`
	Positions []int  `json:"positions,omitempty"`
}

type resultDTO struct {
	Item    documentDTO     `json:"item"`
	Score   float64         `json:"score"`
	Matches []fieldMatchDTO `json:"matches,omitempty"`
}

type searchResponse struct {
	Results     []resultDTO `json:"results"`
	Total       int         `json:"total"`
	Page        int         `json:"page"`
	TotalPages  int         `json:"total_pages"`
	Suggestions []string    `json:"suggestions"`
	Query       string      `json:"query"`
	Filters     *filterDTO  `json:"filters,omitempty"`
}

type semanticResultDTO struct {
	Item       documentDTO `json:"item"`
	Score      float64     `json:"score"`
	Similarity float64     `json:"similarity"`
}

type semanticResponse struct {
	Results []semanticResultDTO `json:"results"`
	Total   int                 `json:"total"`
	Query   string              `json:"query"`
	Method  string              `json:"method"`
}

type suggestionDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

type suggestionsResponse struct {
	Suggestions []suggestionDTO `json:"suggestions"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func filterFromDTO(dto *filterDTO) domain.Filter {
	if dto == nil {
		return domain.Filter{}
	}
	f := domain.Filter{
		Collections: dto.Collections,
		Tags:        dto.Tags,
		Sources:     dto.Sources,
		DatePreset:  domain.DatePreset(dto.DatePreset),
	}
	for _, t := range dto.Types {
		f.Types = append(f.Types, domain.DocType(t))
	}
	if dto.DateFrom != nil || dto.DateTo != nil {
		r := &domain.DateRange{}
		if dto.DateFrom != nil {
			r.From = *dto.DateFrom
		}
		if dto.DateTo != nil {
			r.To = *dto.DateTo
		}
		f.DateRange = r
	}
	return f
}

func filterToDTO(f domain.Filter) *filterDTO {
	if f.IsZero() {
		return nil
	}
	dto := &filterDTO{
		Collections: f.Collections,
		Tags:        f.Tags,
		Sources:     f.Sources,
		DatePreset:  string(f.DatePreset),
	}
	for _, t := range f.Types {
		dto.Types = append(dto.Types, string(t))
	}
	if f.DateRange != nil {
		if !f.DateRange.From.IsZero() {
			from := f.DateRange.From
			dto.DateFrom = &from
		}
		if !f.DateRange.To.IsZero() {
			to := f.DateRange.To
			dto.DateTo = &to
		}
	}
	return dto
}

func documentToDTO(d domain.Document) documentDTO {
	return documentDTO{
		ID:           d.ID,
		Title:        d.Title,
		Notes:        d.Notes,
		Description:  d.Description,
		Tags:         d.Tags,
		OCRText:      d.OCRText,
		URL:          d.URL,
		CreatedAt:    d.CreatedAt,
		CollectionID: d.CollectionID,
		Source:       d.Source,
		Type:         string(d.Type),
	}
}

func responseToDTO(resp searchuc.Response) searchResponse {
	results := make([]resultDTO, len(resp.Results))
	for i, c := range resp.Results {
		matches := make([]fieldMatchDTO, len(c.Matches))
		for j, m := range c.Matches {
			matches[j] = fieldMatchDTO{Field: m.Field, Positions: m.Positions}
		}
		results[i] = resultDTO{
			Item:    documentToDTO(c.Document),
			Score:   c.Score,
			Matches: matches,
		}
	}
	suggestions := resp.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return searchResponse{
		Results:     results,
		Total:       resp.Total,
		Page:        resp.Page,
		TotalPages:  resp.TotalPages,
		Suggestions: suggestions,
		Query:       resp.Query,
		Filters:     filterToDTO(resp.Filters),
	}
}

func semanticToDTO(resp searchuc.SemanticResponse) semanticResponse {
	results := make([]semanticResultDTO, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = semanticResultDTO{
			Item:       documentToDTO(r.Item),
			Score:      r.Score,
			Similarity: r.Similarity,
		}
	}
	return semanticResponse{
		Results: results,
		Total:   resp.Total,
		Query:   resp.Query,
		Method:  string(resp.Method),
	}
}

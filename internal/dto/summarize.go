package dto

import "studygen/internal/domain"

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Text        string `json:"text" validate:"required"`
	Mode        string `json:"mode" validate:"required,oneof=abstract bullets"`
	BulletCount int    `json:"bulletCount,omitempty" validate:"bullet_count"`
	RedactPII   bool   `json:"redactPII,omitempty"`
}

func (r SummarizeRequest) ToDomain() domain.SummarizeRequest {
	return domain.SummarizeRequest{
		Text:        r.Text,
		Mode:        domain.SummaryMode(r.Mode),
		BulletCount: r.BulletCount,
		RedactPII:   r.RedactPII,
	}
}

// SummarizeResponse carries a string in Content for abstracts and a list
// of strings for bullets.
type SummarizeResponse struct {
	SummaryType domain.SummaryMode `json:"summaryType"`
	Content     interface{}        `json:"content"`
	Meta        domain.SummaryMeta `json:"meta"`
	RequestID   string             `json:"requestId"`
}

func NewSummarizeResponse(resp *domain.SummarizeResponse, requestID string) SummarizeResponse {
	return SummarizeResponse{
		SummaryType: resp.SummaryType,
		Content:     resp.Content(),
		Meta:        resp.Meta,
		RequestID:   requestID,
	}
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Cache     string `json:"cache,omitempty"`
}

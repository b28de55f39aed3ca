package domain

import "encoding/json"

// SummaryMode selects the shape of a summary.
type SummaryMode string

const (
	ModeAbstract SummaryMode = "abstract"
	ModeBullets  SummaryMode = "bullets"
)

func (m SummaryMode) Valid() bool {
	return m == ModeAbstract || m == ModeBullets
}

// DefaultBulletCount is used when a request leaves BulletCount unset.
const DefaultBulletCount = 5

type SummarizeRequest struct {
	Text        string      `json:"text"`
	Mode        SummaryMode `json:"mode"`
	BulletCount int         `json:"bulletCount,omitempty"`
	RedactPII   bool        `json:"redactPII,omitempty"`
}

// SummaryMeta counts words, not model tokens.
type SummaryMeta struct {
	TokensIn  int `json:"tokensIn"`
	TokensOut int `json:"tokensOut"`
}

// SummarizeResponse carries either Abstract or Bullets depending on SummaryType.
type SummarizeResponse struct {
	SummaryType SummaryMode `json:"summaryType"`
	Abstract    string      `json:"-"`
	Bullets     []string    `json:"-"`
	Meta        SummaryMeta `json:"meta"`
}

// Content returns the abstract string or the bullet slice.
func (r SummarizeResponse) Content() interface{} {
	if r.SummaryType == ModeBullets {
		return r.Bullets
	}
	return r.Abstract
}

func (r SummarizeResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SummaryType SummaryMode `json:"summaryType"`
		Content     interface{} `json:"content"`
		Meta        SummaryMeta `json:"meta"`
	}{r.SummaryType, r.Content(), r.Meta})
}

// Package rag implements the question answering pipeline: follow-up
// refinement, hybrid retrieval, context assembly and grounded generation.
package rag

// Payload keys stored with every point in the vector collection.
const (
	PayloadText    = "text"
	PayloadTitle   = "title"
	PayloadSection = "section"
	PayloadSource  = "source"
)

// Result is one retrieved chunk. Rank is the 1-based position in the fused
// result list; Score is the fused relevance in [0, 1].
type Result struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"`
	Rank    int     `json:"rank"`
	Title   string  `json:"title,omitempty"`
	Section string  `json:"section,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// Source attributes part of an answer to the corpus passage it came from.
type Source struct {
	Title   string  `json:"title"`
	Section string  `json:"section,omitempty"`
	Score   float32 `json:"score"`
}

// Answer is the outcome of one completed pipeline turn. Question holds the
// standalone form actually used for retrieval.
type Answer struct {
	SessionID string   `json:"session_id"`
	Question  string   `json:"question"`
	Text      string   `json:"answer"`
	Sources   []Source `json:"sources"`
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}

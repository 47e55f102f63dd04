package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

type fakeRetriever struct {
	results []rag.Result
	err     error

	question string
	opts     *qdrant.SearchOptions
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, opts *qdrant.SearchOptions) ([]rag.Result, error) {
	f.question = question
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func searchRouter(retriever *fakeRetriever) *gin.Engine {
	defaults := rag.DefaultRetrieverConfig("medical_text")
	return newTestRouter(RouterConfig{
		Search: NewSearchHandler(retriever, defaults, testLogger()),
	})
}

func postJSON(router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSearchHandler_AppliesDefaults(t *testing.T) {
	retriever := &fakeRetriever{
		results: []rag.Result{
			{ChunkID: "chunk-1", Text: "Persistent cough is a common symptom.", Score: 0.82, Rank: 1},
		},
	}
	router := searchRouter(retriever)

	w := postJSON(router, "/api/v1/search", gin.H{"query": "What are symptoms of lung cancer?"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "What are symptoms of lung cancer?", retriever.question)
	assert.Equal(t, 5, retriever.opts.Limit)
	assert.InDelta(t, 0.65, retriever.opts.ScoreThreshold, 0.0001)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])

	results := response["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "chunk-1", first["chunk_id"])
	assert.Equal(t, "Persistent cough is a common symptom.", first["text"])
}

func TestSearchHandler_RequestOverrides(t *testing.T) {
	retriever := &fakeRetriever{}
	router := searchRouter(retriever)

	w := postJSON(router, "/api/v1/search", gin.H{
		"query":           "treatment options",
		"limit":           3,
		"score_threshold": 0.4,
		"filters":         gin.H{"must": []gin.H{{"key": "source", "match": gin.H{"value": "lung-cancer.md"}}}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, retriever.opts.Limit)
	assert.InDelta(t, 0.4, retriever.opts.ScoreThreshold, 0.0001)
	assert.NotNil(t, retriever.opts.Filter)
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	retriever := &fakeRetriever{}
	router := searchRouter(retriever)

	w := postJSON(router, "/api/v1/search", gin.H{"limit": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, retriever.question)
}

func TestSearchHandler_EmptyResults(t *testing.T) {
	router := searchRouter(&fakeRetriever{})

	w := postJSON(router, "/api/v1/search", gin.H{"query": "rare condition"})

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["count"])
}

func TestSearchHandler_StoreUnavailable(t *testing.T) {
	retriever := &fakeRetriever{
		err: &qdrant.StoreUnavailableError{Message: "connection refused"},
	}
	router := searchRouter(retriever)

	w := postJSON(router, "/api/v1/search", gin.H{"query": "anything"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

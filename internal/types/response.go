package types

// KeywordRecommendation is one entry of the keyword service response.
type KeywordRecommendation struct {
	Title  string `json:"title"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// EmbeddingRecommendation is one entry of the embedding service response.
type EmbeddingRecommendation struct {
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// KeywordResponse is the body returned by the keyword service.
type KeywordResponse struct {
	Recommendations []KeywordRecommendation `json:"recommendations"`
}

// EmbeddingResponse is the body returned by the embedding service.
type EmbeddingResponse struct {
	Recommendations []EmbeddingRecommendation `json:"recommendations"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse reports service liveness and engine readiness.
type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
	Ready  bool   `json:"ready"`
	Model  string `json:"model,omitempty"`
}

// CategoryInfo describes one job category.
type CategoryInfo struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// CategoriesResponse lists the categories a service ranks against.
type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

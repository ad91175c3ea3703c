package models

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Version     string `json:"version"`
	Concurrency int    `json:"concurrency"`
	MaxBatch    int    `json:"max_batch"`
}

package models

import "time"

// DashboardSummary aggregates content totals across all stored documents.
type DashboardSummary struct {
	Documents   int       `json:"documents"`
	Escalas     int       `json:"escalas"`
	Jornadas    int       `json:"jornadas"`
	Rules       int       `json:"rules"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SystemMetrics is the lightweight metrics snapshot exposed alongside the
// dashboard for operators.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

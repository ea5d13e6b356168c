package responses

import "time"

type ReconciliationRun struct {
	RunID       string    `json:"runId"`
	Kind        string    `json:"kind"`
	FraOgMed    time.Time `json:"fraOgMed"`
	TilOgMed    time.Time `json:"tilOgMed"`
	RecordCount int       `json:"recordCount"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

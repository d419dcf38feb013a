package domain

import "time"

// Status is the user-facing safety classification of a product.
type Status string

const (
	StatusSafe  Status = "safe"
	StatusAvoid Status = "avoid"
	StatusMaybe Status = "maybe"
)

// Valid reports whether s is one of the three known enumerators.
func (s Status) Valid() bool {
	switch s {
	case StatusSafe, StatusAvoid, StatusMaybe:
		return true
	}
	return false
}

// ClassificationVerdict is the outcome of one classification pass.
// Notes carry the justification in the order the checks fired; they are
// never empty once the verdict reaches the caller.
type ClassificationVerdict struct {
	Status Status   `json:"status"`
	Notes  []string `json:"notes"`
}

// AdvisoryResult is the best-effort reply of the advisory endpoint.
// Status is empty when the endpoint could not be consulted or its answer
// could not be parsed; Notes then explain the degradation.
type AdvisoryResult struct {
	Status Status   `json:"status,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// Usable reports whether the advisory reply carries a valid status that
// may refine an inconclusive heuristic verdict.
func (r AdvisoryResult) Usable() bool {
	return r.Status.Valid()
}

// AdvisoryRequest is the bounded payload sent to the advisory endpoint.
type AdvisoryRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Ingredients string `json:"ingredients"`
	Allergens   string `json:"allergens"`
	Lang        string `json:"lang"`
}

// ClassificationResult is the final answer delivered to the UI layer:
// the merged verdict plus the product fields worth displaying.
type ClassificationResult struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	Status       Status    `json:"status"`
	Notes        []string  `json:"notes"`
	Source       string    `json:"source"` // "heuristic", "advisory" or "cache"
	LastModified time.Time `json:"lastModified,omitempty"`
	EvaluatedAt  time.Time `json:"evaluatedAt"`
}

// HistoryEntry is one row of the scan history, unique by code.
type HistoryEntry struct {
	Code      string    `json:"code"`
	Brand     string    `json:"brand"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"ts"`
}

package dto

// ErrorResponse carries a machine-readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecisionResponse acknowledges an approve or reject action. The body is a
// fixed contract consumed by the messaging gateway; nothing else goes in it.
type DecisionResponse struct {
	OK bool `json:"ok"`
}

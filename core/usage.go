package core

// Usage accumulates token counts across the model requests of one run.
// Providers that do not report usage leave the fields at zero.
type Usage struct {
	Requests       int `json:"requests"`
	RequestTokens  int `json:"request_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}

// Add merges other into u.
func (u *Usage) Add(other Usage) {
	u.Requests += other.Requests
	u.RequestTokens += other.RequestTokens
	u.ResponseTokens += other.ResponseTokens
	u.TotalTokens += other.TotalTokens
}

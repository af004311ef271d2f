package domain

type Message struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload"`
	// Lossy messages are superseded by the next one of the same type and may
	// be dropped for a lagging recipient.
	Lossy bool `json:"-"`
}

package domain

// EffectType discriminates Effect records.
type EffectType string

const (
	EffectLog          EffectType = "log"
	EffectResponseText EffectType = "response_text"
)

// Effect is a side-effect emitted while walking the tree, in emission order.
type Effect struct {
	Type   EffectType `json:"type"`
	NodeID string     `json:"node_id"`
	Level  LogLevel   `json:"level,omitempty"`
	Text   string     `json:"text"`
}

// OptionRecord is the descriptive record produced when a command option is visited.
type OptionRecord struct {
	NodeID      string `json:"node_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

package entity

// State of the upload interaction.
type State string

const (
	StateIdle       State = "idle"
	StateSelected   State = "selected"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Snapshot is a read-only copy of a controller's state used for rendering.
type Snapshot struct {
	SessionID  string          `json:"session_id,omitempty"`
	State      State           `json:"state"`
	File       *FileInfo       `json:"file,omitempty"`
	PreviewURL string          `json:"preview_url,omitempty"`
	Result     *Prediction     `json:"result,omitempty"`
	Bars       []ConfidenceBar `json:"bars,omitempty"`
	Error      string          `json:"error,omitempty"`
	CanSubmit  bool            `json:"can_submit"`
	CanReset   bool            `json:"can_reset"`
	Generation uint64          `json:"generation"`
	// Version grows with every change, including settles.
	Version    uint64          `json:"version"`
}

type SessionResponse struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}

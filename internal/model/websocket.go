package model

// WebSocket message types
type WSMessageType string

const (
	WSMessageTypeProgress WSMessageType = "progress"
	WSMessageTypeComplete WSMessageType = "complete"
	WSMessageTypeError    WSMessageType = "error"
	WSMessageTypePing     WSMessageType = "ping"
	WSMessageTypePong     WSMessageType = "pong"
)

// WSMessage is the bare envelope used for client keep-alive traffic.
type WSMessage struct {
	Type WSMessageType `json:"type"`
}

// WSProgressMessage is pushed to subscribers after every phase change
// and every completed translation wave.
type WSProgressMessage struct {
	Type            WSMessageType `json:"type"`
	ArticleID       string        `json:"articleId"`
	Status          ArticleStatus `json:"status"`
	CompletedChunks int           `json:"completedChunks"`
	TotalChunks     int           `json:"totalChunks"`
}

// WSCompleteMessage is pushed once the job reaches completed.
type WSCompleteMessage struct {
	Type      WSMessageType `json:"type"`
	ArticleID string        `json:"articleId"`
	Result    interface{}   `json:"result"`
}

// WSErrorMessage is pushed when the job fails.
type WSErrorMessage struct {
	Type      WSMessageType `json:"type"`
	ArticleID string        `json:"articleId"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Retryable bool          `json:"retryable"`
}

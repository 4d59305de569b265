package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionPing   Action = "ping"
)

// RequestPayload is every message a client may send. Fields unused by the
// action are ignored.
type RequestPayload struct {
	Action Action `json:"action"`
	Answer string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventView  Event = "view"
	EventPong  Event = "pong"
)

// ViewResponse carries the session's state and rendered regions.
type ViewResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

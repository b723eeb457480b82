package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────
// Live attendance events are forwarded as published (model.LiveEvent);
// the types below are the feed's own control messages.

type Event string

const (
	EventSubscribed Event = "subscribed"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// SubscribedResponse is sent once the feed for a class is attached.
type SubscribedResponse struct {
	Event   Event  `json:"event"`
	ClassID string `json:"class_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

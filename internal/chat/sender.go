package chat

// Sender abstracts the transport layer's outbound side. The hub implements
// it; tests substitute a fake. Send to a connection that has already gone
// away returns an error the caller may treat as a skip.
type Sender interface {
	Send(connID, event string, payload interface{}) error
	Broadcast(event string, payload interface{})
	BroadcastExcept(connID, event string, payload interface{})
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"clchat/internal/models"
	"clchat/pkg/logger"
)

// HandlerFunc processes one inbound signal from a connection.
type HandlerFunc func(ctx context.Context, connID string, data json.RawMessage) error

// Dispatcher maps wire event names to handlers. A handler error is reported
// to the origin connection only and never interrupts other connections.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	sender   Sender
}

func NewDispatcher(lifecycle *Lifecycle, pipeline *Pipeline, relay *Relay, sender Sender) *Dispatcher {
	d := &Dispatcher{sender: sender}

	d.handlers = map[string]HandlerFunc{
		models.EventJoinRoom: func(ctx context.Context, connID string, data json.RawMessage) error {
			var p models.JoinRoomPayload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return lifecycle.OnJoin(ctx, connID, p.User, p.Room)
		},
		models.EventSendMessage: func(ctx context.Context, connID string, data json.RawMessage) error {
			var p models.SendMessagePayload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			_, err := pipeline.Send(ctx, p.Sender, p.Receiver, p.Room, p.Text, p.Media)
			return err
		},
		models.EventTyping: func(ctx context.Context, connID string, data json.RawMessage) error {
			var p models.TypingPayload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			relay.Typing(connID, p.Room, p.User, p.IsTyping)
			return nil
		},
		models.EventMarkSeen: func(ctx context.Context, connID string, data json.RawMessage) error {
			var p models.MarkSeenPayload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return pipeline.MarkSeen(ctx, p.Room, p.User)
		},
		models.EventDeleteMessage: func(ctx context.Context, connID string, data json.RawMessage) error {
			var p models.DeleteMessagePayload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return pipeline.HardDelete(ctx, p.MessageID, p.User)
		},
	}

	return d
}

// Dispatch routes one raw frame from a connection to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, connID string, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.reportError(connID, fmt.Errorf("%w: malformed frame", ErrValidation))
		return
	}

	handler, ok := d.handlers[env.Event]
	if !ok {
		d.reportError(connID, fmt.Errorf("%w: unknown event %q", ErrValidation, env.Event))
		return
	}

	if err := handler(ctx, connID, env.Data); err != nil {
		logger.Debug("Event %s from %s failed: %v", env.Event, connID, err)
		d.reportError(connID, err)
	}
}

func (d *Dispatcher) reportError(connID string, err error) {
	payload := models.ErrorPayload{Code: ErrorCode(err), Message: err.Error()}
	if sendErr := d.sender.Send(connID, models.EventError, payload); sendErr != nil {
		logger.Debug("Could not report error to %s: %v", connID, sendErr)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"teeup/internal/util"
	"teeup/pkg/domain"
	"teeup/pkg/presence"
	"teeup/pkg/realtime"
	"teeup/services/social/internal/app"
)

const wsWriteTimeout = 3 * time.Second

// clientFrame is what a connected client sends over the socket.
type clientFrame struct {
	Type string `json:"type"` // "typing" or "stop"
	Text string `json:"text,omitempty"`
}

// serverFrame is what the server pushes to a connected client.
type serverFrame struct {
	Type      string   `json:"type"` // "message" or "typing"
	MessageID string   `json:"messageId,omitempty"`
	SenderID  string   `json:"senderId,omitempty"`
	UserIDs   []string `json:"userIds,omitempty"`
}

// handleConversationSocket upgrades to a websocket scoped to one
// conversation. The socket carries typing signals from the client and pushes
// new-message invalidations plus the remote typing set back out. Exactly one
// realtime subscription pair lives per socket and both are torn down when the
// socket closes.
func (s *Server) handleConversationSocket(w http.ResponseWriter, r *http.Request, profile domain.Profile) {
	conversationID := r.PathValue("id")
	if _, err := s.app.ListMessages(r.Context(), conversationID); err != nil {
		if errors.Is(err, app.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := util.LoggerFromContext(r.Context())

	outbox := make(chan serverFrame, 16)
	push := func(f serverFrame) {
		select {
		case outbox <- f:
		default:
			// A reader this far behind will catch up on its next fetch.
			logger.Warn("socket outbox full, dropping frame", "conversation_id", conversationID, "frame", f.Type)
		}
	}

	channel := s.broker.Channel(conversationID)
	session, err := presence.Open(ctx, channel, profile.UserID, presence.Options{
		OnChange: func(userIDs []string) {
			push(serverFrame{Type: "typing", UserIDs: userIDs})
		},
	})
	if err != nil {
		logger.Warn("presence open failed", "conversation_id", conversationID, "error", err)
		return
	}
	defer session.Close(context.Background())

	unsub, err := channel.Subscribe(ctx, func(e realtime.Event) {
		if e.Name != app.MessageEventName {
			return
		}
		var payload app.MessageEvent
		if err := e.Decode(&payload); err != nil {
			return
		}
		push(serverFrame{Type: "message", MessageID: payload.MessageID, SenderID: payload.SenderID})
	})
	if err != nil {
		logger.Warn("message subscribe failed", "conversation_id", conversationID, "error", err)
		return
	}
	defer unsub()

	// Writer goroutine: the only goroutine that writes to the socket.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-outbox:
				payload, err := json.Marshal(frame)
				if err != nil {
					continue
				}
				writeCtx, writeCancel := context.WithTimeout(ctx, wsWriteTimeout)
				err = conn.Write(writeCtx, websocket.MessageText, payload)
				writeCancel()
				if err != nil {
					cancel()
					return
				}
			}
		}
	}()

	// Reader loop.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					logger.Debug("socket read ended", "conversation_id", conversationID, "error", err)
				}
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case "typing":
			session.TextChanged(ctx, frame.Text)
		case "stop":
			session.Stop(ctx)
		}
	}
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/onyx-team/studymate/internal/study"
)

// requestReadTimeout bounds how long the client may take to send the study
// request after connecting.
const requestReadTimeout = 30 * time.Second

// wsEvent is one message on the study progress stream. Type is "step" while
// the pipeline runs, then "result" or "error" exactly once.
type wsEvent struct {
	Type    string          `json:"type"`
	Step    study.Step      `json:"step,omitempty"`
	State   study.StepState `json:"state,omitempty"`
	Session *study.Session  `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
	Status  int             `json:"status,omitempty"`
}

// handleStudyWS runs the pipeline for a session and streams step progress.
// The client sends the same JSON body as POST .../study as its first message.
func (s *Server) handleStudyWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "session", id, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, requestReadTimeout)
	_, body, err := conn.Read(readCtx)
	cancel()
	if err != nil {
		s.logger.Warn("websocket request read failed", "session", id, "error", err)
		return
	}

	req, err := parseStudyRequest(body, session)
	if err != nil {
		wsjson.Write(ctx, conn, wsEvent{Type: "error", Error: err.Error(), Status: http.StatusBadRequest})
		conn.Close(websocket.StatusPolicyViolation, "invalid request")
		return
	}

	// The pipeline runs in its own goroutine; the observer feeds step events
	// through the channel so this loop stays the only writer on the socket.
	events := make(chan wsEvent, 16)
	go func() {
		defer close(events)
		updated, err := s.runStudy(ctx, id, req, func(step study.Step, state study.StepState) {
			events <- wsEvent{Type: "step", Step: step, State: state}
		})
		if err != nil {
			events <- wsEvent{Type: "error", Error: err.Error(), Status: statusFor(err)}
			return
		}
		events <- wsEvent{Type: "result", Session: updated}
	}()

	for event := range events {
		if err := wsjson.Write(ctx, conn, event); err != nil {
			s.logger.Warn("websocket write failed", "session", id, "error", err)
			// Drain so the pipeline goroutine never blocks on the channel.
			for range events {
			}
			return
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

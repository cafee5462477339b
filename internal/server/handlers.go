package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/study"
)

// maxRequestBody bounds the study request body, mainly the base64 document.
const maxRequestBody = 32 << 20

// studyRequest is the wire form of a pipeline run request. Engine and help
// types default to the session's stored selection when omitted.
type studyRequest struct {
	Subject      string   `json:"subject"`
	Chapter      string   `json:"chapter"`
	HelpTypes    []string `json:"help_types"`
	GuideMode    bool     `json:"guide_mode"`
	Engine       string   `json:"engine"`
	Document     string   `json:"document"`
	DocumentName string   `json:"document_name"`
}

// decodeStudyRequest reads, schema-validates and converts the request body,
// filling defaults from the session.
func decodeStudyRequest(r *http.Request, session *study.Session) (study.Request, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return study.Request{}, fmt.Errorf("reading request body: %w", err)
	}
	return parseStudyRequest(body, session)
}

// parseStudyRequest is shared between the plain and websocket study handlers.
func parseStudyRequest(body []byte, session *study.Session) (study.Request, error) {
	if err := validateStudyRequest(body); err != nil {
		return study.Request{}, err
	}

	var wire studyRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return study.Request{}, fmt.Errorf("decoding request body: %w", err)
	}

	req := study.Request{
		Subject:      wire.Subject,
		Chapter:      wire.Chapter,
		GuideMode:    wire.GuideMode,
		Engine:       session.Engine,
		HelpTypes:    session.HelpTypes,
		DocumentName: wire.DocumentName,
	}

	if wire.Engine != "" {
		engine, err := ai.ParseEngine(wire.Engine)
		if err != nil {
			return study.Request{}, err
		}
		req.Engine = engine
	}

	if wire.HelpTypes != nil {
		helpTypes := make([]study.HelpType, 0, len(wire.HelpTypes))
		for _, raw := range wire.HelpTypes {
			ht, err := study.ParseHelpType(raw)
			if err != nil {
				return study.Request{}, err
			}
			helpTypes = append(helpTypes, ht)
		}
		req.HelpTypes = helpTypes
	}

	if wire.Document != "" {
		data, err := base64.StdEncoding.DecodeString(wire.Document)
		if err != nil {
			return study.Request{}, fmt.Errorf("decoding document: %w", err)
		}
		req.Document = data
	}

	return req, req.Validate()
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Create(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info("session created", "session", session.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	req, err := decodeStudyRequest(r, session)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.runStudy(r.Context(), id, req, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// runStudy executes the pipeline and stores the result. The observer, when
// non-nil, receives step progress (used by the websocket handler).
func (s *Server) runStudy(ctx context.Context, id string, req study.Request, observe study.Observer) (*study.Session, error) {
	result, err := s.pipeline.Run(ctx, req, observe)
	if err != nil {
		return nil, err
	}

	session, err := s.store.CompleteRun(ctx, id, req, result)
	if err != nil {
		return nil, err
	}

	if n := len(session.History); n > 0 {
		if err := s.history.LogRun(id, session.History[n-1]); err != nil {
			s.logger.Warn("history logging failed", "session", id, "error", err)
		}
	}
	return session, nil
}

type quizAnswerRequest struct {
	Number int    `json:"number"`
	Letter string `json:"letter"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.store.SelectAnswer(r.Context(), r.PathValue("id"), req.Number, req.Letter); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"number": req.Number, "letter": req.Letter})
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	score, err := s.store.SubmitQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": score, "max_score": study.MaxQuizScore})
}

func (s *Server) handleQuizRetake(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RetakeQuiz(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "answering"})
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if session.Output == nil || session.Output.Summary == "" {
		s.writeDomainError(w, study.ErrNoSummary)
		return
	}

	roadmap, err := s.pipeline.Roadmap(r.Context(), session.Engine, session.Output.Summary, session.Quiz.SelfScore())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.store.SetRoadmap(r.Context(), id, roadmap); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"roadmap": roadmap})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": session.History})
}

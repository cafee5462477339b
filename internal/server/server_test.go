package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/xuri/excelize/v2"

	"github.com/onyx-team/studymate/internal/agents"
	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/curriculum"
	"github.com/onyx-team/studymate/internal/server"
	"github.com/onyx-team/studymate/internal/study"
)

const sampleQuizText = `[QUIZ]
Q1: What is 2+2?
A)3
B)4
C)5
D)6
Correct answer: B
Q2: What is 3*3?
A)6
B)8
C)9
D)12
Correct answer: C
[EXERCISES]
E1: Solve 3+3.`

// newTestServer builds a server over an in-memory store and a mock toolkit.
// Only the deepseek engine has a registered provider.
func newTestServer(t *testing.T, toolkit agents.Toolkit) (*httptest.Server, *study.MemoryHistoryLogger) {
	t.Helper()

	registry := ai.NewRegistry()
	registry.Register(ai.EngineDeepSeek, &ai.MockProvider{Response: "mock"})

	pipeline := study.NewPipeline(registry, func(ai.Provider) agents.Toolkit {
		return toolkit
	})

	history := study.NewMemoryHistoryLogger()
	srv := server.New(study.NewMemoryStore(), pipeline, curriculum.Default(),
		server.WithHistoryLogger(history),
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, history
}

func defaultToolkit() *agents.MockToolkit {
	return &agents.MockToolkit{
		DefaultSearch:  "raw notes",
		DefaultClean:   "clean notes",
		DefaultSummary: "a summary",
		DefaultQuiz:    sampleQuizText,
		DefaultRoadmap: "1. review the basics",
	}
}

func createSession(t *testing.T, ts *httptest.Server) study.Session {
	t.Helper()

	resp, err := http.Post(ts.URL+"/v1/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /v1/sessions error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var session study.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	return session
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return resp
}

func runStudy(t *testing.T, ts *httptest.Server, id string, body map[string]any) study.Session {
	t.Helper()

	resp := postJSON(t, ts.URL+"/v1/sessions/"+id+"/study", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("study status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var session study.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	return session
}

func TestCreateAndGetSession(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())

	created := createSession(t, ts)
	if created.ID == "" {
		t.Fatal("session has no ID")
	}
	if created.Engine != ai.EngineDeepSeek {
		t.Errorf("engine = %q, want %q", created.Engine, ai.EngineDeepSeek)
	}

	resp, err := http.Get(ts.URL + "/v1/sessions/" + created.ID)
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestGetSession_Unknown(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())

	resp, err := http.Get(ts.URL + "/v1/sessions/nope")
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestStudyRun(t *testing.T) {
	ts, history := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)

	updated := runStudy(t, ts, session.ID, map[string]any{
		"subject":    "Mathematics",
		"chapter":    "Integrals",
		"help_types": []string{"summarize", "quizzes"},
	})

	if updated.Output == nil {
		t.Fatal("session has no output after run")
	}
	if updated.Output.Summary != "a summary" {
		t.Errorf("summary = %q, want %q", updated.Output.Summary, "a summary")
	}
	if updated.Output.CleanedSearch != "clean notes" {
		t.Errorf("cleaned search = %q", updated.Output.CleanedSearch)
	}
	if len(updated.Quiz.Questions) != 2 {
		t.Errorf("quiz questions = %d, want 2", len(updated.Quiz.Questions))
	}
	if len(updated.History) != 1 {
		t.Errorf("history = %d entries, want 1", len(updated.History))
	}
	if entries := history.Entries(); len(entries) != 1 || entries[0].Subject != "Mathematics" {
		t.Errorf("external history = %+v", entries)
	}
}

func TestStudyRun_SchemaRejections(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing-chapter", map[string]any{"subject": "Math"}},
		{"unknown-field", map[string]any{"subject": "Math", "chapter": "X", "bogus": true}},
		{"bad-engine", map[string]any{"subject": "Math", "chapter": "X", "engine": "claude"}},
		{"bad-help-type", map[string]any{"subject": "Math", "chapter": "X", "help_types": []string{"homework"}}},
		{"empty-subject", map[string]any{"subject": "", "chapter": "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/v1/sessions/"+session.ID+"/study", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestStudyRun_MissingCredential(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/v1/sessions/"+session.ID+"/study", map[string]any{
		"subject": "Math",
		"chapter": "X",
		"engine":  "openai",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestStudyRun_AgentFailure(t *testing.T) {
	toolkit := defaultToolkit()
	toolkit.SearchFn = func(context.Context, string, string) (string, error) {
		return "", errors.New("upstream exploded")
	}
	ts, _ := newTestServer(t, toolkit)
	session := createSession(t, ts)

	resp := postJSON(t, ts.URL+"/v1/sessions/"+session.ID+"/study", map[string]any{
		"subject": "Math",
		"chapter": "X",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
}

func TestQuizFlow(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)
	runStudy(t, ts, session.ID, map[string]any{
		"subject":    "Math",
		"chapter":    "X",
		"help_types": []string{"quizzes"},
	})
	base := ts.URL + "/v1/sessions/" + session.ID

	resp := postJSON(t, base+"/quiz/answers", map[string]any{"number": 1, "letter": "B"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer status = %d", resp.StatusCode)
	}

	resp = postJSON(t, base+"/quiz/submit", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	var graded struct {
		Score    float64 `json:"score"`
		MaxScore float64 `json:"max_score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&graded); err != nil {
		t.Fatalf("decoding grade: %v", err)
	}
	if graded.Score != 10 || graded.MaxScore != 20 {
		t.Errorf("grade = %+v, want score 10 of 20", graded)
	}

	// Answering after submit conflicts with the submitted state.
	resp = postJSON(t, base+"/quiz/answers", map[string]any{"number": 2, "letter": "C"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("answer-after-submit status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	resp = postJSON(t, base+"/quiz/retake", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("retake status = %d", resp.StatusCode)
	}
}

func TestRoadmap(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)
	base := ts.URL + "/v1/sessions/" + session.ID

	// No pipeline run yet, so there is no summary to build from.
	resp := postJSON(t, base+"/roadmap", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("roadmap-before-run status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	runStudy(t, ts, session.ID, map[string]any{"subject": "Math", "chapter": "X"})

	resp = postJSON(t, base+"/roadmap", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("roadmap status = %d", resp.StatusCode)
	}
	var out struct {
		Roadmap string `json:"roadmap"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding roadmap: %v", err)
	}
	if out.Roadmap != "1. review the basics" {
		t.Errorf("roadmap = %q", out.Roadmap)
	}

	getResp, err := http.Get(base)
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	defer getResp.Body.Close()
	var stored study.Session
	if err := json.NewDecoder(getResp.Body).Decode(&stored); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if stored.Roadmap != out.Roadmap {
		t.Errorf("stored roadmap = %q, want %q", stored.Roadmap, out.Roadmap)
	}
}

func TestHistoryExport(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)
	runStudy(t, ts, session.ID, map[string]any{"subject": "Physics", "chapter": "Optics"})

	resp, err := http.Get(ts.URL + "/v1/sessions/" + session.ID + "/history/export")
	if err != nil {
		t.Fatalf("GET export error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	subject, err := f.GetCellValue("History", "B2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if subject != "Physics" {
		t.Errorf("B2 = %q, want %q", subject, "Physics")
	}
	engine, err := f.GetCellValue("History", "D2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if engine != "Deepseek 3.1" {
		t.Errorf("D2 = %q, want %q", engine, "Deepseek 3.1")
	}
}

func TestSubjects(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())

	resp, err := http.Get(ts.URL + "/v1/subjects")
	if err != nil {
		t.Fatalf("GET subjects error = %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Subjects []curriculum.Subject `json:"subjects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding subjects: %v", err)
	}
	if len(out.Subjects) != 8 {
		t.Errorf("subjects = %d, want 8", len(out.Subjects))
	}
}

func TestUsageEndpoint(t *testing.T) {
	registry := ai.NewRegistry()
	registry.Register(ai.EngineDeepSeek, &ai.MockProvider{Response: "mock"})
	pipeline := study.NewPipeline(registry, func(ai.Provider) agents.Toolkit {
		return defaultToolkit()
	})

	usage := ai.NewInMemoryUsage()
	if err := usage.Record("deepseek", 42); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	srv := server.New(study.NewMemoryStore(), pipeline, curriculum.Default(),
		server.WithUsage(usage),
	)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/usage")
	if err != nil {
		t.Fatalf("GET /v1/usage error = %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Tokens map[string]int64 `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding usage: %v", err)
	}
	if out.Tokens["deepseek"] != 42 {
		t.Errorf("tokens = %v, want deepseek 42", out.Tokens)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	registry := ai.NewRegistry()
	registry.Register(ai.EngineDeepSeek, &ai.MockProvider{Response: "mock"})
	pipeline := study.NewPipeline(registry, func(ai.Provider) agents.Toolkit {
		return defaultToolkit()
	})

	srv := server.New(study.NewMemoryStore(), pipeline, curriculum.Default(),
		server.WithReadinessCheck("cache", func(context.Context) error {
			return errors.New("connection refused")
		}),
	)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestStudyWS_StreamsProgress(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + session.ID + "/study/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.CloseNow()

	req := map[string]any{
		"subject":    "Math",
		"chapter":    "X",
		"help_types": []string{"summarize", "quizzes"},
	}
	if err := wsjson.Write(ctx, conn, req); err != nil {
		t.Fatalf("writing request: %v", err)
	}

	type event struct {
		Type    string         `json:"type"`
		Step    string         `json:"step"`
		State   string         `json:"state"`
		Session *study.Session `json:"session"`
		Error   string         `json:"error"`
	}

	var steps []string
	var final event
	for {
		var ev event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			t.Fatalf("reading event: %v", err)
		}
		if ev.Type == "step" {
			if ev.State == "done" {
				steps = append(steps, ev.Step)
			}
			continue
		}
		final = ev
		break
	}

	if final.Type != "result" {
		t.Fatalf("final event = %+v, want result", final)
	}
	if final.Session == nil || final.Session.Output == nil {
		t.Fatal("result carries no session output")
	}
	want := []string{"search", "clean", "summarize", "quiz"}
	if fmt.Sprint(steps) != fmt.Sprint(want) {
		t.Errorf("completed steps = %v, want %v", steps, want)
	}
}

func TestStudyWS_InvalidRequest(t *testing.T) {
	ts, _ := newTestServer(t, defaultToolkit())
	session := createSession(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + session.ID + "/study/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(ctx, conn, map[string]any{"subject": "Math"}); err != nil {
		t.Fatalf("writing request: %v", err)
	}

	var ev struct {
		Type   string `json:"type"`
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	if ev.Type != "error" || ev.Status != http.StatusBadRequest {
		t.Errorf("event = %+v, want bad-request error", ev)
	}
}

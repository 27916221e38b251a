package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/model"
	"github.com/moiesk/courserag/internal/rag"
)

// stubSystem is a scriptable QuerySystem.
type stubSystem struct {
	answer    rag.Answer
	queryErr  error
	analytics rag.Analytics
	sessions  []string
	cleared   []string

	lastSessionID string
	lastQuestion  string
}

func (s *stubSystem) Query(_ context.Context, sessionID, question string) (rag.Answer, error) {
	s.lastSessionID = sessionID
	s.lastQuestion = question
	return s.answer, s.queryErr
}

func (s *stubSystem) NewSession() string {
	id := fmt.Sprintf("session-%d", len(s.sessions)+1)
	s.sessions = append(s.sessions, id)
	return id
}

func (s *stubSystem) ClearSession(sessionID string) {
	s.cleared = append(s.cleared, sessionID)
}

func (s *stubSystem) CourseAnalytics(_ context.Context) (rag.Analytics, error) {
	return s.analytics, nil
}

func newTestServer(sys *stubSystem) *httptest.Server {
	srv := New(sys, NewMetrics(), zerolog.Nop())
	return httptest.NewServer(srv.Handler())
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestQueryEndpointReturnsAnswerAndSources(t *testing.T) {
	sys := &stubSystem{answer: rag.Answer{
		Text:    "MCP is a protocol.",
		Sources: []model.Source{{Text: "MCP Course - Lesson 1", Link: "https://example.com/1"}},
	}}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/query", `{"query":"what is MCP?","session_id":"abc"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Answer    string         `json:"answer"`
		Sources   []model.Source `json:"sources"`
		SessionID string         `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Answer != "MCP is a protocol." || body.SessionID != "abc" {
		t.Fatalf("body = %+v", body)
	}
	if len(body.Sources) != 1 || body.Sources[0].Link != "https://example.com/1" {
		t.Fatalf("sources = %+v", body.Sources)
	}
	if sys.lastSessionID != "abc" || sys.lastQuestion != "what is MCP?" {
		t.Fatalf("system saw session=%q question=%q", sys.lastSessionID, sys.lastQuestion)
	}
}

func TestQueryEndpointCreatesSessionWhenMissing(t *testing.T) {
	sys := &stubSystem{answer: rag.Answer{Text: "ok"}}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/query", `{"query":"hello"}`)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["session_id"] != "session-1" {
		t.Fatalf("session_id = %v", body["session_id"])
	}
}

func TestQueryEndpointNilSourcesSerializeAsEmptyArray(t *testing.T) {
	sys := &stubSystem{answer: rag.Answer{Text: "no searches"}}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/query", `{"query":"q","session_id":"s"}`)
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `"sources":[]`) {
		t.Fatalf("body = %s", raw)
	}
}

func TestQueryEndpointRejectsBadRequests(t *testing.T) {
	ts := newTestServer(&stubSystem{})
	defer ts.Close()

	for _, body := range []string{`{`, `{"query":""}`, `{"query":"  "}`} {
		resp := postJSON(t, ts.URL+"/api/query", body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, resp.StatusCode)
		}
	}
}

func TestQueryEndpointSurfacesSystemFailures(t *testing.T) {
	sys := &stubSystem{queryErr: fmt.Errorf("anthropic unreachable")}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/query", `{"query":"q","session_id":"s"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if !strings.Contains(body["detail"], "anthropic unreachable") {
		t.Fatalf("detail = %q", body["detail"])
	}
}

func TestCoursesEndpoint(t *testing.T) {
	sys := &stubSystem{analytics: rag.Analytics{TotalCourses: 2, CourseTitles: []string{"A", "B"}}}
	ts := newTestServer(sys)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/courses")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body rag.Analytics
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.TotalCourses != 2 || len(body.CourseTitles) != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestClearSessionEndpoint(t *testing.T) {
	sys := &stubSystem{}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/sessions/clear", `{"session_id":"abc"}`)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(sys.cleared) != 1 || sys.cleared[0] != "abc" {
		t.Fatalf("cleared = %v", sys.cleared)
	}

	resp = postJSON(t, ts.URL+"/api/sessions/clear", `{}`)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing session_id: status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	sys := &stubSystem{answer: rag.Answer{Text: "ok", ToolCalls: 2}}
	ts := newTestServer(sys)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/query", `{"query":"q","session_id":"s"}`)
	_ = resp.Body.Close()

	metricsResp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = metricsResp.Body.Close() }()
	raw, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(raw), `courserag_queries_total{status="ok"} 1`) {
		t.Fatalf("metrics missing query counter:\n%s", raw)
	}
	if !strings.Contains(string(raw), `courserag_tool_dispatches_total 2`) {
		t.Fatalf("metrics missing tool dispatch counter:\n%s", raw)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubSystem{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

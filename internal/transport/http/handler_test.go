package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Cookie) {
	t.Helper()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID:         "quiz-1",
			Name:       "Arithmetic",
			Difficulty: domain.DifficultyEasy,
			TimeLimit:  5,
			Questions: []domain.Question{
				{ID: "q1", Content: domain.MultipleChoice{Prompt: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1}},
			},
		},
	}), time.Minute)
	service := app.NewAttemptService(quizzes, session.New(), memory.NewUserStore(), memory.NewResultStore())

	tokens := auth.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mux := http.NewServeMux()
	NewHandler(service).Register(mux)

	server := httptest.NewServer(auth.Middleware(tokens)(mux))
	t.Cleanup(server.Close)
	return server, &http.Cookie{Name: "access_token", Value: token}
}

func doRequest(t *testing.T, method, url string, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStartSubmitFlow(t *testing.T) {
	server, cookie := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/start", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", resp.StatusCode)
	}
	var started app.StartedAttempt
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if len(started.Questions) != 1 || started.Questions[0].Type != domain.TypeMultipleChoice {
		t.Fatalf("unexpected questions %+v", started.Questions)
	}

	// Starting again conflicts.
	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/start", "", cookie)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second start: expected 409, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/submit",
		`{"answers":[{"questionId":"q1","selectedOption":1}]}`, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	var result domain.GradingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ObtainedPoints != 20 {
		t.Fatalf("expected 20 points, got %d", result.ObtainedPoints)
	}
}

func TestTransportErrorMapping(t *testing.T) {
	server, cookie := newTestServer(t)

	// Unknown quiz.
	resp := doRequest(t, http.MethodPost, server.URL+"/api/quizzes/missing/start", "", cookie)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// Stop with no attempt.
	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/stop", "", cookie)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	// Mismatched answers.
	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/start", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: %d", resp.StatusCode)
	}
	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/submit", `{"answers":[]}`, cookie)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatch, got %d", resp.StatusCode)
	}

	// Missing credential.
	resp = doRequest(t, http.MethodPost, server.URL+"/api/quizzes/quiz-1/stop", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestQuestionsEndpointSanitizes(t *testing.T) {
	server, cookie := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/quizzes/quiz-1/questions", "", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload struct {
		Questions []domain.QuestionView `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Questions) != 1 || len(payload.Questions[0].Options) != 2 {
		t.Fatalf("unexpected questions %+v", payload.Questions)
	}
}

package server_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/studysync/studysync/internal/ai"
	"github.com/studysync/studysync/internal/generator"
	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/server"
	"github.com/studysync/studysync/internal/store"
)

type stubRunner struct {
	lp  path.LearningPath
	err error
}

func (r *stubRunner) Run(_ context.Context, req path.Request, bus *path.ProgressBus) (path.LearningPath, error) {
	bus.Progress(path.PhaseProfiling, "Analyzing your proficiency level...", nil)
	if r.err != nil {
		return path.LearningPath{}, r.err
	}
	lp := r.lp
	lp.Topic = req.Topic
	return lp, nil
}

type stubAssessments struct{}

func (stubAssessments) GenerateProficiencyQuestions(_ context.Context, topic string) []generator.ProficiencyQuestion {
	return []generator.ProficiencyQuestion{{
		Question:   "How familiar are you with " + topic + "?",
		Type:       "multiple_choice",
		Options:    []string{"Not at all", "A little", "Quite", "Very"},
		Difficulty: "beginner",
	}}
}

type stubGuides struct{}

func (stubGuides) GenerateStudyGuide(_ context.Context, moduleTitle string, _ []string) string {
	return "# " + moduleTitle + "\n\nKey points."
}

func generatedPath() path.LearningPath {
	return path.LearningPath{
		UserProfile: path.UserProfile{
			ProficiencyLevel: "beginner",
			CommitmentLevel:  "moderate",
		},
		Curriculum: path.Curriculum{
			Modules: []path.Module{{ModuleID: "m1", Title: "Basics"}},
		},
		Schedule: []path.Session{
			{
				SessionID:       "s1",
				ModuleID:        "m1",
				ModuleTitle:     "Basics",
				SessionTopic:    "Setup",
				ScheduledTime:   time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
				DurationMinutes: 45,
				SessionNumber:   1,
				TotalSessions:   2,
			},
			{
				SessionID:       "s2",
				ModuleID:        "m1",
				ModuleTitle:     "Basics",
				SessionTopic:    "Syntax",
				ScheduledTime:   time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC),
				DurationMinutes: 45,
				SessionNumber:   2,
				TotalSessions:   2,
			},
		},
		Assessments: []path.Quiz{{
			ModuleID:       "m1",
			ModuleTitle:    "Basics",
			AssessmentType: "module_quiz",
			Questions: []path.Question{
				{
					Question:      "What does := do?",
					Options:       map[string]string{"A": "Declares", "B": "Compares", "C": "Deletes", "D": "Loops"},
					CorrectAnswer: "A",
				},
				{
					Question:      "Which keyword starts a function?",
					Options:       map[string]string{"A": "def", "B": "func", "C": "fn", "D": "function"},
					CorrectAnswer: "B",
				},
			},
			TotalQuestions: 2,
		}},
		Status: "active",
		Progress: path.Progress{
			TotalModules:  1,
			TotalSessions: 2,
		},
	}
}

func newTestServer(t *testing.T, runner server.PathRunner) (*httptest.Server, store.PathStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv, err := server.New(server.Config{
		Store:       st,
		Runner:      runner,
		Assessments: stubAssessments{},
		Guides:      stubGuides{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func seedPath(t *testing.T, st store.PathStore) string {
	t.Helper()
	lp := generatedPath()
	lp.Topic = "Go"
	id, err := st.CreatePath(lp)
	if err != nil {
		t.Fatalf("seeding path: %v", err)
	}
	return id
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestUsageStats(t *testing.T) {
	usage := ai.NewUsageTracker()
	usage.Record(ai.TaskCurriculum, 1200)
	usage.Record(ai.TaskQuiz, 300)

	st := store.NewMemoryStore()
	srv, err := server.New(server.Config{
		Store:  st,
		Runner: &stubRunner{lp: generatedPath()},
		Usage:  usage,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats/usage")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		TotalTokens  int64            `json:"total_tokens"`
		TokensByTask map[string]int64 `json:"tokens_by_task"`
	}
	decodeBody(t, resp, &body)
	if body.TotalTokens != 1500 {
		t.Errorf("total_tokens = %d, want 1500", body.TotalTokens)
	}
	if body.TokensByTask["curriculum"] != 1200 || body.TokensByTask["quiz"] != 300 {
		t.Errorf("tokens_by_task = %v", body.TokensByTask)
	}
}

func TestUsageStats_NotConfigured(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp, err := http.Get(ts.URL + "/api/stats/usage")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	st := store.NewMemoryStore()
	srv, err := server.New(server.Config{
		Store:  st,
		Runner: &stubRunner{lp: generatedPath()},
		ReadyChecks: map[string]func(context.Context) error{
			"database": func(context.Context) error { return errors.New("down") },
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestCreatePath(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp := postJSON(t, ts.URL+"/api/learning-paths", map[string]any{
		"topic":            "Python basics",
		"commitment_level": "moderate",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var lp path.LearningPath
	decodeBody(t, resp, &lp)
	if lp.ID == "" {
		t.Fatal("response has no id")
	}
	if lp.Topic != "Python basics" {
		t.Errorf("topic = %q", lp.Topic)
	}

	stored, err := st.GetPath(lp.ID)
	if err != nil {
		t.Fatalf("path not persisted: %v", err)
	}
	if len(stored.Schedule) != 2 {
		t.Errorf("stored schedule has %d sessions, want 2", len(stored.Schedule))
	}
}

func TestCreatePath_MissingTopic(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp := postJSON(t, ts.URL+"/api/learning-paths", map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreatePath_RunnerError(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{err: errors.New("boom")})

	resp := postJSON(t, ts.URL+"/api/learning-paths", map[string]any{"topic": "Go"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func readSSEEvents(t *testing.T, resp *http.Response) []path.ProgressEvent {
	t.Helper()
	defer resp.Body.Close()

	var events []path.ProgressEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event path.ProgressEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad event payload %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestCreatePathStream(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp, err := http.Get(ts.URL + "/api/learning-paths/create/stream?topic=Go&commitment_level=light")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	events := readSSEEvents(t, resp)
	if len(events) < 2 {
		t.Fatalf("got %d events, want progress + complete", len(events))
	}
	last := events[len(events)-1]
	if last.Type != path.EventComplete {
		t.Fatalf("last event type = %q, want complete", last.Type)
	}
	id, _ := last.Data["learning_path_id"].(string)
	if id == "" {
		t.Fatal("complete event missing learning_path_id")
	}
	if _, err := st.GetPath(id); err != nil {
		t.Errorf("streamed path not persisted: %v", err)
	}
}

func TestCreatePathStream_RunnerError(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{err: errors.New("boom")})

	resp, err := http.Get(ts.URL + "/api/learning-paths/create/stream?topic=Go")
	if err != nil {
		t.Fatal(err)
	}
	events := readSSEEvents(t, resp)
	if len(events) == 0 {
		t.Fatal("no events received")
	}
	if last := events[len(events)-1]; last.Type != path.EventError {
		t.Errorf("last event type = %q, want error", last.Type)
	}
}

func TestCreatePathStream_MissingTopic(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp, err := http.Get(ts.URL + "/api/learning-paths/create/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreatePathWS(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/learning-paths/create/ws?topic=Go"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var last path.ProgressEvent
	for {
		var event path.ProgressEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			break
		}
		last = event
	}
	if last.Type != path.EventComplete {
		t.Fatalf("last event type = %q, want complete", last.Type)
	}
	id, _ := last.Data["learning_path_id"].(string)
	if id == "" {
		t.Fatal("complete event missing learning_path_id")
	}
	if _, err := st.GetPath(id); err != nil {
		t.Errorf("path not persisted: %v", err)
	}
}

type failingCurriculum struct{}

func (failingCurriculum) GenerateCurriculum(context.Context, string, string, string, float64) (path.Curriculum, error) {
	return path.Curriculum{}, errors.New("model unavailable")
}

type failingQuizzes struct{}

func (failingQuizzes) GenerateQuiz(context.Context, string, []string, int) ([]path.Question, error) {
	return nil, errors.New("model unavailable")
}

type fallbackResources struct{}

func (fallbackResources) FindSessionResources(_ context.Context, _, sessionTopic string) []path.Resource {
	return []path.Resource{{
		Type:       "video",
		Title:      "Search YouTube for " + sessionTopic,
		URL:        "https://www.youtube.com/results?search_query=test",
		IsFallback: true,
	}}
}

// A full run through the streaming endpoint with every generator failing:
// the fallback curriculum still yields a complete, persisted learning path.
func TestCreatePathStream_EndToEnd(t *testing.T) {
	orch, err := path.NewOrchestrator(path.OrchestratorConfig{
		Curriculum: failingCurriculum{},
		Quizzes:    failingQuizzes{},
		Resources:  fallbackResources{},
	})
	if err != nil {
		t.Fatal(err)
	}
	ts, st := newTestServer(t, orch)

	resp, err := http.Get(ts.URL +
		"/api/learning-paths/create/stream?topic=Python+basics&proficiency_level=beginner&commitment_level=light")
	if err != nil {
		t.Fatal(err)
	}
	events := readSSEEvents(t, resp)

	completes := 0
	for _, event := range events {
		if event.Type == path.EventComplete {
			completes++
		}
	}
	if completes != 1 {
		t.Fatalf("complete events = %d, want exactly 1", completes)
	}

	last := events[len(events)-1]
	id, _ := last.Data["learning_path_id"].(string)
	if id == "" {
		t.Fatal("complete event missing learning_path_id")
	}

	lp, err := st.GetPath(id)
	if err != nil {
		t.Fatalf("path not persisted: %v", err)
	}
	// Fallback curriculum: one module with two subtopics.
	if len(lp.Schedule) != 2 {
		t.Errorf("sessions = %d, want 2", len(lp.Schedule))
	}
	for _, session := range lp.Schedule {
		if len(session.Resources) > 3 {
			t.Errorf("session %s has %d resources, want at most 3", session.SessionID, len(session.Resources))
		}
	}
	if len(lp.Assessments) != 1 {
		t.Fatalf("quizzes = %d, want 1", len(lp.Assessments))
	}
	if len(lp.Assessments[0].Questions) < 1 {
		t.Error("quiz has no questions")
	}
	if lp.UserProfile.ProficiencyLevel != "beginner" || lp.UserProfile.CommitmentLevel != "light" {
		t.Errorf("profile = %+v", lp.UserProfile)
	}
}

func TestListPaths(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/learning-paths")
	if err != nil {
		t.Fatal(err)
	}
	var summaries []map[string]any
	decodeBody(t, resp, &summaries)
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0]["topic"] != "Go" {
		t.Errorf("summary = %v", summaries[0])
	}
	if summaries[0]["proficiency_level"] != "beginner" {
		t.Errorf("proficiency_level = %v", summaries[0]["proficiency_level"])
	}
}

func TestGetPath_NotFound(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp, err := http.Get(ts.URL + "/api/learning-paths/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSessions(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/learning-paths/" + id + "/sessions")
	if err != nil {
		t.Fatal(err)
	}
	var sessions []path.Session
	decodeBody(t, resp, &sessions)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].SessionTopic != "Setup" {
		t.Errorf("first session = %+v", sessions[0])
	}
}

func TestDashboard(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	// One completed session and one quiz submission feed the metrics.
	if _, err := st.CompleteSession(id, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.RecordSubmission(store.Submission{
		PathID: id, ModuleID: "m1", Score: 0.5, CorrectCount: 1, TotalQuestions: 2,
	}); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/learning-paths/" + id + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	var dash struct {
		LearningPathID string `json:"learning_path_id"`
		Progress       struct {
			CompletionPercentage float64 `json:"completion_percentage"`
			SessionsCompleted    int     `json:"sessions_completed"`
			AverageQuizScore     float64 `json:"average_quiz_score"`
			QuizzesTaken         int     `json:"quizzes_taken"`
		} `json:"progress"`
		QuizStatus map[string]struct {
			Completed bool     `json:"completed"`
			Score     *float64 `json:"score"`
		} `json:"quiz_status"`
		UpcomingSessions []map[string]any `json:"upcoming_sessions"`
	}
	decodeBody(t, resp, &dash)

	if dash.LearningPathID != id {
		t.Errorf("learning_path_id = %q", dash.LearningPathID)
	}
	if dash.Progress.SessionsCompleted != 1 {
		t.Errorf("sessions_completed = %d", dash.Progress.SessionsCompleted)
	}
	if dash.Progress.CompletionPercentage != 50 {
		t.Errorf("completion_percentage = %v", dash.Progress.CompletionPercentage)
	}
	if dash.Progress.AverageQuizScore != 0.5 || dash.Progress.QuizzesTaken != 1 {
		t.Errorf("quiz metrics = %+v", dash.Progress)
	}
	m1 := dash.QuizStatus["m1"]
	if !m1.Completed || m1.Score == nil || *m1.Score != 0.5 {
		t.Errorf("quiz_status[m1] = %+v", m1)
	}
	if len(dash.UpcomingSessions) != 1 {
		t.Errorf("upcoming sessions = %d, want 1", len(dash.UpcomingSessions))
	}
}

func TestStudyGuide(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/learning-paths/" + id + "/modules/m1/guide")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		ModuleID   string `json:"module_id"`
		StudyGuide string `json:"study_guide"`
	}
	decodeBody(t, resp, &body)
	if body.ModuleID != "m1" {
		t.Errorf("module_id = %q", body.ModuleID)
	}
	if !strings.Contains(body.StudyGuide, "# Basics") {
		t.Errorf("study_guide = %q", body.StudyGuide)
	}
}

func TestStudyGuide_UnknownModule(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/learning-paths/" + id + "/modules/nope/guide")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProficiency(t *testing.T) {
	ts, _ := newTestServer(t, &stubRunner{lp: generatedPath()})

	resp := postJSON(t, ts.URL+"/api/assessments/proficiency", map[string]string{"topic": "Go"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Topic     string                          `json:"topic"`
		Questions []generator.ProficiencyQuestion `json:"questions"`
	}
	decodeBody(t, resp, &body)
	if body.Topic != "Go" || len(body.Questions) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestGetQuiz(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/assessments/quiz/m1?learning_path_id=" + id)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		ModuleID  string          `json:"module_id"`
		Questions []path.Question `json:"questions"`
		Completed bool            `json:"completed"`
	}
	decodeBody(t, resp, &body)
	if body.ModuleID != "m1" || len(body.Questions) != 2 || body.Completed {
		t.Errorf("body = %+v", body)
	}
}

func TestGetQuiz_UnknownModule(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/assessments/quiz/nope?learning_path_id=" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmitQuiz(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp := postJSON(t, ts.URL+"/api/assessments/quiz/m1/submit", map[string]any{
		"learning_path_id": id,
		"responses":        map[string]string{"0": "A", "1": "C"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		SubmissionID string  `json:"submission_id"`
		Score        float64 `json:"score"`
		CorrectCount int     `json:"correct_count"`
		Passed       bool    `json:"passed"`
	}
	decodeBody(t, resp, &body)
	if body.SubmissionID == "" {
		t.Error("missing submission_id")
	}
	if body.Score != 0.5 || body.CorrectCount != 1 || body.Passed {
		t.Errorf("evaluation = %+v", body)
	}

	subs, err := st.ListSubmissions(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Errorf("submissions recorded = %d, want 1", len(subs))
	}
}

func TestCompleteSession(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp := postJSON(t, ts.URL+"/api/schedule/sessions/s1/complete", map[string]string{
		"learning_path_id": id,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		SessionID string        `json:"session_id"`
		Progress  path.Progress `json:"progress"`
	}
	decodeBody(t, resp, &body)
	if body.SessionID != "s1" {
		t.Errorf("session_id = %q", body.SessionID)
	}
	if body.Progress.SessionsCompleted != 1 {
		t.Errorf("progress = %+v", body.Progress)
	}
}

func TestCompleteSession_UnknownSession(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp := postJSON(t, ts.URL+"/api/schedule/sessions/nope/complete", map[string]string{
		"learning_path_id": id,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportICS(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/schedule/" + id + "/ics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/calendar" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "studysync_Go.ics") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "BEGIN:VCALENDAR") {
		t.Error("body is not an ICS calendar")
	}
}

func TestExportXLSX(t *testing.T) {
	ts, st := newTestServer(t, &stubRunner{lp: generatedPath()})
	id := seedPath(t, st)

	resp, err := http.Get(ts.URL + "/api/schedule/" + id + "/xlsx")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
}

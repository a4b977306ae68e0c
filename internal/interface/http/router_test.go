package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/swing-coach/internal/domain/coach"
	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/internal/domain/reportqa"
	"github.com/yanqian/swing-coach/internal/infra/config"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

func TestRouter_CoachChatSuccess(t *testing.T) {
	svc := &stubCoachService{
		chatFn: func(ctx context.Context, req coach.Request) (coach.Response, error) {
			require.Len(t, req.Messages, 1)
			require.Equal(t, "Why do I slice?", req.Messages[0].Content)
			return coach.Response{Content: "Because of an open face at impact."}, nil
		},
	}
	server := newRouterUnderTest(t, svc, &stubReportService{}, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/coach/chat", `{"messages":[{"role":"user","content":"Why do I slice?"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got coach.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Because of an open face at impact.", got.Content)
}

func TestRouter_CoachChatDegradedFailureIsStillOK(t *testing.T) {
	svc := &stubCoachService{
		chatFn: func(ctx context.Context, req coach.Request) (coach.Response, error) {
			return coach.Response{Content: "Server error while generating your coaching response: upstream timeout"}, nil
		},
	}
	server := newRouterUnderTest(t, svc, &stubReportService{}, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/coach/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got coach.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Contains(t, got.Content, "Server error while generating your coaching response:")
}

func TestRouter_CoachChatInvalidInput(t *testing.T) {
	svc := &stubCoachService{
		chatFn: func(ctx context.Context, req coach.Request) (coach.Response, error) {
			return coach.Response{}, apperrors.Wrap("invalid_input", "message history cannot be empty", nil)
		},
	}
	server := newRouterUnderTest(t, svc, &stubReportService{}, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/coach/chat", `{"messages":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_SynthesizeReportJSON(t *testing.T) {
	svc := &stubReportService{
		synthesizeFn: func(ctx context.Context, input report.SynthesisInput) (report.Result, error) {
			require.Equal(t, "Jordan", input.Profile.Name)
			require.Nil(t, input.Clip)
			return report.Result{ReportID: "rep-1", Report: &report.SwingReport{PlayerName: "Jordan"}}, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, svc, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/reports", `{"player":{"name":"Jordan","handicap":"12"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "rep-1", got.ReportID)
	require.Equal(t, "Jordan", got.Report.PlayerName)
}

func TestRouter_SynthesizeReportMultipart(t *testing.T) {
	svc := &stubReportService{
		synthesizeFn: func(ctx context.Context, input report.SynthesisInput) (report.Result, error) {
			require.Equal(t, "Jordan", input.Profile.Name)
			require.Equal(t, "Driver", input.Profile.Club)
			require.NotNil(t, input.Clip)
			require.Equal(t, "swing.mp4", input.Clip.Filename)
			require.Equal(t, []byte("fake video bytes"), input.Clip.Content)
			return report.Result{ReportID: "rep-2", Report: &report.SwingReport{PlayerName: "Jordan"}}, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, svc, &stubQAService{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "Jordan"))
	require.NoError(t, writer.WriteField("club", "Driver"))
	part, err := writer.CreateFormFile("swingVideo", "swing.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SynthesizeReportSoftFailureIsOK(t *testing.T) {
	svc := &stubReportService{
		synthesizeFn: func(ctx context.Context, input report.SynthesisInput) (report.Result, error) {
			return report.Result{Report: nil, Message: "the generated report did not match the expected shape; try again with a fuller description"}, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, svc, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/reports", `{"player":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Nil(t, got["report"])
	require.NotEmpty(t, got["error"])
}

func TestRouter_SynthesizeReportTransportFailure(t *testing.T) {
	svc := &stubReportService{
		synthesizeFn: func(ctx context.Context, input report.SynthesisInput) (report.Result, error) {
			return report.Result{}, apperrors.Wrap("llm_error", "report generation failed", nil)
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, svc, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/reports", `{"player":{}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "llm_error", errBody["error"]["code"])
}

func TestRouter_GetReportByID(t *testing.T) {
	svc := &stubReportService{
		getFn: func(ctx context.Context, id string) (report.ReportRecord, bool, error) {
			require.Equal(t, "rep-1", id)
			return report.ReportRecord{ID: "rep-1", Report: report.SwingReport{PlayerName: "Jordan"}}, true, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, svc, &stubQAService{})

	rec := performRequest(server, http.MethodGet, "/api/v1/reports/rep-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got report.ReportRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Jordan", got.Report.PlayerName)
}

func TestRouter_LatestReportNotFound(t *testing.T) {
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, &stubQAService{})

	rec := performRequest(server, http.MethodGet, "/api/v1/reports/latest", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AnswerReportQuestionSuccess(t *testing.T) {
	svc := &stubQAService{
		answerFn: func(ctx context.Context, req reportqa.Request) (reportqa.Response, error) {
			require.Equal(t, "rep-1", req.ReportID)
			require.Equal(t, "What first?", req.Question)
			return reportqa.Response{Answer: "Trail hip depth.", ReportID: "rep-1", Source: "llm"}, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/reports/qa", `{"reportId":"rep-1","question":"What first?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got reportqa.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Trail hip depth.", got.Answer)
}

func TestRouter_AnswerReportQuestionMissingPrecondition(t *testing.T) {
	svc := &stubQAService{
		answerFn: func(ctx context.Context, req reportqa.Request) (reportqa.Response, error) {
			return reportqa.Response{}, apperrors.Wrap("invalid_input", "report or reportId is required", nil)
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/reports/qa", `{"question":"why?"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_AnswerReportQuestionLLMError(t *testing.T) {
	svc := &stubQAService{
		answerFn: func(ctx context.Context, req reportqa.Request) (reportqa.Response, error) {
			return reportqa.Response{}, apperrors.Wrap("llm_error", "answer generation failed", nil)
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, svc)

	rec := performRequest(server, http.MethodPost, "/api/v1/reports/qa", `{"reportId":"rep-1","question":"why?"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRouter_TrendingQuestions(t *testing.T) {
	svc := &stubQAService{
		trendingFn: func(ctx context.Context) ([]reportqa.TrendingQuestion, error) {
			return []reportqa.TrendingQuestion{{Question: "What is my one priority?", Count: 4}}, nil
		},
	}
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, svc)

	rec := performRequest(server, http.MethodGet, "/api/v1/reports/questions/trending", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]reportqa.TrendingQuestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["questions"], 1)
	require.Equal(t, int64(4), body["questions"][0].Count)
}

func TestRouter_TranscribeDisabled(t *testing.T) {
	server := newRouterUnderTest(t, &stubCoachService{}, &stubReportService{}, &stubQAService{})

	rec := performRequest(server, http.MethodPost, "/api/v1/transcriptions", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, coachSvc coach.Service, reportSvc report.Service, qaSvc reportqa.Service) *http.Server {
	t.Helper()
	handler := NewHandler(coachSvc, reportSvc, qaSvc, nil, nil, "", newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubCoachService struct {
	chatFn   func(ctx context.Context, req coach.Request) (coach.Response, error)
	streamFn func(ctx context.Context, req coach.Request) (<-chan coach.StreamChunk, error)
}

func (s *stubCoachService) Chat(ctx context.Context, req coach.Request) (coach.Response, error) {
	if s.chatFn != nil {
		return s.chatFn(ctx, req)
	}
	return coach.Response{}, nil
}

func (s *stubCoachService) ChatStream(ctx context.Context, req coach.Request) (<-chan coach.StreamChunk, error) {
	if s.streamFn != nil {
		return s.streamFn(ctx, req)
	}
	stream := make(chan coach.StreamChunk)
	close(stream)
	return stream, nil
}

type stubReportService struct {
	synthesizeFn func(ctx context.Context, input report.SynthesisInput) (report.Result, error)
	getFn        func(ctx context.Context, id string) (report.ReportRecord, bool, error)
	latestFn     func(ctx context.Context) (report.ReportRecord, bool, error)
}

func (s *stubReportService) Synthesize(ctx context.Context, input report.SynthesisInput) (report.Result, error) {
	if s.synthesizeFn != nil {
		return s.synthesizeFn(ctx, input)
	}
	return report.Result{}, nil
}

func (s *stubReportService) Get(ctx context.Context, id string) (report.ReportRecord, bool, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return report.ReportRecord{}, false, nil
}

func (s *stubReportService) Latest(ctx context.Context) (report.ReportRecord, bool, error) {
	if s.latestFn != nil {
		return s.latestFn(ctx)
	}
	return report.ReportRecord{}, false, nil
}

type stubQAService struct {
	answerFn   func(ctx context.Context, req reportqa.Request) (reportqa.Response, error)
	trendingFn func(ctx context.Context) ([]reportqa.TrendingQuestion, error)
}

func (s *stubQAService) Answer(ctx context.Context, req reportqa.Request) (reportqa.Response, error) {
	if s.answerFn != nil {
		return s.answerFn(ctx, req)
	}
	return reportqa.Response{}, nil
}

func (s *stubQAService) Trending(ctx context.Context) ([]reportqa.TrendingQuestion, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx)
	}
	return nil, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

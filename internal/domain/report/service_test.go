package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

const validReportJSON = `{
	"report": {
		"playerName": "Jordan",
		"hand": "Right",
		"eye": "Left",
		"handicap": "12",
		"summary": ["Solid base, early extension under pressure."],
		"strengths": ["Consistent tempo"],
		"priorityFixes": ["Keep trail hip deep through transition", "Quiet the hands at the top"],
		"powerLeaks": ["Early extension bleeds ground force"],
		"checkpoints": [
			{"label": "P1", "phase": "Address", "status": "green", "note": "Neutral setup"},
			{"label": "P6", "phase": "Pre-impact", "status": "red", "note": "Shaft across the line"}
		],
		"planBlocks": [
			{"title": "Days 1-4", "text": "Mirror work on hip depth."},
			{"title": "Days 5-9", "text": "Slow motion swings with a club across the hips."}
		]
	}
}`

func TestSynthesizeSuccess(t *testing.T) {
	stub := &stubChatClient{response: completionResponse(validReportJSON)}
	store := newStubStore()
	svc := newTestService(Config{Model: "gpt-test", ReportTTL: time.Hour}, stub, store, nil)

	result, err := svc.Synthesize(context.Background(), SynthesisInput{
		Profile: PlayerProfile{Name: "Jordan", Handicap: "12", Eye: "Left"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	require.Empty(t, result.Message)
	require.NotEmpty(t, result.ReportID)

	require.Equal(t, "Jordan", result.Report.PlayerName)
	require.Len(t, result.Report.Checkpoints, 2)
	require.Equal(t, StatusGreen, result.Report.Checkpoints[0].Status)
	require.Equal(t, StatusRed, result.Report.Checkpoints[1].Status)

	top, ok := result.Report.TopPriority()
	require.True(t, ok)
	require.Equal(t, "Keep trail hip deep through transition", top)

	// The report is handed off under its id.
	saved, found, err := store.GetReport(context.Background(), result.ReportID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, *result.Report, saved.Report)

	require.Equal(t, 1, stub.calls)
	require.NotNil(t, stub.lastRequest.ResponseFormat)
	require.Equal(t, "json_object", stub.lastRequest.ResponseFormat.Type)
}

func TestSynthesizeAppliesProfileDefaults(t *testing.T) {
	stub := &stubChatClient{response: completionResponse(validReportJSON)}
	svc := newTestService(Config{Model: "gpt-test"}, stub, newStubStore(), nil)

	_, err := svc.Synthesize(context.Background(), SynthesisInput{})
	require.NoError(t, err)

	require.Len(t, stub.lastRequest.Messages, 2)
	contextMsg := stub.lastRequest.Messages[1].Content
	require.Contains(t, contextMsg, "- Name: Player")
	require.Contains(t, contextMsg, "- Handicap / level: N/A")
	require.Contains(t, contextMsg, "- Handedness: Right")
	require.Contains(t, contextMsg, "- Dominant eye: Unknown")
	require.Contains(t, contextMsg, noClipEvidence)
}

func TestSynthesizeMalformedGenerationIsNullReport(t *testing.T) {
	stub := &stubChatClient{response: completionResponse("I cannot produce JSON today, sorry!")}
	store := newStubStore()
	svc := newTestService(Config{Model: "gpt-test"}, stub, store, nil)

	result, err := svc.Synthesize(context.Background(), SynthesisInput{
		Profile: PlayerProfile{Name: "Sam"},
	})
	require.NoError(t, err)
	require.Nil(t, result.Report)
	require.NotEmpty(t, result.Message)
	require.Empty(t, result.ReportID)
	require.Empty(t, store.records)
}

func TestSynthesizeTransportErrorSurfaces(t *testing.T) {
	stub := &stubChatClient{err: errors.New("connection refused")}
	svc := newTestService(Config{Model: "gpt-test"}, stub, newStubStore(), nil)

	_, err := svc.Synthesize(context.Background(), SynthesisInput{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
}

func TestSynthesizeArchivesClip(t *testing.T) {
	stub := &stubChatClient{response: completionResponse(validReportJSON)}
	clips := &stubClipStorage{}
	svc := newTestService(Config{Model: "gpt-test", MaxClipBytes: 1 << 20}, stub, newStubStore(), clips)

	result, err := svc.Synthesize(context.Background(), SynthesisInput{
		Clip: &ClipUpload{Filename: "driver swing.mp4", MimeType: "video/mp4", Content: make([]byte, 2048)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ClipKey)
	require.Equal(t, 1, clips.calls)
	require.Contains(t, clips.lastKey, "driver_swing.mp4")

	// Clip evidence reaches the generation context.
	contextMsg := stub.lastRequest.Messages[1].Content
	require.Contains(t, contextMsg, "Swing video uploaded: driver swing.mp4, approx 2 KB")
}

func TestSynthesizeSkipsOversizedClip(t *testing.T) {
	stub := &stubChatClient{response: completionResponse(validReportJSON)}
	clips := &stubClipStorage{}
	svc := newTestService(Config{Model: "gpt-test", MaxClipBytes: 1024}, stub, newStubStore(), clips)

	result, err := svc.Synthesize(context.Background(), SynthesisInput{
		Clip: &ClipUpload{Filename: "big.mp4", Content: make([]byte, 4096)},
	})
	require.NoError(t, err)
	require.Empty(t, result.ClipKey)
	require.Equal(t, 0, clips.calls)
}

func TestSynthesizeClipStorageFailureIsSwallowed(t *testing.T) {
	stub := &stubChatClient{response: completionResponse(validReportJSON)}
	clips := &stubClipStorage{err: errors.New("bucket unavailable")}
	svc := newTestService(Config{Model: "gpt-test", MaxClipBytes: 1 << 20}, stub, newStubStore(), clips)

	result, err := svc.Synthesize(context.Background(), SynthesisInput{
		Clip: &ClipUpload{Filename: "swing.mp4", Content: []byte("bytes")},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	require.Empty(t, result.ClipKey)
}

func newTestService(cfg Config, client ChatClient, store Store, clips ClipStorage) Service {
	counter := 0
	return &service{
		cfg:    cfg,
		client: client,
		store:  store,
		clips:  clips,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID: func() string {
			counter++
			return "report-" + string(rune('a'+counter-1))
		},
	}
}

func completionResponse(content string) chatgpt.ChatCompletionResponse {
	var resp chatgpt.ChatCompletionResponse
	resp.Choices = append(resp.Choices, struct {
		Message chatgpt.Message `json:"message"`
	}{Message: chatgpt.Message{Role: "assistant", Content: content}})
	return resp
}

type stubChatClient struct {
	response    chatgpt.ChatCompletionResponse
	err         error
	calls       int
	lastRequest chatgpt.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return s.response, nil
}

type stubStore struct {
	records map[string]ReportRecord
	latest  string
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string]ReportRecord)}
}

func (s *stubStore) SaveReport(_ context.Context, record ReportRecord, _ time.Duration) error {
	s.records[record.ID] = record
	s.latest = record.ID
	return nil
}

func (s *stubStore) GetReport(_ context.Context, id string) (ReportRecord, bool, error) {
	record, ok := s.records[id]
	return record, ok, nil
}

func (s *stubStore) Latest(_ context.Context) (ReportRecord, bool, error) {
	record, ok := s.records[s.latest]
	return record, ok, nil
}

type stubClipStorage struct {
	err     error
	calls   int
	lastKey string
}

func (s *stubClipStorage) Put(_ context.Context, key string, data []byte, mimeType string) (StoredClip, error) {
	s.calls++
	s.lastKey = key
	if s.err != nil {
		return StoredClip{}, s.err
	}
	return StoredClip{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

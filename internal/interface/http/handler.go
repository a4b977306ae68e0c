package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/swing-coach/internal/domain/auth"
	"github.com/yanqian/swing-coach/internal/domain/coach"
	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/internal/domain/reportqa"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

// TranscriptionClient turns uploaded audio into text.
type TranscriptionClient interface {
	CreateTranscription(ctx context.Context, req chatgpt.TranscriptionRequest) (chatgpt.TranscriptionResponse, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	coachSvc           coach.Service
	reportSvc          report.Service
	qaSvc              reportqa.Service
	authSvc            *auth.Service
	transcriber        TranscriptionClient
	transcriptionModel string
	logger             *slog.Logger
}

// NewHandler constructs the root HTTP handler. authSvc may be nil when
// authentication is disabled; transcriber may be nil when no provider key is
// configured.
func NewHandler(coachSvc coach.Service, reportSvc report.Service, qaSvc reportqa.Service, authSvc *auth.Service, transcriber TranscriptionClient, transcriptionModel string, logger *slog.Logger) *Handler {
	return &Handler{
		coachSvc:           coachSvc,
		reportSvc:          reportSvc,
		qaSvc:              qaSvc,
		authSvc:            authSvc,
		transcriber:        transcriber,
		transcriptionModel: transcriptionModel,
		logger:             logger.With("component", "http.handler"),
	}
}

// CoachChat handles the free-form coaching conversation. Generation failures
// never surface here; the service degrades them into a normal response.
func (h *Handler) CoachChat(c *gin.Context) {
	var req coach.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.coachSvc.Chat(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "chat_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CoachChatStream streams the assistant turn using Server-Sent Events.
func (h *Handler) CoachChatStream(c *gin.Context) {
	var req coach.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	stream, err := h.coachSvc.ChatStream(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "chat_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	for chunk := range stream {
		payload, err := json.Marshal(chunk)
		if err != nil {
			h.logger.Error("marshal chunk failed", "error", err)
			continue
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

type synthesisPayload struct {
	Player report.PlayerProfile `json:"player"`
}

// SynthesizeReport generates a structured swing report. It accepts either a
// JSON body with a player object, or a multipart form carrying the same
// fields plus an optional swingVideo clip.
func (h *Handler) SynthesizeReport(c *gin.Context) {
	input, httpErr := h.parseSynthesisInput(c)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	result, err := h.reportSvc.Synthesize(c.Request.Context(), input)
	if err != nil {
		status := http.StatusInternalServerError
		code := "report_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) parseSynthesisInput(c *gin.Context) (report.SynthesisInput, *HTTPError) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.parseMultipartSynthesis(c)
	}

	var payload synthesisPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return report.SynthesisInput{}, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	}
	return report.SynthesisInput{Profile: payload.Player}, nil
}

func (h *Handler) parseMultipartSynthesis(c *gin.Context) (report.SynthesisInput, *HTTPError) {
	input := report.SynthesisInput{
		Profile: report.PlayerProfile{
			Name:       c.PostForm("name"),
			Handicap:   c.PostForm("handicap"),
			Hand:       c.PostForm("hand"),
			Eye:        c.PostForm("eye"),
			Club:       c.PostForm("club"),
			Notes:      c.PostForm("notes"),
			BallFlight: c.PostForm("ballFlight"),
		},
	}

	fileHeader, err := c.FormFile("swingVideo")
	if err != nil {
		// The clip is optional; synthesis runs on metadata alone.
		return input, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return report.SynthesisInput{}, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return report.SynthesisInput{}, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err)
	}
	input.Clip = &report.ClipUpload{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  data,
	}
	return input, nil
}

// GetReport resolves a previously synthesized report by id.
func (h *Handler) GetReport(c *gin.Context) {
	record, found, err := h.reportSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "report_failed", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no report with this id", nil))
		return
	}
	c.JSON(http.StatusOK, record)
}

// LatestReport returns the most recently synthesized report.
func (h *Handler) LatestReport(c *gin.Context) {
	record, found, err := h.reportSvc.Latest(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "report_failed", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no report available", nil))
		return
	}
	c.JSON(http.StatusOK, record)
}

// AnswerReportQuestion answers a question grounded in one synthesized report.
func (h *Handler) AnswerReportQuestion(c *gin.Context) {
	var req reportqa.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.qaSvc.Answer(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "qa_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TrendingQuestions returns the most frequently asked report questions.
func (h *Handler) TrendingQuestions(c *gin.Context) {
	items, err := h.qaSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "qa_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": items})
}

// Transcribe converts an uploaded audio note into text for the chat input.
func (h *Handler) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "transcription_disabled", "transcription unavailable", nil))
		return
	}
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "audio file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "transcription_failed", "failed to read file", err))
		return
	}

	resp, err := h.transcriber.CreateTranscription(c.Request.Context(), chatgpt.TranscriptionRequest{
		Model:    h.transcriptionModel,
		Filename: fileHeader.Filename,
		Audio:    data,
	})
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadGateway, "transcription_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": resp.Text})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

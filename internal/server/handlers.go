package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roach88/specgraph/internal/meta"
	"github.com/roach88/specgraph/internal/session"
)

const jsonContentType = "application/json; charset=utf-8"

// Handlers serves one session. Every handler holds mu for its whole
// duration, so calls into the session never overlap.
type Handlers struct {
	mu   sync.Mutex
	sess *session.Session
}

// NewHandlers creates handlers for sess.
func NewHandlers(sess *session.Session) *Handlers {
	return &Handlers{sess: sess}
}

// HandleGraph handles GET /v1/graph.
func (h *Handlers) HandleGraph(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleGraph")

	if h.notModified(c) {
		return
	}
	payload, err := h.sess.GraphJSON()
	if err != nil {
		logger.Error("Graph encode failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENCODE_FAILED"})
		return
	}
	c.Data(http.StatusOK, jsonContentType, []byte(payload))
}

// HandleView handles GET /v1/graph/view?view=&focus=.
func (h *Handlers) HandleView(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleView")

	if h.notModified(c) {
		return
	}
	name, focus := c.Query("view"), c.Query("focus")
	payload, err := h.sess.View(name, focus)
	if err != nil {
		logger.Error("View encode failed", "view", name, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENCODE_FAILED"})
		return
	}
	logger.Debug("View served", "view", name, "focus", focus, "bytes", len(payload))
	c.Data(http.StatusOK, jsonContentType, []byte(payload))
}

// HandleMeta handles GET /v1/meta.
func (h *Handlers) HandleMeta(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	getOrCreateRequestID(c)

	c.JSON(http.StatusOK, h.sess.Meta())
}

// HandleNode handles GET /v1/nodes/:id.
func (h *Handlers) HandleNode(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleNode")

	id := c.Param("id")
	detail, err := h.sess.NodeDetail(id)
	if err != nil {
		status, code := http.StatusInternalServerError, "DETAIL_FAILED"
		if errors.Is(err, session.ErrUnknownNode) {
			status, code = http.StatusNotFound, "UNKNOWN_NODE"
		}
		logger.Debug("Node detail failed", "id", id, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// HandleEditEdge handles POST /v1/edges.
func (h *Handlers) HandleEditEdge(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleEditEdge")

	var op meta.EdgeOp
	if err := c.ShouldBindJSON(&op); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	res := h.sess.ApplyEdge(c.Request.Context(), op)
	logger.Info("Edge edit", "action", op.Action, "key", op.Key(), "applied", res.Applied, "saved", res.Saved)
	h.writeEdit(c, res)
}

// HandleEditPosition handles POST /v1/positions.
func (h *Handlers) HandleEditPosition(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleEditPosition")

	var op meta.PositionOp
	if err := c.ShouldBindJSON(&op); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	res := h.sess.ApplyPosition(c.Request.Context(), op)
	logger.Info("Position edit", "id", op.ID, "clear", op.Clear, "applied", res.Applied, "saved", res.Saved)
	h.writeEdit(c, res)
}

// HandlePreview handles GET /v1/preview?path=.
func (h *Handlers) HandlePreview(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	getOrCreateRequestID(c)

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path is required", Code: "INVALID_REQUEST"})
		return
	}
	c.JSON(http.StatusOK, PreviewResponse{Path: path, Text: h.sess.Preview(path)})
}

// HandleHistory handles GET /v1/history?all=&limit=.
func (h *Handlers) HandleHistory(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	logger := slog.With("request_id", getOrCreateRequestID(c), "handler", "HandleHistory")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer", Code: "INVALID_REQUEST"})
			return
		}
		limit = n
	}
	all := c.Query("all") == "true"

	edits, err := h.sess.History(c.Request.Context(), all, limit)
	if err != nil {
		logger.Error("History query failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "HISTORY_FAILED"})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Edits: edits})
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.sess.Graph()
	fp, _ := h.sess.Fingerprint()
	layout := h.sess.Layout()
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Root:        h.sess.Root(),
		Recognized:  layout.Recognized,
		Warnings:    layout.Warnings,
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		Fingerprint: fp,
		Journal:     h.sess.JournalID() != "",
	})
}

func (h *Handlers) writeEdit(c *gin.Context, res session.EditResult) {
	if res.Fingerprint != "" {
		c.Header("ETag", strconv.Quote(res.Fingerprint))
	}
	status := http.StatusOK
	if !res.Applied {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, EditResponse{
		OK:          res.Applied,
		Saved:       res.Saved,
		Fingerprint: res.Fingerprint,
		Error:       res.Error,
	})
}

// notModified sets the ETag header to the graph fingerprint and answers
// 304 when the client already holds it.
func (h *Handlers) notModified(c *gin.Context) bool {
	fp, err := h.sess.Fingerprint()
	if err != nil || fp == "" {
		return false
	}
	etag := strconv.Quote(fp)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// getOrCreateRequestID echoes X-Request-ID or assigns a new one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

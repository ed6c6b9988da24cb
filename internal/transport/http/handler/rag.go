package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ragserve/internal/app"
	"ragserve/internal/pkg/textextract"
	"ragserve/internal/transport/http/middleware"
	"ragserve/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB

// IngestEnqueuer hands an ingest job to the background worker instead of
// running it inline.
type IngestEnqueuer interface {
	Publish(ctx context.Context, job app.IngestInput) error
}

type RAGHandler struct {
	ingest    *app.IngestService
	retrieval *app.RetrievalService
	docs      app.DocumentStore
	enqueuer  IngestEnqueuer
}

type IngestDocumentRequest struct {
	ChatID      *uint  `json:"chat_id"`
	WorkspaceID *uint  `json:"workspace_id"`
	Title       string `json:"title" binding:"max=255"`
	Filename    string `json:"filename"`
	Text        string `json:"text" binding:"required"`
	MimeType    string `json:"mime_type"`
	FileSize    int64  `json:"file_size"`
	Async       bool   `json:"async"`
}

type QueryRequest struct {
	ChatID      *uint  `json:"chat_id"`
	WorkspaceID *uint  `json:"workspace_id"`
	Question    string `json:"question" binding:"required"`
	TopK        int    `json:"top_k"`
}

func NewRAGHandler(
	ingest *app.IngestService,
	retrieval *app.RetrievalService,
	docs app.DocumentStore,
	enqueuer IngestEnqueuer,
) *RAGHandler {
	return &RAGHandler{
		ingest:    ingest,
		retrieval: retrieval,
		docs:      docs,
		enqueuer:  enqueuer,
	}
}

func getTenantIDFromContext(c *gin.Context) (string, bool) {
	raw, exists := c.Get(middleware.ContextTenantIDKey)
	if !exists {
		return "", false
	}
	tenantID, ok := raw.(string)
	return tenantID, ok
}

func (h *RAGHandler) IngestDocument(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req IngestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	input := app.IngestInput{
		ChatID:      req.ChatID,
		WorkspaceID: req.WorkspaceID,
		TenantID:    tenantID,
		Title:       req.Title,
		Filename:    req.Filename,
		Text:        req.Text,
		MimeType:    req.MimeType,
		FileSize:    req.FileSize,
	}

	if req.Async {
		if h.enqueuer == nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "async ingestion is not available")
			return
		}
		if err := h.enqueuer.Publish(c.Request.Context(), input); err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingest failed")
			return
		}
		c.JSON(http.StatusAccepted, response.APIResponse{
			Code:    response.CodeOK,
			Message: "accepted",
		})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}
	response.OK(c, result)
}

// UploadDocument accepts a multipart form with "file" plus optional "title",
// "chat_id" and "workspace_id" fields, extracts the text and ingests it.
func (h *RAGHandler) UploadDocument(c *gin.Context) {
	tenantID, ok := getTenantIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" && strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		mimeType = "application/pdf"
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := textextract.ExtractText(f, mimeType)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text: "+err.Error())
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file contains no extractable text")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	input := app.IngestInput{
		ChatID:      parseUintFormPtr(c, "chat_id"),
		WorkspaceID: parseUintFormPtr(c, "workspace_id"),
		TenantID:    tenantID,
		Title:       title,
		Filename:    file.Filename,
		Text:        text,
		MimeType:    mimeType,
		FileSize:    file.Size,
	}

	if c.PostForm("async") == "true" && h.enqueuer != nil {
		if err := h.enqueuer.Publish(c.Request.Context(), input); err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingest failed")
			return
		}
		c.JSON(http.StatusAccepted, response.APIResponse{
			Code:    response.CodeOK,
			Message: "accepted",
		})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
		}
		return
	}
	response.OK(c, result)
}

func (h *RAGHandler) Query(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.retrieval.Query(c.Request.Context(), app.QueryInput{
		ChatID:      req.ChatID,
		WorkspaceID: req.WorkspaceID,
		Question:    req.Question,
		TopK:        req.TopK,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}
	response.OK(c, result)
}

// ListDocuments lists by chat_id or workspace_id query param; exactly one is
// required.
func (h *RAGHandler) ListDocuments(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chatID := parseUintQueryPtr(c, "chat_id")
	workspaceID := parseUintQueryPtr(c, "workspace_id")
	if (chatID == nil) == (workspaceID == nil) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "exactly one of chat_id or workspace_id is required")
		return
	}

	var err error
	var docs interface{}
	if chatID != nil {
		docs, err = h.docs.FindDocumentsByChat(c.Request.Context(), *chatID)
	} else {
		docs, err = h.docs.FindDocumentsByWorkspace(c.Request.Context(), *workspaceID)
	}
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *RAGHandler) DeleteDocument(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.ingest.DeleteDocument(c.Request.Context(), docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": docID})
}

func (h *RAGHandler) ChatStats(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	chatID, err := parseUintParam(c, "id")
	if err != nil || chatID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat id")
		return
	}

	stats, err := h.retrieval.ChatStats(c.Request.Context(), chatID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *RAGHandler) WorkspaceStats(c *gin.Context) {
	if _, ok := getTenantIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	workspaceID, err := parseUintParam(c, "id")
	if err != nil || workspaceID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid workspace id")
		return
	}

	stats, err := h.retrieval.WorkspaceStats(c.Request.Context(), workspaceID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "workspace stats failed")
		return
	}
	response.OK(c, stats)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	s := c.Param(key)
	u, err := strconv.ParseUint(s, 10, 64)
	return uint(u), err
}

func parseUintFormPtr(c *gin.Context, key string) *uint {
	s := c.PostForm(key)
	if s == "" {
		return nil
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	id := uint(u)
	return &id
}

func parseUintQueryPtr(c *gin.Context, key string) *uint {
	s := c.Query(key)
	if s == "" {
		return nil
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	id := uint(u)
	return &id
}

// Package handler implements the HTTP endpoints.
package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/docfmt/api/middleware"
	"github.com/tsawler/docfmt/api/model"
	"github.com/tsawler/docfmt/internal/services"
)

// MIMEDocx is the content type of returned documents.
const MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// FormattingHandler serves checks and rule management.
type FormattingHandler struct {
	service       *services.FormattingService
	maxUploadSize int64
	logger        *logrus.Logger
}

// NewFormattingHandler returns a handler. maxUploadSize bounds uploaded
// files in bytes; zero means no limit.
func NewFormattingHandler(service *services.FormattingService, maxUploadSize int64, logger *logrus.Logger) *FormattingHandler {
	return &FormattingHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// readUpload returns the name and content of the "file" form field.
func (h *FormattingHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil || fh.Size == 0 {
		middleware.HandleError(c, middleware.NewValidationError("no file uploaded"))
		return "", nil, false
	}
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		middleware.HandleError(c, middleware.NewTooLargeError("file exceeds the upload limit of "+strconv.FormatInt(h.maxUploadSize, 10)+" bytes"))
		return "", nil, false
	}
	data, err := readFile(fh)
	if err != nil {
		h.logger.WithError(err).WithField("filename", fh.Filename).Error("Failed to read uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("failed to read uploaded file"))
		return "", nil, false
	}
	return fh.Filename, data, true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// CheckDocument returns the annotated document as an attachment.
// POST /word-formatting-api/check-doc
func (h *FormattingHandler) CheckDocument(c *gin.Context) {
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.service.Check(c.Request.Context(), name, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	c.Header("X-Violations", strconv.Itoa(len(res.Violations)))
	c.Data(http.StatusOK, MIMEDocx, res.Document)
}

// CheckReport returns the violations in an upload as JSON.
// POST /word-formatting-api/check-doc/report
func (h *FormattingHandler) CheckReport(c *gin.Context) {
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	rep, err := h.service.Report(c.Request.Context(), name, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.CheckReportResponse{
		PassID:     rep.PassID,
		FileName:   rep.FileName,
		Total:      len(rep.Violations),
		Violations: rep.Violations,
		Warnings:   rep.Warnings,
	}))
}

// GetRules returns the active rule record, or the one named by ?name=.
// GET /word-formatting-api/get-rules
func (h *FormattingHandler) GetRules(c *gin.Context) {
	schema, err := h.service.Rules(c.Request.Context(), c.Query("name"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// ListRules lists the stored rule sets.
// GET /word-formatting-api/rules
func (h *FormattingHandler) ListRules(c *gin.Context) {
	names, err := h.service.RuleSets(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.RuleSetsResponse{RuleSets: names}))
}

// SetupRules stores a rule record. The body is the record itself (JSON or
// YAML) or a JSON string holding it.
// POST /word-formatting-api/setup-rules
func (h *FormattingHandler) SetupRules(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		middleware.HandleError(c, middleware.NewValidationError("failed to read request body"))
		return
	}
	record := unwrapRecord(body)
	if len(bytes.TrimSpace(record)) == 0 {
		middleware.HandleError(c, middleware.NewValidationError("empty rule record"))
		return
	}
	if _, err := h.service.SetupRules(c.Request.Context(), c.Query("name"), record); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewMessageResponse("rules saved"))
}

// unwrapRecord returns the record inside a JSON string body, or body
// unchanged.
func unwrapRecord(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return body
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return body
	}
	return []byte(inner)
}

// RulesFromFile infers a rule record from an uploaded sample.
// POST /word-formatting-api/get-rules-from-file
func (h *FormattingHandler) RulesFromFile(c *gin.Context) {
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	schema, err := h.service.ExtractRules(c.Request.Context(), name, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

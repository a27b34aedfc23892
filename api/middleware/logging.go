package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Log field names.
const (
	FieldTraceID  = "trace_id"
	FieldPath     = "path"
	FieldMethod   = "method"
	FieldStatus   = "status_code"
	FieldLatency  = "latency"
	FieldClientIP = "client_ip"
	FieldError    = "error"
)

// TraceIDHeader carries the request trace id in both directions.
const TraceIDHeader = "X-Trace-ID"

const traceIDKey = "TraceID"

// Logger logs one entry per request.
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(logrus.Fields{
			FieldStatus:   c.Writer.Status(),
			FieldLatency:  time.Since(start).String(),
			FieldClientIP: c.ClientIP(),
			FieldMethod:   c.Request.Method,
			FieldPath:     path,
			FieldTraceID:  TraceID(c),
			"user_agent":  c.Request.UserAgent(),
		}).Info("HTTP request")
	}
}

// RequestBodyLog logs request bodies at debug level. Multipart uploads are
// skipped.
func RequestBodyLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !logger.IsLevelEnabled(logrus.DebugLevel) || c.ContentType() == gin.MIMEMultipartPOSTForm {
			c.Next()
			return
		}
		var buf bytes.Buffer
		body, _ := io.ReadAll(io.TeeReader(c.Request.Body, &buf))
		c.Request.Body = io.NopCloser(&buf)
		if len(body) > 0 {
			logger.WithFields(logrus.Fields{
				FieldMethod:  c.Request.Method,
				FieldPath:    c.Request.URL.Path,
				FieldTraceID: TraceID(c),
				"body":       string(body),
			}).Debug("Request body")
		}
		c.Next()
	}
}

// SetTraceID propagates the caller's trace id or assigns a new one.
func SetTraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(traceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// TraceID returns the request's trace id, empty before SetTraceID ran.
func TraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

// Cors allows any origin and exposes the headers browsers need to save
// checked documents.
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, "+TraceIDHeader)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Violations, "+TraceIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// Package model holds the request and response bodies of the HTTP API.
package model

import (
	"github.com/tsawler/docfmt/validate"
)

// Response is the envelope for every non-file, non-record response.
type Response struct {
	Code    int         `json:"code"` // 0 on success
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewMessageResponse is a success envelope with a message and no data.
func NewMessageResponse(message string) *Response {
	return &Response{
		Code:    0,
		Message: message,
	}
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// CheckReportResponse lists the violations found in an upload.
type CheckReportResponse struct {
	PassID     string               `json:"pass_id"`
	FileName   string               `json:"filename"`
	Total      int                  `json:"total"`
	Violations []validate.Violation `json:"violations"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// RuleSetsResponse lists stored rule set names.
type RuleSetsResponse struct {
	RuleSets []string `json:"rule_sets"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

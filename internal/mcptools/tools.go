// Package mcptools exposes checks and rule extraction as MCP tools over
// documents on the local file system.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/docfmt/internal/rulestore"
	"github.com/tsawler/docfmt/internal/services"
	"github.com/tsawler/docfmt/rules"
)

// Tools holds the service the tool handlers call.
type Tools struct {
	service *services.FormattingService
}

// New returns tools backed by service.
func New(service *services.FormattingService) *Tools {
	return &Tools{service: service}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "check_document",
			Description: "Check a .docx file against formatting rules and write an annotated copy with one comment per violation",
		},
		t.CheckDocument,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "extract_rules",
			Description: "Infer a formatting rule record from a well-formatted .docx sample",
		},
		t.ExtractRules,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_rules",
			Description: "Return a stored formatting rule record, the active one by default",
		},
		t.GetRules,
	)
}

// CheckDocumentInput defines input for check_document.
type CheckDocumentInput struct {
	Path   string `json:"path" jsonschema:"Path of the .docx file to check"`
	Rules  string `json:"rules,omitempty" jsonschema:"Rule record as JSON or YAML (optional, defaults to the stored rules)"`
	Output string `json:"output,omitempty" jsonschema:"Where to write the annotated copy (optional, defaults next to the input)"`
}

// CheckDocumentOutput defines output for check_document.
type CheckDocumentOutput struct {
	OutputPath string   `json:"output_path"`
	Total      int      `json:"total"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CheckDocument checks a file and writes the annotated copy.
func (t *Tools) CheckDocument(ctx context.Context, req *mcp.CallToolRequest, input CheckDocumentInput) (*mcp.CallToolResult, CheckDocumentOutput, error) {
	if input.Path == "" {
		return nil, CheckDocumentOutput{}, errors.New("path is required")
	}
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, CheckDocumentOutput{}, fmt.Errorf("failed to read document: %w", err)
	}

	res, err := t.service.CheckWithRules(ctx, filepath.Base(input.Path), data, []byte(input.Rules))
	if err != nil {
		return nil, CheckDocumentOutput{}, err
	}

	out := input.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(input.Path), res.FileName)
	}
	if err := os.WriteFile(out, res.Document, 0o644); err != nil {
		return nil, CheckDocumentOutput{}, fmt.Errorf("failed to write annotated document: %w", err)
	}

	lines := make([]string, len(res.Violations))
	for i, v := range res.Violations {
		lines[i] = v.String()
	}
	return nil, CheckDocumentOutput{
		OutputPath: out,
		Total:      len(res.Violations),
		Violations: lines,
		Warnings:   res.Warnings,
	}, nil
}

// ExtractRulesInput defines input for extract_rules.
type ExtractRulesInput struct {
	Path string `json:"path" jsonschema:"Path of the sample .docx file"`
	Save string `json:"save,omitempty" jsonschema:"Store the result under this rule set name (optional)"`
}

// RulesOutput carries a rule record.
type RulesOutput struct {
	Rules map[string]interface{} `json:"rules"`
}

// ExtractRules infers rules from a sample, optionally storing them.
func (t *Tools) ExtractRules(ctx context.Context, req *mcp.CallToolRequest, input ExtractRulesInput) (*mcp.CallToolResult, RulesOutput, error) {
	if input.Path == "" {
		return nil, RulesOutput{}, errors.New("path is required")
	}
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, RulesOutput{}, fmt.Errorf("failed to read document: %w", err)
	}
	schema, err := t.service.ExtractRules(ctx, filepath.Base(input.Path), data)
	if err != nil {
		return nil, RulesOutput{}, err
	}
	if input.Save != "" {
		record, err := schema.MarshalJSON()
		if err != nil {
			return nil, RulesOutput{}, err
		}
		if _, err := t.service.SetupRules(ctx, input.Save, record); err != nil {
			return nil, RulesOutput{}, err
		}
	}
	return nil, RulesOutput{Rules: recordOf(schema)}, nil
}

// GetRulesInput defines input for get_rules.
type GetRulesInput struct {
	Name string `json:"name,omitempty" jsonschema:"Rule set name (optional, defaults to the active rules)"`
}

// GetRules returns a stored rule record.
func (t *Tools) GetRules(ctx context.Context, req *mcp.CallToolRequest, input GetRulesInput) (*mcp.CallToolResult, RulesOutput, error) {
	schema, err := t.service.Rules(ctx, input.Name)
	if errors.Is(err, rulestore.ErrNotFound) {
		return nil, RulesOutput{}, fmt.Errorf("no rules stored under %q", nameOrDefault(input.Name))
	}
	if err != nil {
		return nil, RulesOutput{}, err
	}
	return nil, RulesOutput{Rules: recordOf(schema)}, nil
}

func recordOf(s *rules.Schema) map[string]interface{} {
	r := s.Record()
	if r == nil {
		r = map[string]interface{}{}
	}
	return r
}

func nameOrDefault(name string) string {
	if name == "" {
		return rulestore.DefaultName
	}
	return name
}

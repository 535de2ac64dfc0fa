package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerCatalogResource(srv, svc)
	registerSchoolsTemplate(srv, svc)
	registerPreviewTemplate(srv, svc)
}

func registerCatalogResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"exammerge://catalog",
		"Catalog",
		mcp.WithResourceDescription("Grades available on the exam-prep server."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		grades, err := svc.Grades(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"grades": grades,
			"count":  len(grades),
		})
	})
}

func registerSchoolsTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"exammerge://grades/{grade}/schools",
		"Grade Schools",
		mcp.WithTemplateDescription("Schools of a grade with their last update and end-data tag."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		grade, err := gradeArgument(request.Params.Arguments)
		if err != nil {
			return nil, err
		}
		schools, err := svc.Schools(ctx, grade)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"grade":   grade,
			"schools": schools,
			"count":   len(schools),
		})
	})
}

func registerPreviewTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"exammerge://preview/{grade}/{school}",
		"Unit Preview",
		mcp.WithTemplateDescription("Exam-scope units of a school with material availability."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		grade, err := gradeArgument(request.Params.Arguments)
		if err != nil {
			return nil, err
		}
		school := stringArgument(request.Params.Arguments, "school")
		if school == "" {
			return nil, fmt.Errorf("school is required")
		}
		dto, err := svc.Preview(ctx, grade, school)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

// stringArgument reads a template variable, which the server may hand over
// as a string or a single-element slice.
func stringArgument(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		if len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func gradeArgument(args map[string]any) (int, error) {
	raw := stringArgument(args, "grade")
	raw = strings.TrimSuffix(raw, "학년")
	grade, err := strconv.Atoi(raw)
	if err != nil || grade <= 0 {
		return 0, fmt.Errorf("invalid grade %q", raw)
	}
	return grade, nil
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

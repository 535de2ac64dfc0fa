package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListGradesTool(srv, svc)
	registerListSchoolsTool(srv, svc)
	registerPreviewUnitsTool(srv, svc)
	registerUnitCodesTool(srv, svc)
	registerMergeTool(srv, svc)
	registerReloadTool(srv, svc)
	registerListDownloadsTool(srv, svc)
}

func registerListGradesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_grades",
		mcp.WithDescription("List the grades that have exam-scope data."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grades, err := svc.Grades(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"grades": grades,
			"count":  len(grades),
		})
	})
}

func registerListSchoolsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_schools",
		mcp.WithDescription("List the schools of a grade, tagging those with end-of-term data."),
		mcp.WithNumber("grade",
			mcp.Required(),
			mcp.Description("Grade number, for example 1 for 1학년."),
			mcp.Min(1),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grade, err := request.RequireInt("grade")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		schools, err := svc.Schools(ctx, grade)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"grade":   grade,
			"schools": schools,
			"count":   len(schools),
		})
	})
}

func registerPreviewUnitsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"preview_units",
		mcp.WithDescription("Show the exam-scope units of a school and which lack merge material."),
		mcp.WithNumber("grade",
			mcp.Required(),
			mcp.Description("Grade number."),
			mcp.Min(1),
		),
		mcp.WithString("school",
			mcp.Required(),
			mcp.Description("School name exactly as listed by list_schools."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grade, school, errResult := gradeAndSchool(request)
		if errResult != nil {
			return errResult, nil
		}
		dto, err := svc.Preview(ctx, grade, school)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUnitCodesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"unit_codes",
		mcp.WithDescription("List the unit codes of a school with their resolved titles."),
		mcp.WithNumber("grade",
			mcp.Required(),
			mcp.Description("Grade number."),
			mcp.Min(1),
		),
		mcp.WithString("school",
			mcp.Required(),
			mcp.Description("School name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grade, school, errResult := gradeAndSchool(request)
		if errResult != nil {
			return errResult, nil
		}
		units, err := svc.UnitCodes(ctx, grade, school)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"grade":  grade,
			"school": school,
			"units":  units,
			"count":  len(units),
		})
	})
}

func registerMergeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"merge",
		mcp.WithDescription("Merge exam-prep material into a PDF and save it to the downloads directory."),
		mcp.WithNumber("grade",
			mcp.Required(),
			mcp.Description("Grade number."),
			mcp.Min(1),
		),
		mcp.WithString("school",
			mcp.Required(),
			mcp.Description("School name."),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Material category."),
			mcp.Enum("descriptive", "most-frequent", "final"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Merge the category across every unit of the school instead of the exam scope."),
			mcp.DefaultBool(false),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		grade, school, errResult := gradeAndSchool(request)
		if errResult != nil {
			return errResult, nil
		}
		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Merge(ctx, grade, school, category, request.GetBool("all", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := toJSONResult(dto)
		if err == nil && dto.State == "failed" {
			result.IsError = true
		}
		return result, err
	})
}

func registerReloadTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"reload",
		mcp.WithDescription("Ask the server to re-read its exam-scope data, then refresh the catalog."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Reload(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := toJSONResult(dto)
		if err == nil && !dto.OK {
			result.IsError = true
		}
		return result, err
	})
}

func registerListDownloadsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_downloads",
		mcp.WithDescription("List merged PDFs saved in the downloads directory, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return (default 20)."),
			mcp.Min(1),
			mcp.Max(200),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		saved, err := svc.Downloads(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		total := len(saved)
		if limit > 0 && len(saved) > limit {
			saved = saved[:limit]
		}
		return toJSONResult(map[string]any{
			"downloads": saved,
			"count":     len(saved),
			"total":     total,
		})
	})
}

func gradeAndSchool(request mcp.CallToolRequest) (int, string, *mcp.CallToolResult) {
	grade, err := request.RequireInt("grade")
	if err != nil {
		return 0, "", mcp.NewToolResultError(err.Error())
	}
	school, err := request.RequireString("school")
	if err != nil {
		return 0, "", mcp.NewToolResultError(err.Error())
	}
	school = strings.TrimSpace(school)
	if school == "" {
		return 0, "", mcp.NewToolResultError("school is required")
	}
	return grade, school, nil
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}

package mcp

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"tableflip.dev/exammerge/pkg/app/apptest"
)

func newTestService(t *testing.T, reloadOK bool) (*Service, string) {
	t.Helper()
	svc, dir := apptest.NewService(t, &apptest.Server{
		Catalog: []apptest.Row{
			{Grade: 1, School: "가람고", Timestamp: apptest.Stamp("2025-03-01")},
			{Grade: 1, School: "나래고"},
			{Grade: 2, School: "가람고"},
		},
		EndData:     []string{"가람고"},
		Missing:     map[string]bool{"나래고": true},
		ReloadFails: !reloadOK,
	})
	return NewService(svc), dir
}

func callTool(t *testing.T, svc *Service, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	srv := NewServer("exammerge", "test", svc)
	tool := srv.GetTool(name)
	if tool == nil {
		t.Fatalf("tool %q not registered", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("empty result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want text", result.Content[0])
	}
	return text.Text
}

func TestServiceSchoolsTagsEndData(t *testing.T) {
	svc, _ := newTestService(t, true)
	schools, err := svc.Schools(context.Background(), 1)
	if err != nil {
		t.Fatalf("schools: %v", err)
	}
	if len(schools) != 2 {
		t.Fatalf("schools = %+v", schools)
	}
	for _, s := range schools {
		if s.HasEndData != (s.Name == "가람고") {
			t.Fatalf("%s hasEndData = %t", s.Name, s.HasEndData)
		}
	}
	if schools[0].Name != "가람고" || schools[0].LastUpdated != "2025-03-01" {
		t.Fatalf("first school = %+v", schools[0])
	}
}

func TestServiceSchoolsRejectsGrade(t *testing.T) {
	svc, _ := newTestService(t, true)
	if _, err := svc.Schools(context.Background(), 0); err == nil {
		t.Fatalf("expected error for grade 0")
	}
}

func TestServicePreviewCountsMissing(t *testing.T) {
	svc, _ := newTestService(t, true)
	dto, err := svc.Preview(context.Background(), 1, "가람고")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if dto.MissingCount != 1 || len(dto.Units) != 2 {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.LastUpdated != "2025-03-01" {
		t.Fatalf("lastUpdated = %q", dto.LastUpdated)
	}
	if !strings.Contains(dto.Notice, "(1)") {
		t.Fatalf("notice = %q", dto.Notice)
	}
}

func TestServiceWithoutApp(t *testing.T) {
	var svc *Service
	if _, err := svc.Grades(context.Background()); err != ErrNoService {
		t.Fatalf("err = %v, want ErrNoService", err)
	}
}

func TestListGradesTool(t *testing.T) {
	svc, _ := newTestService(t, true)
	result := callTool(t, svc, "list_grades", nil)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	var payload struct {
		Grades []int `json:"grades"`
		Count  int   `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 2 || payload.Grades[0] != 1 || payload.Grades[1] != 2 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestMergeToolSavesBundle(t *testing.T) {
	svc, dir := newTestService(t, true)
	result := callTool(t, svc, "merge", map[string]any{
		"grade":    float64(1),
		"school":   "가람고",
		"category": "descriptive",
	})
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	var dto MergeDTO
	if err := json.Unmarshal([]byte(resultText(t, result)), &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.State != "success" || dto.Pages != 3 {
		t.Fatalf("dto = %+v", dto)
	}
	if !strings.HasPrefix(dto.Path, dir) {
		t.Fatalf("path %q outside %q", dto.Path, dir)
	}
	if _, err := os.Stat(dto.Path); err != nil {
		t.Fatalf("saved file: %v", err)
	}
}

func TestMergeToolReportsMissingMaterial(t *testing.T) {
	svc, _ := newTestService(t, true)
	result := callTool(t, svc, "merge", map[string]any{
		"grade":    float64(1),
		"school":   "나래고",
		"category": "most-frequent",
	})
	if !result.IsError {
		t.Fatalf("expected error result")
	}
	var dto MergeDTO
	if err := json.Unmarshal([]byte(resultText(t, result)), &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.State != "failed" || dto.Path != "" {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestMergeToolRejectsCategory(t *testing.T) {
	svc, _ := newTestService(t, true)
	result := callTool(t, svc, "merge", map[string]any{
		"grade":    float64(1),
		"school":   "가람고",
		"category": "essay",
	})
	if !result.IsError {
		t.Fatalf("expected error for unknown category")
	}
}

func TestReloadToolFailure(t *testing.T) {
	svc, _ := newTestService(t, false)
	result := callTool(t, svc, "reload", nil)
	if !result.IsError {
		t.Fatalf("expected error result")
	}
	var dto ReloadDTO
	if err := json.Unmarshal([]byte(resultText(t, result)), &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.OK || dto.Message != "업데이트 중 오류가 발생했습니다." {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestGradeArgumentForms(t *testing.T) {
	cases := []map[string]any{
		{"grade": "2"},
		{"grade": []string{"2"}},
		{"grade": "2학년"},
	}
	for _, args := range cases {
		got, err := gradeArgument(args)
		if err != nil || got != 2 {
			t.Fatalf("gradeArgument(%v) = %d, %v", args, got, err)
		}
	}
	if _, err := gradeArgument(map[string]any{}); err == nil {
		t.Fatalf("expected error for missing grade")
	}
}

package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gabbaihq/luach/internal/boardservice"
	"github.com/gabbaihq/luach/internal/models"
	"github.com/gabbaihq/luach/internal/store"
	"github.com/gabbaihq/luach/internal/zmanim"
)

func testServer(t *testing.T) (*Server, *boardservice.Service) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "luach-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	calc, err := zmanim.NewCalculator(models.Location{
		Latitude: 31.778, Longitude: 35.235, Timezone: "Asia/Jerusalem",
	}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	svc := boardservice.NewService(db, calc, nil)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_board":
		result, err = srv.getBoard(ctx, req)
	case "get_zmanim":
		result, err = srv.getZmanim(ctx, req)
	case "list_columns":
		result, err = srv.listColumns(ctx, req)
	case "add_event":
		result, err = srv.addEvent(ctx, req)
	case "remove_event":
		result, err = srv.removeEvent(ctx, req)
	case "get_schedule_format":
		result, err = srv.getScheduleFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndRemoveEvent(t *testing.T) {
	srv, svc := testServer(t)
	col, err := svc.CreateColumn(context.Background(), models.Column{
		Title: "Shabbat", ColumnType: models.ColumnShabbat,
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "add_event", map[string]interface{}{
		"columnId": col.ID,
		"line":     "Mincha @ 18:00",
	})
	if r.IsError {
		t.Fatalf("add_event error: %s", resultText(r))
	}
	var ev models.Event
	if err := json.Unmarshal([]byte(resultText(r)), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Name != "Mincha" || ev.TimeDefinition == nil || ev.TimeDefinition.AbsoluteTime != "18:00" {
		t.Errorf("event = %+v", ev)
	}

	r = callTool(t, srv, "remove_event", map[string]interface{}{"id": ev.ID})
	if r.IsError {
		t.Fatalf("remove_event error: %s", resultText(r))
	}
	if _, err := svc.GetEvent(context.Background(), ev.ID); err == nil {
		t.Error("event still exists after remove")
	}
}

func TestAddEvent_BadLine(t *testing.T) {
	srv, svc := testServer(t)
	col, err := svc.CreateColumn(context.Background(), models.Column{
		Title: "Shabbat", ColumnType: models.ColumnShabbat,
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "add_event", map[string]interface{}{
		"columnId": col.ID,
		"line":     "Mincha @ moonset",
	})
	if !r.IsError {
		t.Error("expected error for unknown zman")
	}
}

func TestAddEvent_UnknownColumn(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_event", map[string]interface{}{
		"columnId": "ghost",
		"line":     "Mincha @ 18:00",
	})
	if !r.IsError {
		t.Error("expected error for unknown column")
	}
}

func TestGetBoard(t *testing.T) {
	srv, svc := testServer(t)
	col, err := svc.CreateColumn(context.Background(), models.Column{
		Title: "Shabbat", ColumnType: models.ColumnShabbat,
	})
	if err != nil {
		t.Fatal(err)
	}
	callTool(t, srv, "add_event", map[string]interface{}{
		"columnId": col.ID,
		"line":     "Mincha @ 18:00",
	})

	r := callTool(t, srv, "get_board", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("get_board error: %s", resultText(r))
	}
	var view boardservice.BoardView
	if err := json.Unmarshal([]byte(resultText(r)), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Columns) != 1 || len(view.Columns[0].Events) != 1 {
		t.Errorf("view = %+v", view)
	}
	if got := view.Columns[0].Events[0].DisplayTime; got != "18:00" {
		t.Errorf("display time = %q, want 18:00", got)
	}
}

func TestGetZmanim(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_zmanim", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("get_zmanim error: %s", resultText(r))
	}
	var bundle zmanim.Bundle
	if err := json.Unmarshal([]byte(resultText(r)), &bundle); err != nil {
		t.Fatal(err)
	}
	if bundle.Sunset.IsZero() {
		t.Error("bundle sunset is zero")
	}
}

func TestGetScheduleFormat(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_schedule_format", map[string]interface{}{})
	text := resultText(r)
	if text != ScheduleFormatContract {
		t.Error("contract text mismatch")
	}
}

func TestScheduleFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readScheduleFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.Text != ScheduleFormatContract {
		t.Error("resource text mismatch")
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	auditdomain "teatime-live/internal/audit/domain"
	boarddomain "teatime-live/internal/board/domain"
	boardrepo "teatime-live/internal/board/repository"
	"teatime-live/internal/live/domain"
	liverepo "teatime-live/internal/live/repository"
	"teatime-live/internal/live/webhook"
)

type mockTeardowner struct {
	registry liverepo.Registry
	causes   []string
	err      error
}

func (m *mockTeardowner) Teardown(ctx context.Context, s *domain.Session, actorID, cause string) error {
	if m.err != nil {
		return m.err
	}
	m.causes = append(m.causes, cause)
	return m.registry.Remove(ctx, s.ID)
}

type mockCounter struct{ n int }

func (m mockCounter) CountAudience(context.Context, string, string) (int, error) { return m.n, nil }

type mockAudits struct{ logs []*auditdomain.AuditLog }

func (m mockAudits) ListByBoard(context.Context, int64, int32, int32) ([]*auditdomain.AuditLog, error) {
	return m.logs, nil
}

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *mockTeardowner) {
	t.Helper()
	ctx := context.Background()
	boards := boardrepo.NewMemoryRepository()
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	if err := boards.Create(ctx, &boarddomain.Board{ID: 1, OwnerID: "owner", Title: "Tea", BroadcastAt: at, EndsAt: at.Add(time.Hour), Activated: true}); err != nil {
		t.Fatalf("create board: %v", err)
	}
	registry := liverepo.NewMemoryRepository()
	td := &mockTeardowner{registry: registry}
	var out bytes.Buffer
	return &app{
		registry: registry,
		boards:   boards,
		rooms:    mockCounter{n: 3},
		teardown: td,
		audits: mockAudits{logs: []*auditdomain.AuditLog{
			{Action: "live_opened", UserID: "owner", IP: "10.0.0.1", CreatedAt: at},
		}},
		out: &out,
	}, &out, td
}

func run(a *app, args ...string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.out)
	return cmd.Execute()
}

func TestStatus(t *testing.T) {
	a, out, _ := newTestApp(t)

	if err := run(a, "status", "--board", "1"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "live: closed") {
		t.Errorf("output = %q, want closed", out.String())
	}

	if _, err := a.registry.Create(context.Background(), 1, "sess-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	out.Reset()
	if err := run(a, "status", "--board", "1"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out.String(), "session=sess-1") || !strings.Contains(out.String(), "audience: 3") {
		t.Errorf("output = %q", out.String())
	}
}

func TestStatus_UnknownBoard(t *testing.T) {
	a, _, _ := newTestApp(t)
	if err := run(a, "status", "--board", "42"); err == nil {
		t.Fatal("status of unknown board should fail")
	}
}

func TestTeardown(t *testing.T) {
	a, out, td := newTestApp(t)
	ctx := context.Background()
	if _, err := a.registry.Create(ctx, 1, "sess-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := run(a, "teardown", "--session", "sess-1"); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if len(td.causes) != 1 || td.causes[0] != webhook.CauseOperator {
		t.Errorf("causes = %v", td.causes)
	}
	if exists, _ := a.registry.Exists(ctx, 1); exists {
		t.Error("session should be removed")
	}

	out.Reset()
	if err := run(a, "teardown", "--session", "sess-1"); err != nil {
		t.Fatalf("second teardown: %v", err)
	}
	if !strings.Contains(out.String(), "nothing to do") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTeardown_FailureKeepsSession(t *testing.T) {
	a, _, td := newTestApp(t)
	ctx := context.Background()
	if _, err := a.registry.Create(ctx, 1, "sess-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	td.err = errors.New("control plane unavailable")

	if err := run(a, "teardown", "--session", "sess-1"); err == nil {
		t.Fatal("teardown should fail")
	}
	if exists, _ := a.registry.Exists(ctx, 1); !exists {
		t.Error("session should be kept after a failed teardown")
	}
}

func TestAudit(t *testing.T) {
	a, out, _ := newTestApp(t)
	if err := run(a, "audit", "--board", "1"); err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.Contains(out.String(), "live_opened") || !strings.Contains(out.String(), "ip=10.0.0.1") {
		t.Errorf("output = %q", out.String())
	}
}

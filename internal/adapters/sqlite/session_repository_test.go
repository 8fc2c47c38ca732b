package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/emiliopalmerini/agentboard/internal/adapters/sqlite"
	"github.com/emiliopalmerini/agentboard/internal/domain"
)

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func seedSession(t *testing.T, repo *sqlite.SessionRepository, s *domain.Session) {
	t.Helper()
	if s.StartTime == 0 {
		s.StartTime = nowMs()
	}
	if s.LastEventTime == 0 {
		s.LastEventTime = s.StartTime
	}
	if s.CLIType == "" {
		s.CLIType = domain.CLIClaudeCode
	}
	if s.Status == "" {
		s.Status = domain.StatusIdle
	}
	if err := repo.Upsert(context.Background(), s); err != nil {
		t.Fatalf("Failed to seed session %s: %v", s.ID, err)
	}
}

func TestSessionRepository_UpsertAndGet(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	start := nowMs()
	seedSession(t, repo, &domain.Session{
		ID:              "up-1",
		Project:         "/home/me/proj",
		TaskDescription: "refactor parser",
		StartTime:       start,
		LastEventTime:   start,
	})

	s, err := repo.GetByID(ctx, "up-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if s == nil {
		t.Fatal("expected session, got nil")
	}
	if s.ProjectName != "proj" {
		t.Errorf("expected derived project name proj, got %q", s.ProjectName)
	}
	if s.Status != domain.StatusIdle {
		t.Errorf("expected idle, got %q", s.Status)
	}

	// Upsert with the same id must update in place, not duplicate.
	seedSession(t, repo, &domain.Session{
		ID:            "up-1",
		Project:       "/home/me/proj",
		Status:        domain.StatusWorking,
		StartTime:     start,
		LastEventTime: start + 10,
	})

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	count := 0
	for _, row := range all {
		if row.ID == "up-1" {
			count++
			if row.Status != domain.StatusWorking {
				t.Errorf("expected working after upsert, got %q", row.Status)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one row for up-1, got %d", count)
	}
}

func TestSessionRepository_EmptyDescriptionNeverClobbers(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	seedSession(t, repo, &domain.Session{ID: "desc-1", TaskDescription: "fix the build"})
	seedSession(t, repo, &domain.Session{ID: "desc-1", TaskDescription: ""})

	s, err := repo.GetByID(ctx, "desc-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if s.TaskDescription != "fix the build" {
		t.Errorf("empty upsert clobbered description: got %q", s.TaskDescription)
	}

	now := nowMs()
	if err := repo.UpdateTask(ctx, "desc-1", "", nil, domain.StatusWorking, now); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	s, _ = repo.GetByID(ctx, "desc-1")
	if s.TaskDescription != "fix the build" {
		t.Errorf("empty UpdateTask clobbered description: got %q", s.TaskDescription)
	}
	if s.Status != domain.StatusWorking {
		t.Errorf("UpdateTask did not apply status: got %q", s.Status)
	}
}

func TestSessionRepository_GetByIDMissing(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)

	s, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected nil error for missing session, got %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil session, got %+v", s)
	}
}

func TestSessionRepository_ActiveFilters(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	seedSession(t, repo, &domain.Session{ID: "af-1", Project: "/p/one", Status: domain.StatusWorking})
	seedSession(t, repo, &domain.Session{ID: "af-2", Project: "/p/one", Status: domain.StatusIdle})
	seedSession(t, repo, &domain.Session{ID: "af-3", Project: "/p/one", Status: domain.StatusNeedsApproval, IsClosed: true})
	seedSession(t, repo, &domain.Session{ID: "af-4", Project: "/p/two", Status: domain.StatusNeedsApproval, TermSessionID: "tty-9"})

	byProject, err := repo.ListActiveByProject(ctx, "/p/one")
	if err != nil {
		t.Fatalf("ListActiveByProject failed: %v", err)
	}
	if len(byProject) != 1 || byProject[0].ID != "af-1" {
		t.Errorf("expected only af-1 active in /p/one, got %d rows", len(byProject))
	}

	byTerm, err := repo.ListActiveByTerm(ctx, "tty-9")
	if err != nil {
		t.Fatalf("ListActiveByTerm failed: %v", err)
	}
	if len(byTerm) != 1 || byTerm[0].ID != "af-4" {
		t.Errorf("expected only af-4 in terminal group, got %d rows", len(byTerm))
	}

	n, err := repo.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 active sessions, got %d", n)
	}
}

func TestSessionRepository_DeleteClosedBefore(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)
	events := sqlite.NewEventRepository(db)
	ctx := context.Background()

	old := nowMs() - 8*24*time.Hour.Milliseconds()
	recent := nowMs() - time.Hour.Milliseconds()

	seedSession(t, repo, &domain.Session{ID: "ret-old", IsClosed: true, StartTime: old, LastEventTime: old})
	seedSession(t, repo, &domain.Session{ID: "ret-new", IsClosed: true, StartTime: recent, LastEventTime: recent})
	seedSession(t, repo, &domain.Session{ID: "ret-open", IsClosed: false, StartTime: old, LastEventTime: old})

	if err := events.Insert(ctx, "ret-old", "SessionStart", "", old); err != nil {
		t.Fatalf("Insert event failed: %v", err)
	}

	cutoff := nowMs() - 7*24*time.Hour.Milliseconds()
	n, err := repo.DeleteClosedBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteClosedBefore failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	if s, _ := repo.GetByID(ctx, "ret-old"); s != nil {
		t.Error("ret-old should be gone")
	}
	if s, _ := repo.GetByID(ctx, "ret-new"); s == nil {
		t.Error("ret-new should survive")
	}
	if s, _ := repo.GetByID(ctx, "ret-open"); s == nil {
		t.Error("ret-open should survive (not closed)")
	}

	// Events cascade with the session.
	evs, err := events.ListBySession(ctx, "ret-old")
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(evs) != 0 {
		t.Errorf("expected cascaded event deletion, got %d rows", len(evs))
	}
}

func TestEventRepository_AppendOrder(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewSessionRepository(db)
	events := sqlite.NewEventRepository(db)
	ctx := context.Background()

	seedSession(t, repo, &domain.Session{ID: "ev-1"})

	base := nowMs()
	for i, typ := range []string{"SessionStart", "UserPromptSubmit", "Stop"} {
		if err := events.Insert(ctx, "ev-1", typ, "", base+int64(i)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	evs, err := events.ListBySession(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	want := []string{"SessionStart", "UserPromptSubmit", "Stop"}
	for i, e := range evs {
		if e.Type != want[i] {
			t.Errorf("event %d: got %q, want %q", i, e.Type, want[i])
		}
	}
}

func TestCustomCLIRepository_RoundTrip(t *testing.T) {
	db := testDB(t)
	repo := sqlite.NewCustomCLIRepository(db)
	ctx := context.Background()

	cli := &domain.CustomCLI{
		ID:         "cli-1",
		Name:       "MyAgent",
		ConfigPath: "/home/me/.myagent/config.yaml",
		SkillsPath: "/home/me/.myagent/skills",
		CreatedAt:  nowMs(),
	}
	if err := repo.Save(ctx, cli); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "cli-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.Name != "MyAgent" {
		t.Fatalf("unexpected custom CLI: %+v", got)
	}

	cli.Name = "Renamed"
	if err := repo.Save(ctx, cli); err != nil {
		t.Fatalf("Save (update) failed: %v", err)
	}
	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Renamed" {
		t.Fatalf("expected single renamed profile, got %+v", all)
	}

	if err := repo.Delete(ctx, "cli-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := repo.GetByID(ctx, "cli-1"); got != nil {
		t.Error("expected profile to be deleted")
	}
}

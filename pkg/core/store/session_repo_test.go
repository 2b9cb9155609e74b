package store

import (
	"context"
	"testing"
)

func TestFileBackend_MessageRoundtrip(t *testing.T) {
	s := NewSessionStore(nil, t.TempDir())
	ctx := context.Background()
	id := NewSessionID()

	if err := s.AppendMessage(ctx, id, Message{Role: "user", Content: "total income?"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := s.AppendMessage(ctx, id, Message{Role: "assistant", Content: "1500"}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	history, err := s.History(ctx, id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[0].Role != "user" || history[1].Content != "1500" {
		t.Errorf("history = %+v", history)
	}
	if history[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestFileBackend_HistoryEmptySession(t *testing.T) {
	s := NewSessionStore(nil, t.TempDir())
	history, err := s.History(context.Background(), NewSessionID())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d messages for unknown session, want 0", len(history))
	}
}

func TestFileBackend_SaveRun(t *testing.T) {
	s := NewSessionStore(nil, t.TempDir())
	run := AnalysisRun{
		SessionID:  NewSessionID(),
		Query:      "total income?",
		PlanJSON:   `{"steps":[{"op":"find_total","label":"Total Income"}]}`,
		ResultJSON: `{"Kind":"number","Number":1500}`,
	}
	if err := s.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
}

func TestEnsureSchema_FileBackendNoop(t *testing.T) {
	s := NewSessionStore(nil, t.TempDir())
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Errorf("EnsureSchema on file backend: %v", err)
	}
}

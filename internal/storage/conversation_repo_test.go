package storage

import (
	"context"
	"fmt"
	"testing"
)

func appendTurns(t *testing.T, repo *ConversationRepo, conversationID, documentID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		turn := &TurnRecord{
			ConversationID: conversationID,
			DocumentID:     documentID,
			Question:       fmt.Sprintf("q%d", i),
			Answer:         fmt.Sprintf("a%d", i),
			Confidence:     0.5,
		}
		if err := repo.Append(context.Background(), turn); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func TestConversationRepo_ListRecent(t *testing.T) {
	db := newTestDB(t)
	doc := insertTestDocument(t, NewDocumentRepo(db), "closing.txt", "hash-1")
	repo := NewConversationRepo(db)
	ctx := context.Background()

	appendTurns(t, repo, "conv-1", doc.ID, 5)
	appendTurns(t, repo, "conv-2", doc.ID, 1)

	tests := []struct {
		name          string
		limit         int
		wantQuestions []string
	}{
		{name: "last two oldest first", limit: 2, wantQuestions: []string{"q3", "q4"}},
		{name: "limit above size", limit: 10, wantQuestions: []string{"q0", "q1", "q2", "q3", "q4"}},
		{name: "zero limit", limit: 0, wantQuestions: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, err := repo.ListRecent(ctx, "conv-1", tt.limit)
			if err != nil {
				t.Fatalf("ListRecent() error = %v", err)
			}
			if len(turns) != len(tt.wantQuestions) {
				t.Fatalf("ListRecent() = %d turns, want %d", len(turns), len(tt.wantQuestions))
			}
			for i, turn := range turns {
				if turn.Question != tt.wantQuestions[i] {
					t.Errorf("turns[%d].Question = %q, want %q", i, turn.Question, tt.wantQuestions[i])
				}
			}
		})
	}

	unknown, err := repo.ListRecent(ctx, "conv-unknown", 5)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("ListRecent() for unknown conversation = %d turns, want 0", len(unknown))
	}
}

func TestConversationRepo_Trim(t *testing.T) {
	db := newTestDB(t)
	doc := insertTestDocument(t, NewDocumentRepo(db), "closing.txt", "hash-1")
	repo := NewConversationRepo(db)
	ctx := context.Background()

	appendTurns(t, repo, "conv-1", doc.ID, 25)
	appendTurns(t, repo, "conv-2", doc.ID, 3)

	if err := repo.Trim(ctx, "conv-1", 20); err != nil {
		t.Fatalf("Trim() error = %v", err)
	}

	turns, err := repo.ListRecent(ctx, "conv-1", 100)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(turns) != 20 {
		t.Fatalf("after Trim() = %d turns, want 20", len(turns))
	}
	if turns[0].Question != "q5" || turns[19].Question != "q24" {
		t.Errorf("Trim() kept [%s..%s], want [q5..q24]", turns[0].Question, turns[19].Question)
	}

	other, err := repo.ListRecent(ctx, "conv-2", 100)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(other) != 3 {
		t.Errorf("Trim() touched another conversation: %d turns, want 3", len(other))
	}
}

func TestConversationRepo_Clear(t *testing.T) {
	db := newTestDB(t)
	doc := insertTestDocument(t, NewDocumentRepo(db), "closing.txt", "hash-1")
	repo := NewConversationRepo(db)
	ctx := context.Background()

	appendTurns(t, repo, "conv-1", doc.ID, 3)

	removed, err := repo.Clear(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Clear() removed = %d, want 3", removed)
	}

	removed, err = repo.Clear(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("second Clear() removed = %d, want 0", removed)
	}
}

package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks realty-assistant/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConversationStore defines the interface for conversation history operations.
type ConversationStore interface {
	// Append stores a turn at the end of its conversation.
	Append(ctx context.Context, turn *TurnRecord) error
	// ListRecent returns up to limit most recent turns, oldest first.
	ListRecent(ctx context.Context, conversationID string, limit int) ([]*TurnRecord, error)
	// Trim deletes all but the keep most recent turns of a conversation.
	Trim(ctx context.Context, conversationID string, keep int) error
	// Clear deletes every turn of a conversation and returns how many were removed.
	Clear(ctx context.Context, conversationID string) (int, error)
}

// ConversationRepo provides methods for conversation history operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Append stores a turn at the end of its conversation. ID and CreatedAt are filled in when empty.
func (r *ConversationRepo) Append(ctx context.Context, turn *TurnRecord) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (id, conversation_id, document_id, question, answer, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.ConversationID, turn.DocumentID, turn.Question, turn.Answer, turn.Confidence, formatTime(turn.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	return nil
}

// ListRecent returns up to limit most recent turns, oldest first.
// Returns an empty slice for an unknown conversation.
func (r *ConversationRepo) ListRecent(ctx context.Context, conversationID string, limit int) ([]*TurnRecord, error) {
	if limit <= 0 {
		return []*TurnRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, document_id, question, answer, confidence, created_at FROM (
			SELECT seq, id, conversation_id, document_id, question, answer, confidence, created_at
			FROM conversation_turns WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	turns := []*TurnRecord{}
	for rows.Next() {
		var turn TurnRecord
		var createdAt string
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &turn.DocumentID, &turn.Question, &turn.Answer, &turn.Confidence, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation turn: %w", err)
		}
		if turn.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return turns, nil
}

// Trim deletes all but the keep most recent turns of a conversation.
func (r *ConversationRepo) Trim(ctx context.Context, conversationID string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM conversation_turns WHERE conversation_id = ? AND seq NOT IN (
			SELECT seq FROM conversation_turns WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
		 )`,
		conversationID, conversationID, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to trim conversation: %w", err)
	}
	return nil
}

// Clear deletes every turn of a conversation and returns how many were removed.
func (r *ConversationRepo) Clear(ctx context.Context, conversationID string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM conversation_turns WHERE conversation_id = ?", conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(affected), nil
}

package storage

import "time"

// DocumentRecord represents a loaded document in the database.
type DocumentRecord struct {
	ID        string // UUID
	Name      string // Original file name
	Format    string // pdf, markdown or text
	Title     string
	Pages     int
	SizeBytes int64
	Hash      string // SHA256 hex string of the normalized text
	Text      string // Normalized text, empty when loaded through List
	CreatedAt time.Time
}

// ChunkRecord represents a chunk of a document's normalized text.
type ChunkRecord struct {
	ID          string // UUID (same as Qdrant point ID)
	DocumentID  string // UUID (foreign key to documents.id)
	ChunkIndex  int    // Index within document (starts at 0)
	StartOffset int    // Character offset into the document text
	EndOffset   int    // Exclusive character offset
	Text        string
}

// TurnRecord represents one question/answer exchange of a conversation.
type TurnRecord struct {
	ID             string // UUID
	ConversationID string
	DocumentID     string
	Question       string
	Answer         string
	Confidence     float64
	CreatedAt      time.Time
}

package svgdoc

import "time"

// MoveRecord is one applied hierarchical move, kept as document history
type MoveRecord struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	ObjectID      string    `json:"object_id" db:"object_id"`
	FromContainer string    `json:"from_container" db:"from_container"`
	FromIndex     int       `json:"from_index" db:"from_index"`
	ToContainer   string    `json:"to_container" db:"to_container"`
	ToIndex       int       `json:"to_index" db:"to_index"`
	PeerID        string    `json:"peer_id" db:"peer_id"`
	Revision      int64     `json:"revision" db:"revision"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Snapshot is the persisted form of a document
type Snapshot struct {
	DocumentID string    `json:"document_id" db:"document_id"`
	Data       []byte    `json:"-" db:"data"`
	Revision   int64     `json:"revision" db:"revision"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

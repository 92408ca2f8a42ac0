package database

import (
	"context"
	"database/sql"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type ConversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *entity.Conversation) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO conversations (id, lead_id, direction, type, subject, body, classification, message_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9)
	`,
		conv.ID, conv.LeadID, string(conv.Direction), string(conv.Type),
		conv.Subject, conv.Body, string(conv.Classification), conv.MessageID, conv.CreatedAt,
	)
	return err
}

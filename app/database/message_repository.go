package database

import (
	"context"
	"fmt"
)

type messageRepository struct {
	db *DB
}

var _ MessageRepository = (*messageRepository)(nil)

func NewMessageRepository(db *DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CountMessagesNotOnDate(ctx context.Context, date string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE date != ?
	`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

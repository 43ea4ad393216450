package postgres

import (
	"context"
	"fmt"

	"github.com/dcalliari/appe/internal/chat"
	"github.com/jmoiron/sqlx"
)

// ChatRepository uses '?' placeholders rebound to the driver's bindvar style,
// so the same queries run on postgres and sqlite.
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

const messageColumns = "id, from_user_id, to_user_id, message, is_read, created_at"

func (r *ChatRepository) ListContacts(ctx context.Context, excludeID string) ([]*chat.Contact, error) {
	query := r.db.Rebind(`
SELECT id, name, role, apartment
FROM users
WHERE role IN ('admin', 'doorman') AND id <> ?
ORDER BY name`)

	contacts := []*chat.Contact{}
	if err := r.db.SelectContext(ctx, &contacts, query, excludeID); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (r *ChatRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(1) FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return n > 0, nil
}

func (r *ChatRepository) Insert(ctx context.Context, m *chat.Message) error {
	query := r.db.Rebind(`
INSERT INTO chat_messages (` + messageColumns + `)
VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.FromUserID, m.ToUserID, m.Message, m.IsRead, m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *ChatRepository) Thread(ctx context.Context, a, b string) ([]*chat.Message, error) {
	query := r.db.Rebind(`
SELECT ` + messageColumns + `
FROM chat_messages
WHERE (from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)
ORDER BY created_at ASC`)

	msgs := []*chat.Message{}
	if err := r.db.SelectContext(ctx, &msgs, query, a, b, b, a); err != nil {
		return nil, fmt.Errorf("thread: %w", err)
	}
	return msgs, nil
}

// MarkRead flags the listed messages read. Only unread messages addressed to
// recipientID are touched.
func (r *ChatRepository) MarkRead(ctx context.Context, recipientID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
UPDATE chat_messages SET is_read = ?
WHERE to_user_id = ? AND is_read = ? AND id IN (?)`, true, recipientID, false, ids)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return n, nil
}

func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]*chat.Message, error) {
	query := r.db.Rebind(`
SELECT ` + messageColumns + `
FROM chat_messages
WHERE from_user_id = ? OR to_user_id = ?
ORDER BY created_at DESC`)

	msgs := []*chat.Message{}
	if err := r.db.SelectContext(ctx, &msgs, query, userID, userID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

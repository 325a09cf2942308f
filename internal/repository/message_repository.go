package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
)

type MessageRepositoryInterface interface {
	// CreateBatch inserts all messages in one transaction so a dispatch is
	// all-or-nothing: either every recipient gets a pending row or none do.
	// When templateID is set, the template usage counter is incremented once
	// inside the same transaction.
	CreateBatch(msgs []*model.Message, templateID *int) error

	GetByID(id int) (*model.Message, error)
	GetByProviderRef(ref string) (*model.Message, error)
	UpdateStatus(id int, status model.MessageStatus, sentAt *time.Time, lastError string) error
	List(filter model.MessageFilter) ([]model.Message, error)
	Stats(now time.Time) (*model.MessageStats, error)
}

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) CreateBatch(msgs []*model.Message, templateID *int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
        INSERT INTO messages
        (channel, recipient, recipient_name, subject, content, template_id, provider_ref, status, last_error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', $9)
        RETURNING id
    `
	now := time.Now()
	for _, msg := range msgs {
		msg.CreatedAt = now
		msg.Status = model.StatusPending
		err := tx.QueryRow(query, msg.Channel, msg.Recipient, msg.RecipientName,
			msg.Subject, msg.Content, msg.TemplateID, msg.ProviderRef,
			msg.Status, msg.CreatedAt).Scan(&msg.ID)
		if err != nil {
			return errors.Wrap(err, "failed to insert message")
		}
	}

	if templateID != nil {
		res, err := tx.Exec(`UPDATE message_templates SET usage_count=usage_count+1 WHERE id=$1`,
			*templateID)
		if err != nil {
			return errors.Wrapf(err, "failed to increment usage of template %d", *templateID)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return appErrors.NewTemplateNotFound(*templateID)
		}
	}

	return tx.Commit()
}

const messageColumns = `id, channel, recipient, recipient_name, subject, content,
        template_id, provider_ref, status, last_error, sent_at, created_at`

func (r *MessageRepository) scanMessage(row *sql.Row) (*model.Message, error) {
	var msg model.Message
	err := row.Scan(&msg.ID, &msg.Channel, &msg.Recipient, &msg.RecipientName,
		&msg.Subject, &msg.Content, &msg.TemplateID, &msg.ProviderRef,
		&msg.Status, &msg.LastError, &msg.SentAt, &msg.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepository) GetByID(id int) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	return r.scanMessage(r.DB.QueryRow(query, id))
}

func (r *MessageRepository) GetByProviderRef(ref string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE provider_ref=$1`
	return r.scanMessage(r.DB.QueryRow(query, ref))
}

func (r *MessageRepository) UpdateStatus(id int, status model.MessageStatus, sentAt *time.Time, lastError string) error {
	query := `UPDATE messages SET status=$1, sent_at=COALESCE($2, sent_at), last_error=$3 WHERE id=$4`
	_, err := r.DB.Exec(query, status, sentAt, lastError, id)
	return errors.Wrapf(err, "failed to update status of message %d", id)
}

func (r *MessageRepository) List(filter model.MessageFilter) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Channel != "" {
		query += fmt.Sprintf(" AND channel=$%d", argPos)
		args = append(args, filter.Channel)
		argPos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (recipient ILIKE $%d OR recipient_name ILIKE $%d OR content ILIKE $%d)",
			argPos, argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", argPos)
	args = append(args, limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Channel, &msg.Recipient, &msg.RecipientName,
			&msg.Subject, &msg.Content, &msg.TemplateID, &msg.ProviderRef,
			&msg.Status, &msg.LastError, &msg.SentAt, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Stats recomputes the rollup view straight from the messages table; there
// are no separately maintained counters that could drift. The delivery rate
// covers the trailing 30 days of attempted (non-pending) messages.
func (r *MessageRepository) Stats(now time.Time) (*model.MessageStats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	windowStart := today.AddDate(0, 0, -30)

	query := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE sent_at >= $1 AND sent_at < $2),
            COUNT(*) FILTER (WHERE sent_at >= $3 AND sent_at < $1),
            COUNT(*) FILTER (WHERE sent_at >= $4 AND status <> 'pending'),
            COUNT(*) FILTER (WHERE sent_at >= $4 AND status IN ('delivered', 'opened')),
            COUNT(*) FILTER (WHERE channel = 'email' AND status IN ('sent', 'delivered'))
        FROM messages
    `
	var stats model.MessageStats
	var attempted, deliveredOrBetter int
	err := r.DB.QueryRow(query, today, tomorrow, yesterday, windowStart).Scan(
		&stats.Total, &stats.SentToday, &stats.SentYesterday,
		&attempted, &deliveredOrBetter, &stats.UnreadCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate message stats")
	}

	if attempted > 0 {
		stats.DeliveryRate = float64(deliveredOrBetter) / float64(attempted)
	}
	return &stats, nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)

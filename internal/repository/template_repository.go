package repository

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	List(channel model.Channel) ([]model.MessageTemplate, error)
	GetByID(id int) (*model.MessageTemplate, error)
	Create(t *model.MessageTemplate) error
	Update(t *model.MessageTemplate) error
	Delete(id int) error
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) List(channel model.Channel) ([]model.MessageTemplate, error) {
	query := `
        SELECT id, name, category, channel, subject, body, usage_count, created_at, updated_at
        FROM message_templates
    `
	args := []interface{}{}
	if channel != "" {
		query += ` WHERE channel=$1`
		args = append(args, channel)
	}
	query += ` ORDER BY name, id`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}
	defer rows.Close()

	templates := []model.MessageTemplate{}
	for rows.Next() {
		var t model.MessageTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Channel, &t.Subject,
			&t.Body, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) GetByID(id int) (*model.MessageTemplate, error) {
	query := `
        SELECT id, name, category, channel, subject, body, usage_count, created_at, updated_at
        FROM message_templates WHERE id=$1
    `
	var t model.MessageTemplate
	err := r.DB.QueryRow(query, id).Scan(&t.ID, &t.Name, &t.Category, &t.Channel,
		&t.Subject, &t.Body, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, errors.Wrapf(err, "failed to get template %d", id)
	}
	return &t, nil
}

func (r *TemplateRepository) Create(t *model.MessageTemplate) error {
	t.CreatedAt = time.Now()
	query := `
        INSERT INTO message_templates (name, category, channel, subject, body, usage_count, created_at)
        VALUES ($1, $2, $3, $4, $5, 0, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, t.Name, t.Category, t.Channel, t.Subject, t.Body, t.CreatedAt).Scan(&t.ID)
}

func (r *TemplateRepository) Update(t *model.MessageTemplate) error {
	query := `
        UPDATE message_templates
        SET name=$1, category=$2, subject=$3, body=$4, updated_at=NOW()
        WHERE id=$5
    `
	res, err := r.DB.Exec(query, t.Name, t.Category, t.Subject, t.Body, t.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to update template %d", t.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(t.ID)
	}
	return nil
}

// Delete is blocked while any message still references the template; message
// history is the audit trail and must not end up with dangling template ids.
func (r *TemplateRepository) Delete(id int) error {
	var referenced int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM messages WHERE template_id=$1`, id).Scan(&referenced)
	if err != nil {
		return errors.Wrapf(err, "failed to count messages for template %d", id)
	}
	if referenced > 0 {
		return appErrors.NewTemplateInUse(id, referenced)
	}

	res, err := r.DB.Exec(`DELETE FROM message_templates WHERE id=$1`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete template %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)

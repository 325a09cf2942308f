package repository

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	appErrors "github.com/netvista/ispconsole-backend/internal/errors"
	"github.com/netvista/ispconsole-backend/internal/model"
)

// RecipientRepositoryInterface reads message recipients live from the
// customer and employee tables. The dispatcher never writes either table.
type RecipientRepositoryInterface interface {
	// Search matches name/email/phone by case-insensitive substring and
	// status by equality. Results are ordered by (type, id) so an identical
	// query always yields the identical set in the identical order.
	Search(typeFilter model.RecipientType, query, status string) ([]model.Recipient, error)
	GetByRef(ref model.RecipientRef) (*model.Recipient, error)
}

type RecipientRepository struct {
	DB *sql.DB
}

const recipientUnion = `
        SELECT id, 'customer' AS recipient_type, name, email, phone, status, plan
        FROM customers
        UNION ALL
        SELECT id, 'employee' AS recipient_type, name, email, phone, status, '' AS plan
        FROM employees
`

func (r *RecipientRepository) Search(typeFilter model.RecipientType, query, status string) ([]model.Recipient, error) {
	sqlQuery := `SELECT id, recipient_type, name, email, phone, status, plan FROM (` +
		recipientUnion + `) AS recipients WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if typeFilter != "" {
		sqlQuery += fmt.Sprintf(" AND recipient_type=$%d", argPos)
		args = append(args, typeFilter)
		argPos++
	}
	if query != "" {
		sqlQuery += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
			argPos, argPos, argPos)
		args = append(args, "%"+query+"%")
		argPos++
	}
	if status != "" {
		sqlQuery += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
	}

	sqlQuery += " ORDER BY recipient_type, id"

	rows, err := r.DB.Query(sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search recipients")
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Name, &rec.Email, &rec.Phone,
			&rec.Status, &rec.Plan); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *RecipientRepository) GetByRef(ref model.RecipientRef) (*model.Recipient, error) {
	// Anything other than the two known types must not fall through to the
	// customers table with a bogus type on the returned record.
	if !ref.Type.Valid() {
		return nil, &appErrors.ErrInvalidRecipientType{Type: ref.Type}
	}

	table := "customers"
	plan := "plan"
	if ref.Type == model.RecipientEmployee {
		table = "employees"
		plan = "''"
	}

	query := fmt.Sprintf(`SELECT id, name, email, phone, status, %s FROM %s WHERE id=$1`, plan, table)

	var rec model.Recipient
	err := r.DB.QueryRow(query, ref.ID).Scan(&rec.ID, &rec.Name, &rec.Email,
		&rec.Phone, &rec.Status, &rec.Plan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewRecipientNotFound(ref.ID, ref.Type)
		}
		return nil, errors.Wrapf(err, "failed to get %s %d", ref.Type, ref.ID)
	}
	rec.Type = ref.Type
	return &rec, nil
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)

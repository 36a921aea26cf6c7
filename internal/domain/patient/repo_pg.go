package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, date_of_birth, email, phone_number,
	address_street, address_city, address_state, address_zip,
	created_at, updated_at, deleted_at`

const prefCols = `id, patient_id, preferred_method,
	allows_appointment_reminders, allows_billing_notifications, allows_marketing_updates`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Email, &p.PhoneNumber,
		&p.AddressStreet, &p.AddressCity, &p.AddressState, &p.AddressZip,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPreference(row pgx.Row) (*CommunicationPreference, error) {
	var cp CommunicationPreference
	err := row.Scan(&cp.ID, &cp.PatientID, &cp.PreferredMethod,
		&cp.AllowsAppointmentReminders, &cp.AllowsBillingNotifications, &cp.AllowsMarketingUpdates)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *repoPG) ListActive(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+`
		FROM patients WHERE deleted_at IS NULL
		ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachPreferences(ctx, items, ids); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// attachPreferences eagerly loads preferences for the fetched page in one query.
func (r *repoPG) attachPreferences(ctx context.Context, items []*Patient, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prefCols+` FROM communication_preferences WHERE patient_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byPatient := make(map[uuid.UUID]*CommunicationPreference, len(ids))
	for rows.Next() {
		cp, err := scanPreference(rows)
		if err != nil {
			return err
		}
		byPatient[cp.PatientID] = cp
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range items {
		p.Preference = byPatient[p.ID]
	}
	return nil
}

func (r *repoPG) GetActive(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, err
	}

	cp, err := scanPreference(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prefCols+` FROM communication_preferences WHERE patient_id = $1`, id))
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		p.Preference = cp
	}
	return p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient, pref *CommunicationPreference) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, date_of_birth, email, phone_number,
			address_street, address_city, address_state, address_zip, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Email, p.PhoneNumber,
		p.AddressStreet, p.AddressCity, p.AddressState, p.AddressZip, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("Email address already exists.")
	}
	if err != nil {
		return err
	}

	if pref != nil {
		return r.SavePreference(ctx, pref)
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET first_name=$2, last_name=$3, date_of_birth=$4, email=$5,
			phone_number=$6, address_street=$7, address_city=$8, address_state=$9,
			address_zip=$10, updated_at=$11
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Email,
		p.PhoneNumber, p.AddressStreet, p.AddressCity, p.AddressState,
		p.AddressZip, p.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("Email address already exists.")
	}
	if err != nil {
		return err
	}
	// The row may have been soft-deleted since the caller fetched it.
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) SavePreference(ctx context.Context, pref *CommunicationPreference) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO communication_preferences
			(id, patient_id, preferred_method,
			 allows_appointment_reminders, allows_billing_notifications, allows_marketing_updates)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (patient_id) DO UPDATE SET
			preferred_method = EXCLUDED.preferred_method,
			allows_appointment_reminders = EXCLUDED.allows_appointment_reminders,
			allows_billing_notifications = EXCLUDED.allows_billing_notifications,
			allows_marketing_updates = EXCLUDED.allows_marketing_updates`,
		pref.ID, pref.PatientID, pref.PreferredMethod,
		pref.AllowsAppointmentReminders, pref.AllowsBillingNotifications, pref.AllowsMarketingUpdates)
	return err
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID, when time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET deleted_at=$2, updated_at=$2 WHERE id = $1 AND deleted_at IS NULL`,
		id, when)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *repoPG) ActiveEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM patients WHERE email = $1 AND deleted_at IS NULL AND id <> $2
		)`, email, exclude).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

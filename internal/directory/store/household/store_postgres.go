package household

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	txcontext "familydir/pkg/platform/tx"
)

const selectHousehold = `
	SELECT h.id, h.name, h.primary_contact_person_id,
	       COALESCE(TRIM(p.first_name || ' ' || p.last_name), ''),
	       h.notes, h.created_at, h.updated_at
	FROM households h
	LEFT JOIN persons p ON p.id = h.primary_contact_person_id`

// PostgresStore persists households in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed household store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, householdID id.HouseholdID) (*models.Household, error) {
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, selectHousehold+` WHERE h.id = $1`, householdID)
	h, err := scanHousehold(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find household by id: %w", err)
	}
	return h, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Household, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, selectHousehold+` ORDER BY h.name, h.id`)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var out []*models.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("list households: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, h *models.Household) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO households (id, name, primary_contact_person_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID, h.Name, contactArg(h.PrimaryContactID), h.Notes, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create household: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, h *models.Household) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE households SET name = $2, primary_contact_person_id = $3, notes = $4, updated_at = $5
		WHERE id = $1`,
		h.ID, h.Name, contactArg(h.PrimaryContactID), h.Notes, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update household: %w", err)
	}
	return requireRow(res, "update household")
}

func (s *PostgresStore) Delete(ctx context.Context, householdID id.HouseholdID) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM households WHERE id = $1`, householdID)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return requireRow(res, "delete household")
}

// ClearPrimaryContact unsets the designee wherever it is personID. The
// foreign key does the same on delete; this covers moves out of a household.
func (s *PostgresStore) ClearPrimaryContact(ctx context.Context, personID id.PersonID) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
		`UPDATE households SET primary_contact_person_id = NULL WHERE primary_contact_person_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("clear primary contact: %w", err)
	}
	return nil
}

// DeleteEmpty removes households without members and returns how many went.
func (s *PostgresStore) DeleteEmpty(ctx context.Context) (int, error) {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		DELETE FROM households h
		WHERE NOT EXISTS (SELECT 1 FROM persons p WHERE p.household_id = h.id)`)
	if err != nil {
		return 0, fmt.Errorf("delete empty households: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete empty households: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHousehold(row rowScanner) (*models.Household, error) {
	var (
		h         models.Household
		contactID uuid.NullUUID
	)
	if err := row.Scan(&h.ID, &h.Name, &contactID, &h.PrimaryContactName, &h.Notes, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	if contactID.Valid {
		pid := id.PersonID(contactID.UUID)
		h.PrimaryContactID = &pid
	}
	return &h, nil
}

func contactArg(pid *id.PersonID) uuid.NullUUID {
	if pid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*pid), Valid: true}
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

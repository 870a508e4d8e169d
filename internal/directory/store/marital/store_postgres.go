package marital

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	txcontext "familydir/pkg/platform/tx"
)

const closeActiveSQL = `
	UPDATE marital_relationships SET divorce_date = $2
	WHERE (person_a_id = $1 OR person_b_id = $1) AND divorce_date IS NULL`

// PostgresStore persists marital relationships in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed marital store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SetSpouse closes every active relationship of either party as of today and
// then opens (or reopens) the pair. The statements share the context
// transaction, or a transaction of their own when none is open.
func (s *PostgresStore) SetSpouse(ctx context.Context, personID, spouseID id.PersonID, today time.Time) (*models.MaritalRelationship, error) {
	a, b := models.OrderPair(personID, spouseID)
	rel := &models.MaritalRelationship{PersonA: a, PersonB: b}

	err := s.atomic(ctx, func(exec txcontext.Execer) error {
		for _, pid := range []id.PersonID{personID, spouseID} {
			if _, err := exec.ExecContext(ctx, closeActiveSQL, pid, today); err != nil {
				return fmt.Errorf("close active marriages: %w", err)
			}
		}
		err := exec.QueryRowContext(ctx, `
			INSERT INTO marital_relationships (id, person_a_id, person_b_id, marriage_date, divorce_date)
			VALUES ($1, $2, $3, NULL, NULL)
			ON CONFLICT (person_a_id, person_b_id)
			DO UPDATE SET marriage_date = NULL, divorce_date = NULL
			RETURNING id`,
			uuid.New(), a, b).Scan(&rel.ID)
		if err != nil {
			return fmt.Errorf("upsert marriage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// RemoveSpouse closes the person's active relationship. It reports whether
// one was open.
func (s *PostgresStore) RemoveSpouse(ctx context.Context, personID id.PersonID, today time.Time) (bool, error) {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, closeActiveSQL, personID, today)
	if err != nil {
		return false, fmt.Errorf("remove spouse: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove spouse: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) FindActive(ctx context.Context, personID id.PersonID) (*models.MaritalRelationship, error) {
	var (
		rel      models.MaritalRelationship
		married  sql.NullTime
		divorced sql.NullTime
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, person_a_id, person_b_id, marriage_date, divorce_date
		FROM marital_relationships
		WHERE (person_a_id = $1 OR person_b_id = $1) AND divorce_date IS NULL
		LIMIT 1`, personID).Scan(&rel.ID, &rel.PersonA, &rel.PersonB, &married, &divorced)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active marriage: %w", err)
	}
	if married.Valid {
		rel.MarriageDate = &married.Time
	}
	if divorced.Valid {
		rel.DivorceDate = &divorced.Time
	}
	return &rel, nil
}

func (s *PostgresStore) ActiveSpouse(ctx context.Context, personID id.PersonID) (id.PersonID, bool, error) {
	rel, err := s.FindActive(ctx, personID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return id.PersonID{}, false, nil
	}
	if err != nil {
		return id.PersonID{}, false, err
	}
	return rel.Partner(personID), true, nil
}

func (s *PostgresStore) DeleteByPerson(ctx context.Context, personID id.PersonID) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
		`DELETE FROM marital_relationships WHERE person_a_id = $1 OR person_b_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("delete marriages: %w", err)
	}
	return nil
}

func (s *PostgresStore) atomic(ctx context.Context, fn func(txcontext.Execer) error) error {
	if tx, ok := txcontext.From(ctx); ok {
		return fn(tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

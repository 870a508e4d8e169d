package person

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"familydir/internal/directory/models"
	platformpg "familydir/internal/platform/postgres"
	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	txcontext "familydir/pkg/platform/tx"
)

const personColumns = `id, first_name, last_name, full_name, email, phone,
	address_line1, address_line2, city, state, postal_code, country,
	date_of_birth, age, wedding_anniversary, years_married, gender, generation,
	mother_id, mother_relationship_kind, father_id, father_relationship_kind,
	household_id, photo_url, deceased, is_admin, privacy, created_at, updated_at`

// PostgresStore persists persons in PostgreSQL. Queries join the context
// transaction when one is open.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed person store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, personID)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, personIDs []id.PersonID) ([]*models.Person, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}
	return s.query(ctx, "find persons by ids",
		`SELECT `+personColumns+` FROM persons WHERE id = ANY($1::uuid[])`,
		pq.Array(id.PersonIDStrings(personIDs)))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, sentinel.ErrNotFound
	}
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE LOWER(email) = LOWER($1)`, email)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person by email: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByHousehold(ctx context.Context, householdID id.HouseholdID) ([]*models.Person, error) {
	return s.query(ctx, "find persons by household",
		`SELECT `+personColumns+` FROM persons WHERE household_id = $1
		 ORDER BY last_name, first_name, id`, householdID)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Person, error) {
	return s.query(ctx, "list persons",
		`SELECT `+personColumns+` FROM persons ORDER BY last_name, first_name, id`)
}

func (s *PostgresStore) CountByHousehold(ctx context.Context, householdID id.HouseholdID) (int, error) {
	var n int
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE household_id = $1`, householdID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count household members: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Person) error {
	args, err := personArgs(p)
	if err != nil {
		return err
	}
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO persons (`+personColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`,
		args...)
	if err != nil {
		if platformpg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Person) error {
	args, err := personArgs(p)
	if err != nil {
		return err
	}
	// created_at is immutable
	args = append(args[:27], args[28])
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE persons SET
			first_name = $2, last_name = $3, full_name = $4, email = $5, phone = $6,
			address_line1 = $7, address_line2 = $8, city = $9, state = $10,
			postal_code = $11, country = $12, date_of_birth = $13, age = $14,
			wedding_anniversary = $15, years_married = $16, gender = $17,
			generation = $18, mother_id = $19, mother_relationship_kind = $20,
			father_id = $21, father_relationship_kind = $22, household_id = $23,
			photo_url = $24, deceased = $25, is_admin = $26, privacy = $27,
			updated_at = $28
		WHERE id = $1`,
		args...)
	if err != nil {
		if platformpg.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(res, "update person")
}

func (s *PostgresStore) Delete(ctx context.Context, personID id.PersonID) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, personID)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireRow(res, "delete person")
}

// ResolvePrincipal returns the admin flag of an existing person.
func (s *PostgresStore) ResolvePrincipal(ctx context.Context, personID id.PersonID) (bool, error) {
	var isAdmin bool
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT is_admin FROM persons WHERE id = $1`, personID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("resolve principal: %w", err)
	}
	return isAdmin, nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Person, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p            models.Person
		email        sql.NullString
		dob          sql.NullTime
		age          sql.NullInt32
		anniversary  sql.NullTime
		yearsMarried sql.NullInt32
		gender       string
		motherID     uuid.NullUUID
		motherKind   string
		fatherID     uuid.NullUUID
		fatherKind   string
		householdID  uuid.NullUUID
		privacy      []byte
	)
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.FullName, &email, &p.Phone,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.PostalCode, &p.Country,
		&dob, &age, &anniversary, &yearsMarried, &gender, &p.Generation,
		&motherID, &motherKind, &fatherID, &fatherKind,
		&householdID, &p.PhotoURL, &p.Deceased, &p.IsAdmin, &privacy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Gender = models.Gender(gender)
	if dob.Valid {
		p.DateOfBirth = &dob.Time
	}
	if anniversary.Valid {
		p.WeddingAnniversary = &anniversary.Time
	}
	if age.Valid {
		n := int(age.Int32)
		p.Age = &n
	}
	if yearsMarried.Valid {
		n := int(yearsMarried.Int32)
		p.YearsMarried = &n
	}
	if motherID.Valid {
		p.Mother = &models.ParentLink{ID: id.PersonID(motherID.UUID), Kind: models.ParentKind(motherKind)}
	}
	if fatherID.Valid {
		p.Father = &models.ParentLink{ID: id.PersonID(fatherID.UUID), Kind: models.ParentKind(fatherKind)}
	}
	if householdID.Valid {
		hid := id.HouseholdID(householdID.UUID)
		p.HouseholdID = &hid
	}
	if len(privacy) > 0 {
		if err := json.Unmarshal(privacy, &p.Privacy); err != nil {
			return nil, fmt.Errorf("unmarshal privacy settings: %w", err)
		}
	}
	return &p, nil
}

func personArgs(p *models.Person) ([]any, error) {
	privacy, err := json.Marshal(p.Privacy)
	if err != nil {
		return nil, fmt.Errorf("marshal privacy settings: %w", err)
	}
	motherID, motherKind := parentArgs(p.Mother)
	fatherID, fatherKind := parentArgs(p.Father)
	var householdID uuid.NullUUID
	if p.HouseholdID != nil {
		householdID = uuid.NullUUID{UUID: uuid.UUID(*p.HouseholdID), Valid: true}
	}
	country := p.Country
	if country == "" {
		country = models.DefaultCountry
	}
	return []any{
		p.ID, p.FirstName, p.LastName, p.FullName, nullString(p.Email), p.Phone,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode, country,
		nullTime(p.DateOfBirth), nullInt(p.Age), nullTime(p.WeddingAnniversary), nullInt(p.YearsMarried),
		string(p.Gender), p.Generation,
		motherID, motherKind, fatherID, fatherKind,
		householdID, p.PhotoURL, p.Deceased, p.IsAdmin, privacy, p.CreatedAt, p.UpdatedAt,
	}, nil
}

func parentArgs(link *models.ParentLink) (uuid.NullUUID, string) {
	if link == nil {
		return uuid.NullUUID{}, string(models.KindBiological)
	}
	kind := link.Kind
	if kind == "" {
		kind = models.KindBiological
	}
	return uuid.NullUUID{UUID: uuid.UUID(link.ID), Valid: true}, string(kind)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}

package relationship

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"familydir/internal/directory/models"
	id "familydir/pkg/domain"
	txcontext "familydir/pkg/platform/tx"
)

// PostgresStore persists the parent-child edge table in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed edge store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ParentIDsOf loads the parents of every child in one query.
func (s *PostgresStore) ParentIDsOf(ctx context.Context, childIDs []id.PersonID) (map[id.PersonID][]id.PersonID, error) {
	out := make(map[id.PersonID][]id.PersonID)
	if len(childIDs) == 0 {
		return out, nil
	}
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, `
		SELECT child_id, parent_id FROM relationships
		WHERE child_id = ANY($1::uuid[])
		ORDER BY child_id, parent_id`,
		pq.Array(id.PersonIDStrings(childIDs)))
	if err != nil {
		return nil, fmt.Errorf("load parent ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var child, parent id.PersonID
		if err := rows.Scan(&child, &parent); err != nil {
			return nil, fmt.Errorf("load parent ids: %w", err)
		}
		out[child] = append(out[child], parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load parent ids: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ParentsOf(ctx context.Context, childID id.PersonID) ([]models.ParentChildEdge, error) {
	return s.edges(ctx, "load parents",
		`SELECT parent_id, child_id, relationship_type FROM relationships
		 WHERE child_id = $1 ORDER BY parent_id`, childID)
}

func (s *PostgresStore) ChildrenOf(ctx context.Context, parentID id.PersonID) ([]models.ParentChildEdge, error) {
	return s.edges(ctx, "load children",
		`SELECT parent_id, child_id, relationship_type FROM relationships
		 WHERE parent_id = $1 ORDER BY child_id`, parentID)
}

// LineageFacts combines the edge table with the mother and father columns so
// records that predate the edge table still count.
func (s *PostgresStore) LineageFacts(ctx context.Context, personIDs []id.PersonID) (models.LineageFacts, error) {
	facts := make(models.LineageFacts)
	if len(personIDs) == 0 {
		return facts, nil
	}
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, `
		SELECT p.id,
		       EXISTS (SELECT 1 FROM relationships r WHERE r.child_id = p.id)
		         OR p.mother_id IS NOT NULL OR p.father_id IS NOT NULL,
		       EXISTS (SELECT 1 FROM relationships r WHERE r.parent_id = p.id)
		         OR EXISTS (SELECT 1 FROM persons c WHERE c.mother_id = p.id OR c.father_id = p.id)
		FROM persons p
		WHERE p.id = ANY($1::uuid[])`,
		pq.Array(id.PersonIDStrings(personIDs)))
	if err != nil {
		return nil, fmt.Errorf("load lineage facts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pid  id.PersonID
			fact models.Lineage
		)
		if err := rows.Scan(&pid, &fact.HasParents, &fact.HasChildren); err != nil {
			return nil, fmt.Errorf("load lineage facts: %w", err)
		}
		if fact.HasParents || fact.HasChildren {
			facts[pid] = fact
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load lineage facts: %w", err)
	}
	return facts, nil
}

// Create inserts the edge, overwriting the kind of an existing one.
func (s *PostgresStore) Create(ctx context.Context, edge models.ParentChildEdge) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO relationships (id, parent_id, child_id, relationship_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (parent_id, child_id) DO UPDATE SET relationship_type = EXCLUDED.relationship_type`,
		uuid.New(), edge.ParentID, edge.ChildID, kindArg(edge.Kind))
	if err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

// ReplaceParents makes edges the complete set of parent edges of childID.
// Callers run it inside the transaction that updates the person.
func (s *PostgresStore) ReplaceParents(ctx context.Context, childID id.PersonID, edges []models.ParentChildEdge) error {
	exec := txcontext.Pick(ctx, s.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM relationships WHERE child_id = $1`, childID); err != nil {
		return fmt.Errorf("replace parents: %w", err)
	}
	for _, e := range edges {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO relationships (id, parent_id, child_id, relationship_type)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (parent_id, child_id) DO UPDATE SET relationship_type = EXCLUDED.relationship_type`,
			uuid.New(), e.ParentID, childID, kindArg(e.Kind))
		if err != nil {
			return fmt.Errorf("replace parents: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) DeleteByPerson(ctx context.Context, personID id.PersonID) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
		`DELETE FROM relationships WHERE parent_id = $1 OR child_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("delete relationships: %w", err)
	}
	return nil
}

func (s *PostgresStore) edges(ctx context.Context, op, query string, arg any) ([]models.ParentChildEdge, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []models.ParentChildEdge
	for rows.Next() {
		var (
			e    models.ParentChildEdge
			kind string
		)
		if err := rows.Scan(&e.ParentID, &e.ChildID, &kind); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.Kind = models.ParentKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func kindArg(kind models.ParentKind) string {
	if kind == "" {
		return string(models.KindBiological)
	}
	return string(kind)
}

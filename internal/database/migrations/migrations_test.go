package migrations

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// a second connection would see a different in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestList_Ordered(t *testing.T) {
	all, err := List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0001_criminal_registry", all[0].Version)
	assert.Equal(t, "0002_search_indexes", all[1].Version)
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	applied, err := Apply(ctx, db, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_criminal_registry", "0002_search_indexes"}, applied)

	applied, err = Apply(ctx, db, "sqlite3")
	require.NoError(t, err)
	assert.Empty(t, applied)

	versions, err := Applied(ctx, db)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestApply_SchemaConstraints(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := Apply(ctx, db, "sqlite3")
	require.NoError(t, err)

	insertCriminal := `INSERT INTO criminals (id, name, national_id, job, mother_name, stage_name, impersonation)
		VALUES (?, 'A B', ?, 'Clerk', 'C D', 'Ghost', 'none')`
	_, err = db.ExecContext(ctx, insertCriminal, "c1", "12345678901234")
	require.NoError(t, err)

	// national_id is unique
	_, err = db.ExecContext(ctx, insertCriminal, "c2", "12345678901234")
	assert.Error(t, err)

	// link rows need both parents
	_, err = db.ExecContext(ctx, `INSERT INTO criminals_crimes (criminal_id, crime_id) VALUES ('c1', 'missing')`)
	assert.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO crimes (id, number, year, type_of_accusation, last_behaviors)
		VALUES ('k1', 'CR-1', 2024, 'Theft', 'fled scene')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO criminals_crimes (criminal_id, crime_id) VALUES ('c1', 'k1')`)
	require.NoError(t, err)

	// composite key
	_, err = db.ExecContext(ctx, `INSERT INTO criminals_crimes (criminal_id, crime_id) VALUES ('c1', 'k1')`)
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	src := `-- heading
CREATE TABLE a (id INTEGER);

-- between
CREATE INDEX idx_a ON a (id);
`
	got := Statements(src)
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX idx_a ON a (id)"}, got)
}

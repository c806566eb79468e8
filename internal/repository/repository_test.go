package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/testutil"
)

func ptrString(s string) *string { return &s }
func ptrInt(i int) *int          { return &i }

func newCriminal(nationalID, name, stage string) *models.Criminal {
	return &models.Criminal{
		Name:          name,
		NationalID:    nationalID,
		Job:           "Clerk",
		MotherName:    "C D",
		StageName:     stage,
		Impersonation: "none",
	}
}

func newCrime(number string) *models.Crime {
	return &models.Crime{Number: number, Year: 2024, TypeOfAccusation: "Theft", LastBehaviors: "fled scene"}
}

// seed inserts one criminal linked to one crime.
func seed(t *testing.T, repo Repository) (*models.Criminal, *models.Crime) {
	t.Helper()
	ctx := context.Background()
	criminal := newCriminal("12345678901234", "A B", "Ghost")
	crime := newCrime("CR-1")
	require.NoError(t, repo.InsertCriminal(ctx, criminal))
	require.NoError(t, repo.InsertCrime(ctx, crime))
	require.NoError(t, repo.LinkCriminalToCrime(ctx, criminal.ID, crime.ID))
	return criminal, crime
}

func TestInsert_GeneratesIDsAndTimestamps(t *testing.T) {
	repo := New(testutil.NewDB(t))
	criminal, crime := seed(t, repo)

	assert.Len(t, criminal.ID, 36)
	assert.Len(t, crime.ID, 36)
	assert.False(t, criminal.CreatedAt.IsZero())
	assert.False(t, crime.UpdatedAt.IsZero())
}

func TestInsertCriminal_DuplicateNationalID(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	require.NoError(t, repo.InsertCriminal(ctx, newCriminal("12345678901234", "A B", "Ghost")))

	err := repo.InsertCriminal(ctx, newCriminal("12345678901234", "E F", "Shadow"))
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestFindCriminalByNationalID(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	criminal, _ := seed(t, repo)

	got, err := repo.FindCriminalByNationalID(ctx, "12345678901234")
	require.NoError(t, err)
	assert.Equal(t, criminal.ID, got.ID)

	_, err = repo.FindCriminalByNationalID(ctx, "00000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindCriminalsByFields(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	require.NoError(t, repo.InsertCriminal(ctx, newCriminal("11111111111111", "John Smith", "Ghost")))
	require.NoError(t, repo.InsertCriminal(ctx, newCriminal("22222222222222", "Mary Jones", "Viper")))
	require.NoError(t, repo.InsertCriminal(ctx, newCriminal("33333333111111", "Paul Ghost", "Crow")))

	tests := []struct {
		name   string
		filter CriminalFilter
		want   []string
	}{
		{"name substring", CriminalFilter{Name: "Smi"}, []string{"11111111111111"}},
		{"alias substring", CriminalFilter{StageName: "ipe"}, []string{"22222222222222"}},
		{"national id substring", CriminalFilter{NationalID: "1111"}, []string{"11111111111111", "33333333111111"}},
		{"national id exact", CriminalFilter{NationalID: "1111", ExactNationalID: true}, nil},
		{"or across fields", CriminalFilter{Name: "Mary", StageName: "Crow"}, []string{"22222222222222", "33333333111111"}},
		{"wildcards are literal", CriminalFilter{Name: "%"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindCriminalsByFields(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, c := range got {
				ids = append(ids, c.NationalID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := repo.FindCriminalsByFields(ctx, CriminalFilter{})
	assert.ErrorIs(t, err, ErrEmptyFilter)
}

func TestLinkCriminalToCrime_Constraints(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	criminal, crime := seed(t, repo)

	err := repo.LinkCriminalToCrime(ctx, criminal.ID, crime.ID)
	assert.ErrorIs(t, err, ErrConstraintViolation, "pair already linked")

	err = repo.LinkCriminalToCrime(ctx, "missing", crime.ID)
	assert.ErrorIs(t, err, ErrConstraintViolation)

	err = repo.LinkCriminalToCrime(ctx, criminal.ID, "missing")
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestUnlinkAndCount(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	criminal, crime := seed(t, repo)

	other := newCriminal("99999999999999", "E F", "Shadow")
	require.NoError(t, repo.InsertCriminal(ctx, other))
	require.NoError(t, repo.LinkCriminalToCrime(ctx, other.ID, crime.ID))

	n, err := repo.CountLinksForCrime(ctx, crime.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.UnlinkCriminalFromCrime(ctx, criminal.ID, crime.ID))
	n, err = repo.CountLinksForCrime(ctx, crime.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	err = repo.UnlinkCriminalFromCrime(ctx, criminal.ID, crime.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCrime_RemovesLinks(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	criminal, crime := seed(t, repo)

	require.NoError(t, repo.DeleteCrime(ctx, crime.ID))

	_, err := repo.FindCrimeByID(ctx, crime.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := repo.CountLinksForCrime(ctx, crime.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// criminals are never deleted by crime removal
	_, err = repo.FindCriminalByNationalID(ctx, criminal.NationalID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteCrime(ctx, crime.ID), ErrNotFound)
}

func TestUpdateCrime(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	_, crime := seed(t, repo)

	got, err := repo.UpdateCrime(ctx, crime.ID, models.CrimePatch{
		Year:             ptrInt(2023),
		TypeOfAccusation: ptrString("Robbery"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2023, got.Year)
	assert.Equal(t, "Robbery", got.TypeOfAccusation)
	assert.Equal(t, "CR-1", got.Number, "untouched fields are kept")

	_, err = repo.UpdateCrime(ctx, "missing", models.CrimePatch{Year: ptrInt(2000)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateCrime(ctx, crime.ID, models.CrimePatch{})
	assert.Error(t, err)
}

func TestFindCrimesForCriminalAndPair(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	criminal, crime := seed(t, repo)

	second := newCrime("CR-2")
	require.NoError(t, repo.InsertCrime(ctx, second))
	require.NoError(t, repo.LinkCriminalToCrime(ctx, criminal.ID, second.ID))
	unrelated := newCrime("CR-3")
	require.NoError(t, repo.InsertCrime(ctx, unrelated))

	crimes, err := repo.FindCrimesForCriminal(ctx, criminal.ID)
	require.NoError(t, err)
	assert.Len(t, crimes, 2)

	got, err := repo.FindCrimeForCriminalPair(ctx, criminal.ID, crime.ID)
	require.NoError(t, err)
	assert.Equal(t, "CR-1", got.Number)

	_, err = repo.FindCrimeForCriminalPair(ctx, criminal.ID, unrelated.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	none, err := repo.FindCrimesForCriminal(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.InsertCrime(ctx, newCrime("CR-9")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestStatsAndPing(t *testing.T) {
	ctx := context.Background()
	repo := New(testutil.NewDB(t))
	seed(t, repo)

	require.NoError(t, repo.Ping(ctx))
	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Criminals: 1, Crimes: 1, Links: 1}, stats)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%a!%b!_c!!%", containsPattern("a%b_c!"))
}

// Package repository is the single point of access to persisted criminals,
// crimes and their links. It holds no cross-entity policy: find-or-create and
// the cascade purge live in the services package.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
)

var (
	// ErrNotFound means the requested row or relationship does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation means a uniqueness or foreign-key rule was breached.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrEmptyFilter is returned when a field search has nothing to match on.
	ErrEmptyFilter = errors.New("at least one filter is required")
)

// CriminalFilter selects criminals by substring. Empty fields add no
// condition; supplied fields are OR-ed together.
type CriminalFilter struct {
	Name       string
	NationalID string
	StageName  string
	// ExactNationalID matches NationalID by equality instead of substring.
	ExactNationalID bool
}

// Stats holds row counts per table.
type Stats struct {
	Criminals int64 `json:"criminals"`
	Crimes    int64 `json:"crimes"`
	Links     int64 `json:"links"`
}

// Repository defines the store operations used by the relationship engine.
type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	// Any error returned by fn, or a panic, rolls every write back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	FindCriminalByNationalID(ctx context.Context, nationalID string) (*models.Criminal, error)
	FindCriminalsByFields(ctx context.Context, f CriminalFilter) ([]models.Criminal, error)
	InsertCriminal(ctx context.Context, c *models.Criminal) error

	InsertCrime(ctx context.Context, c *models.Crime) error
	FindCrimeByID(ctx context.Context, id string) (*models.Crime, error)
	UpdateCrime(ctx context.Context, id string, patch models.CrimePatch) (*models.Crime, error)
	// DeleteCrime removes the crime and its link rows as one unit.
	DeleteCrime(ctx context.Context, id string) error

	LinkCriminalToCrime(ctx context.Context, criminalID, crimeID string) error
	UnlinkCriminalFromCrime(ctx context.Context, criminalID, crimeID string) error
	CountLinksForCrime(ctx context.Context, crimeID string) (int64, error)
	FindCrimesForCriminal(ctx context.Context, criminalID string) ([]models.Crime, error)
	FindCrimeForCriminalPair(ctx context.Context, criminalID, crimeID string) (*models.Crime, error)

	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}

type gormRepository struct {
	db *gorm.DB
}

// New injects the *gorm.DB dependency and returns a Repository.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) FindCriminalByNationalID(ctx context.Context, nationalID string) (*models.Criminal, error) {
	var criminal models.Criminal
	err := r.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&criminal).Error
	if err != nil {
		return nil, translate(err)
	}
	return &criminal, nil
}

func (r *gormRepository) FindCriminalsByFields(ctx context.Context, f CriminalFilter) ([]models.Criminal, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Name != "" {
		conds = append(conds, "name LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(f.Name))
	}
	if f.NationalID != "" {
		if f.ExactNationalID {
			conds = append(conds, "national_id = ?")
			args = append(args, f.NationalID)
		} else {
			conds = append(conds, "national_id LIKE ? ESCAPE '!'")
			args = append(args, containsPattern(f.NationalID))
		}
	}
	if f.StageName != "" {
		conds = append(conds, "stage_name LIKE ? ESCAPE '!'")
		args = append(args, containsPattern(f.StageName))
	}
	if len(conds) == 0 {
		return nil, ErrEmptyFilter
	}

	var criminals []models.Criminal
	err := r.db.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Find(&criminals).Error
	if err != nil {
		return nil, err
	}
	return criminals, nil
}

func (r *gormRepository) InsertCriminal(ctx context.Context, c *models.Criminal) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormRepository) InsertCrime(ctx context.Context, c *models.Crime) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormRepository) FindCrimeByID(ctx context.Context, id string) (*models.Crime, error) {
	var crime models.Crime
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&crime).Error; err != nil {
		return nil, translate(err)
	}
	return &crime, nil
}

func (r *gormRepository) UpdateCrime(ctx context.Context, id string, patch models.CrimePatch) (*models.Crime, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, errors.New("update crime: empty patch")
	}
	res := r.db.WithContext(ctx).Model(&models.Crime{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindCrimeByID(ctx, id)
}

func (r *gormRepository) DeleteCrime(ctx context.Context, id string) error {
	return r.Transaction(ctx, func(repo Repository) error {
		tx := repo.(*gormRepository).db.WithContext(ctx)
		if err := tx.Where("crime_id = ?", id).Delete(&models.CriminalCrime{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Crime{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRepository) LinkCriminalToCrime(ctx context.Context, criminalID, crimeID string) error {
	db := r.db.WithContext(ctx)

	// FK enforcement depends on the driver settings; check the parents here.
	var n int64
	if err := db.Model(&models.Criminal{}).Where("id = ?", criminalID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown criminal %s", ErrConstraintViolation, criminalID)
	}
	if err := db.Model(&models.Crime{}).Where("id = ?", crimeID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown crime %s", ErrConstraintViolation, crimeID)
	}

	link := models.CriminalCrime{CriminalID: criminalID, CrimeID: crimeID}
	if err := db.Create(&link).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *gormRepository) UnlinkCriminalFromCrime(ctx context.Context, criminalID, crimeID string) error {
	res := r.db.WithContext(ctx).
		Where("criminal_id = ? AND crime_id = ?", criminalID, crimeID).
		Delete(&models.CriminalCrime{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) CountLinksForCrime(ctx context.Context, crimeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CriminalCrime{}).Where("crime_id = ?", crimeID).Count(&n).Error
	return n, err
}

func (r *gormRepository) FindCrimesForCriminal(ctx context.Context, criminalID string) ([]models.Crime, error) {
	crimes := []models.Crime{}
	err := r.db.WithContext(ctx).
		Select("crimes.*").
		Joins("JOIN criminals_crimes ON criminals_crimes.crime_id = crimes.id").
		Where("criminals_crimes.criminal_id = ?", criminalID).
		Find(&crimes).Error
	if err != nil {
		return nil, err
	}
	return crimes, nil
}

func (r *gormRepository) FindCrimeForCriminalPair(ctx context.Context, criminalID, crimeID string) (*models.Crime, error) {
	var crime models.Crime
	err := r.db.WithContext(ctx).
		Select("crimes.*").
		Joins("JOIN criminals_crimes ON criminals_crimes.crime_id = crimes.id").
		Where("criminals_crimes.criminal_id = ? AND crimes.id = ?", criminalID, crimeID).
		Take(&crime).Error
	if err != nil {
		return nil, translate(err)
	}
	return &crime, nil
}

func (r *gormRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Criminal{}).Count(&s.Criminals).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Crime{}).Count(&s.Crimes).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.CriminalCrime{}).Count(&s.Links).Error; err != nil {
		return s, err
	}
	return s, nil
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm and driver errors onto the repository sentinels.
func translate(err error) error {
	var sqliteErr sqlite3.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return err
	}
}

// containsPattern builds a LIKE pattern matching s anywhere, with '!' as
// the escape character so user input never acts as a wildcard.
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}

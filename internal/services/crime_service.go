package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/metrics"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/repository"
)

// SearchPolicy controls the free-text mode of GetCrimeView.
type SearchPolicy struct {
	// QueryFirstMatchOnly keeps only the first criminal matching a query.
	QueryFirstMatchOnly bool
	// QueryExactNationalID matches the query against the national id by
	// equality instead of substring.
	QueryExactNationalID bool
}

// DefaultSearchPolicy keeps the first match and compares national ids by substring.
func DefaultSearchPolicy() SearchPolicy {
	return SearchPolicy{QueryFirstMatchOnly: true}
}

// UnlinkResult reports what UnlinkCrimeFromCriminal removed.
type UnlinkResult struct {
	CrimeDeleted bool `json:"crimeDeleted"`
}

// CrimeService is the set of operations over criminals, crimes and their links.
// Every operation that writes more than one row runs in a single transaction.
type CrimeService interface {
	// CreateCrimeWithCriminals inserts a crime and links it to every listed
	// criminal, creating the criminals whose national id is new.
	CreateCrimeWithCriminals(ctx context.Context, req models.CreateCrimeRequest) (*models.Crime, error)
	// AddCrimeToExistingCriminal inserts a crime linked to one known criminal.
	AddCrimeToExistingCriminal(ctx context.Context, nationalID string, in models.AddCrimeInput) error
	// GetCrimeView resolves crimes by exact national id or by free-text query.
	GetCrimeView(ctx context.Context, q models.CrimeViewQuery) ([]models.CrimeRecord, error)
	UpdateCrime(ctx context.Context, crimeID string, patch models.CrimePatch) (*models.Crime, error)
	// UnlinkCrimeFromCriminal removes one link and deletes the crime when no
	// other criminal is linked to it.
	UnlinkCrimeFromCriminal(ctx context.Context, nationalID, crimeID string) (*UnlinkResult, error)
	// SearchCriminals returns every matching criminal with all linked crimes.
	SearchCriminals(ctx context.Context, f models.SearchFilter) ([]models.CriminalWithCrimes, error)
	// LookupCriminals returns the minimal projection of matching criminals.
	LookupCriminals(ctx context.Context, f models.SearchFilter) ([]models.CriminalSummary, error)
}

type crimeService struct {
	repo    repository.Repository
	policy  SearchPolicy
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewCrimeService wires the engine to its repository. log and m may be nil.
func NewCrimeService(repo repository.Repository, policy SearchPolicy, log *zap.Logger, m *metrics.Metrics) CrimeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &crimeService{repo: repo, policy: policy, log: log.Named("crimes"), metrics: m}
}

func (s *crimeService) CreateCrimeWithCriminals(ctx context.Context, req models.CreateCrimeRequest) (*models.Crime, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	var (
		crime   *models.Crime
		created int
	)
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		crime = req.Crime.NewCrime()
		if err := tx.InsertCrime(ctx, crime); err != nil {
			return fmt.Errorf("insert crime: %w", err)
		}
		for i, in := range req.Criminals {
			criminal, isNew, err := findOrCreateCriminal(ctx, tx, in)
			if err != nil {
				return fmt.Errorf("criminals[%d]: %w", i, err)
			}
			if isNew {
				created++
			}
			if err := tx.LinkCriminalToCrime(ctx, criminal.ID, crime.ID); err != nil {
				return fmt.Errorf("link criminals[%d]: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConstraintViolation) {
			return nil, conflict("Crime conflicts with existing records", err)
		}
		return nil, err
	}

	s.metrics.IncCriminalsCreated(created)
	s.log.Info("crime created",
		zap.String("crime_id", crime.ID),
		zap.Int("criminals", len(req.Criminals)),
		zap.Int("criminals_created", created),
	)
	return crime, nil
}

// findOrCreateCriminal looks the criminal up by national id and inserts it
// only when absent. Existing records are reused as they are.
func findOrCreateCriminal(ctx context.Context, tx repository.Repository, in models.CriminalInput) (*models.Criminal, bool, error) {
	existing, err := tx.FindCriminalByNationalID(ctx, in.NationalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	criminal := in.NewCriminal()
	if err := tx.InsertCriminal(ctx, criminal); err != nil {
		return nil, false, err
	}
	return criminal, true, nil
}

func (s *crimeService) AddCrimeToExistingCriminal(ctx context.Context, nationalID string, in models.AddCrimeInput) error {
	if nationalID == "" {
		return invalid("nationalId", "is required")
	}
	if err := Validate(in); err != nil {
		return err
	}

	var crimeID string
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		criminal, err := tx.FindCriminalByNationalID(ctx, nationalID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Criminal not found with the provided national ID")
		}
		if err != nil {
			return err
		}

		crime := in.NewCrime()
		if err := tx.InsertCrime(ctx, crime); err != nil {
			return fmt.Errorf("insert crime: %w", err)
		}
		crimeID = crime.ID
		if err := tx.LinkCriminalToCrime(ctx, criminal.ID, crime.ID); err != nil {
			return fmt.Errorf("link criminal: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConstraintViolation) {
			return conflict("Crime conflicts with existing records", err)
		}
		return err
	}

	s.log.Info("crime added to criminal", zap.String("crime_id", crimeID))
	return nil
}

func (s *crimeService) GetCrimeView(ctx context.Context, q models.CrimeViewQuery) ([]models.CrimeRecord, error) {
	switch {
	case q.NationalID != "":
		return s.crimeViewByNationalID(ctx, q.NationalID, q.CrimeID)
	case q.Query != "":
		return s.crimeViewByQuery(ctx, q.Query, q.CrimeID)
	default:
		return nil, invalid("nationalId", "is required when no query is given")
	}
}

func (s *crimeService) crimeViewByNationalID(ctx context.Context, nationalID, crimeID string) ([]models.CrimeRecord, error) {
	criminal, err := s.repo.FindCriminalByNationalID(ctx, nationalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Criminal not found.")
	}
	if err != nil {
		return nil, err
	}

	if crimeID != "" {
		crime, err := s.repo.FindCrimeForCriminalPair(ctx, criminal.ID, crimeID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("No matching crime found for this criminal.")
		}
		if err != nil {
			return nil, err
		}
		return []models.CrimeRecord{{Crime: crime, Criminal: *criminal}}, nil
	}

	crimes, err := s.repo.FindCrimesForCriminal(ctx, criminal.ID)
	if err != nil {
		return nil, err
	}
	records := make([]models.CrimeRecord, 0, len(crimes))
	for i := range crimes {
		records = append(records, models.CrimeRecord{Crime: &crimes[i], Criminal: *criminal})
	}
	return records, nil
}

func (s *crimeService) crimeViewByQuery(ctx context.Context, query, crimeID string) ([]models.CrimeRecord, error) {
	criminals, err := s.repo.FindCriminalsByFields(ctx, repository.CriminalFilter{
		Name:            query,
		NationalID:      query,
		StageName:       query,
		ExactNationalID: s.policy.QueryExactNationalID,
	})
	if err != nil {
		return nil, err
	}
	if len(criminals) == 0 {
		return nil, notFound("No matching criminals found")
	}
	if s.policy.QueryFirstMatchOnly && len(criminals) > 1 {
		s.log.Debug("query matched several criminals, keeping the first",
			zap.String("query", query), zap.Int("matches", len(criminals)))
		criminals = criminals[:1]
	}

	var records []models.CrimeRecord
	for _, criminal := range criminals {
		if crimeID != "" {
			crime, err := s.repo.FindCrimeForCriminalPair(ctx, criminal.ID, crimeID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			records = append(records, models.CrimeRecord{Crime: crime, Criminal: criminal})
			continue
		}

		crimes, err := s.repo.FindCrimesForCriminal(ctx, criminal.ID)
		if err != nil {
			return nil, err
		}
		if len(crimes) == 0 {
			records = append(records, models.CrimeRecord{Crime: nil, Criminal: criminal})
			continue
		}
		for i := range crimes {
			records = append(records, models.CrimeRecord{Crime: &crimes[i], Criminal: criminal})
		}
	}
	if len(records) == 0 {
		return nil, notFound("No matching crime found for this criminal.")
	}
	return records, nil
}

func (s *crimeService) UpdateCrime(ctx context.Context, crimeID string, patch models.CrimePatch) (*models.Crime, error) {
	if crimeID == "" {
		return nil, invalid("id", "is required")
	}
	if patch.Empty() {
		return nil, invalid("crime", "must contain at least one field")
	}
	if err := Validate(patch); err != nil {
		return nil, err
	}

	crime, err := s.repo.UpdateCrime(ctx, crimeID, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Crime not found or not updated")
	}
	if err != nil {
		return nil, err
	}
	return crime, nil
}

func (s *crimeService) UnlinkCrimeFromCriminal(ctx context.Context, nationalID, crimeID string) (*UnlinkResult, error) {
	if nationalID == "" || crimeID == "" {
		var issues []FieldIssue
		if nationalID == "" {
			issues = append(issues, FieldIssue{Field: "nationalId", Message: "is required"})
		}
		if crimeID == "" {
			issues = append(issues, FieldIssue{Field: "crimeId", Message: "is required"})
		}
		return nil, &ValidationError{Issues: issues}
	}

	result := &UnlinkResult{}
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		criminal, err := tx.FindCriminalByNationalID(ctx, nationalID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Criminal not found with the provided national ID")
		}
		if err != nil {
			return err
		}

		if _, err := tx.FindCrimeByID(ctx, crimeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Crime not found with the provided crime ID")
			}
			return err
		}

		if _, err := tx.FindCrimeForCriminalPair(ctx, criminal.ID, crimeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("This criminal is not linked to the specified crime")
			}
			return err
		}

		if err := tx.UnlinkCriminalFromCrime(ctx, criminal.ID, crimeID); err != nil {
			return fmt.Errorf("unlink: %w", err)
		}

		remaining, err := tx.CountLinksForCrime(ctx, crimeID)
		if err != nil {
			return err
		}
		// a crime with no criminal left must not persist
		if remaining == 0 {
			if err := tx.DeleteCrime(ctx, crimeID); err != nil {
				return fmt.Errorf("purge crime: %w", err)
			}
			result.CrimeDeleted = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.CrimeDeleted {
		s.metrics.IncCrimesPurged()
	}
	s.log.Info("crime unlinked from criminal",
		zap.String("crime_id", crimeID),
		zap.Bool("crime_deleted", result.CrimeDeleted),
	)
	return result, nil
}

func (s *crimeService) SearchCriminals(ctx context.Context, f models.SearchFilter) ([]models.CriminalWithCrimes, error) {
	criminals, err := s.matchCriminals(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]models.CriminalWithCrimes, 0, len(criminals))
	for _, criminal := range criminals {
		crimes, err := s.repo.FindCrimesForCriminal(ctx, criminal.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CriminalWithCrimes{Criminal: criminal, Crimes: crimes})
	}
	return out, nil
}

func (s *crimeService) LookupCriminals(ctx context.Context, f models.SearchFilter) ([]models.CriminalSummary, error) {
	criminals, err := s.matchCriminals(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.CriminalSummary, 0, len(criminals))
	for _, c := range criminals {
		out = append(out, c.Summary())
	}
	return out, nil
}

func (s *crimeService) matchCriminals(ctx context.Context, f models.SearchFilter) ([]models.Criminal, error) {
	if f.IsEmpty() {
		return nil, invalid("nationalId|name|stageName", "at least one search parameter is required")
	}
	criminals, err := s.repo.FindCriminalsByFields(ctx, repository.CriminalFilter{
		Name:       f.Name,
		NationalID: f.NationalID,
		StageName:  f.StageName,
	})
	if err != nil {
		return nil, err
	}
	if len(criminals) == 0 {
		return nil, notFound("No matching criminals found")
	}
	return criminals, nil
}

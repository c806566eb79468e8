package models

// JSON bodies sent by the front-end. Validation tags are enforced by
// services.Validate before anything reaches the store.

// CrimeInput holds the crime fields of a create request.
type CrimeInput struct {
	Number           string `json:"number" validate:"required"`
	Year             int    `json:"year" validate:"gte=1900"`
	TypeOfAccusation string `json:"typeOfAccusation" validate:"required"`
	LastBehaviors    string `json:"lastBehaviors" validate:"required"`
}

// NewCrime builds the row to insert for this input.
func (in CrimeInput) NewCrime() *Crime {
	return &Crime{
		Number:           in.Number,
		Year:             in.Year,
		TypeOfAccusation: in.TypeOfAccusation,
		LastBehaviors:    in.LastBehaviors,
	}
}

// CriminalInput holds one criminal entry of a create request.
type CriminalInput struct {
	Name          string  `json:"name" validate:"min=2"`
	NationalID    string  `json:"nationalId" validate:"len=14"`
	Job           string  `json:"job" validate:"min=2"`
	BirthDate     *string `json:"bod"`
	MotherName    string  `json:"motherName" validate:"min=2"`
	StageName     string  `json:"stageName" validate:"min=2"`
	Impersonation string  `json:"impersonation" validate:"min=2"`
	Address       *string `json:"address"`
}

// NewCriminal builds the row to insert for this input.
func (in CriminalInput) NewCriminal() *Criminal {
	return &Criminal{
		Name:          in.Name,
		NationalID:    in.NationalID,
		Job:           in.Job,
		BirthDate:     in.BirthDate,
		MotherName:    in.MotherName,
		StageName:     in.StageName,
		Impersonation: in.Impersonation,
		Address:       in.Address,
	}
}

// CreateCrimeRequest is the body of POST /crimes.
type CreateCrimeRequest struct {
	Crime     CrimeInput      `json:"crime"`
	Criminals []CriminalInput `json:"criminals" validate:"required,min=1,dive"`
}

// AddCrimeInput is the body of POST /criminal. The case number may be omitted.
type AddCrimeInput struct {
	Number           string `json:"number"`
	Year             int    `json:"year" validate:"gte=1900"`
	TypeOfAccusation string `json:"typeOfAccusation" validate:"required"`
	LastBehaviors    string `json:"lastBehaviors" validate:"required"`
}

func (in AddCrimeInput) NewCrime() *Crime {
	return CrimeInput(in).NewCrime()
}

// CrimePatch is the body of PUT /crimes. Nil fields are left untouched.
type CrimePatch struct {
	Number           *string `json:"number,omitempty" validate:"omitnil,min=1"`
	Year             *int    `json:"year,omitempty" validate:"omitnil,gte=1900"`
	TypeOfAccusation *string `json:"typeOfAccusation,omitempty" validate:"omitnil,min=1"`
	LastBehaviors    *string `json:"lastBehaviors,omitempty" validate:"omitnil,min=1"`
}

// Empty reports whether the patch carries no field at all.
func (p CrimePatch) Empty() bool {
	return p.Number == nil && p.Year == nil && p.TypeOfAccusation == nil && p.LastBehaviors == nil
}

// Columns maps the non-nil fields to their column names.
func (p CrimePatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.Number != nil {
		cols["number"] = *p.Number
	}
	if p.Year != nil {
		cols["year"] = *p.Year
	}
	if p.TypeOfAccusation != nil {
		cols["type_of_accusation"] = *p.TypeOfAccusation
	}
	if p.LastBehaviors != nil {
		cols["last_behaviors"] = *p.LastBehaviors
	}
	return cols
}

// CrimeViewQuery carries the query parameters of GET /crimes.
type CrimeViewQuery struct {
	NationalID string
	Query      string
	CrimeID    string
}

// SearchFilter carries the query parameters of GET /criminal and GET /search.
// Empty fields contribute no constraint.
type SearchFilter struct {
	NationalID string
	Name       string
	StageName  string
}

// IsEmpty reports whether no filter was supplied.
func (f SearchFilter) IsEmpty() bool {
	return f.NationalID == "" && f.Name == "" && f.StageName == ""
}

package models

// CrimeRecord pairs a criminal with one of its crimes. Crime is nil when the
// criminal has no linked crime.
type CrimeRecord struct {
	Crime    *Crime   `json:"crime"`
	Criminal Criminal `json:"criminal"`
}

// CriminalWithCrimes is one entry of the full search projection.
type CriminalWithCrimes struct {
	Criminal Criminal `json:"criminal"`
	Crimes   []Crime  `json:"crimes"`
}

// CriminalSummary is the minimal projection: id, name, national id, alias.
type CriminalSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	StageName  string `json:"stageName"`
}

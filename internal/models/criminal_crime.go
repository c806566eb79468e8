package models

// CriminalCrime links a Criminal to a Crime. The pair is the primary key, so
// a given criminal/crime relationship exists at most once.
type CriminalCrime struct {
	CriminalID string `gorm:"column:criminal_id;primaryKey;size:36" json:"criminalId"`
	CrimeID    string `gorm:"column:crime_id;primaryKey;size:36" json:"crimeId"`
}

func (CriminalCrime) TableName() string {
	return "criminals_crimes"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NationalIDLength is the fixed length of a national identifier.
const NationalIDLength = 14

// Criminal is a person record, unique by NationalID.
type Criminal struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	NationalID    string    `gorm:"column:national_id;size:14;not null;uniqueIndex" json:"nationalId"`
	Job           string    `gorm:"column:job;not null" json:"job"`
	BirthDate     *string   `gorm:"column:bod" json:"bod"`
	MotherName    string    `gorm:"column:mother_name;not null" json:"motherName"`
	StageName     string    `gorm:"column:stage_name;not null" json:"stageName"`
	Impersonation string    `gorm:"column:impersonation;not null" json:"impersonation"`
	Address       *string   `gorm:"column:address" json:"address"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Criminal) TableName() string {
	return "criminals"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Criminal) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Summary is the minimal projection returned by the criminal lookup route.
func (c Criminal) Summary() CriminalSummary {
	return CriminalSummary{
		ID:         c.ID,
		Name:       c.Name,
		NationalID: c.NationalID,
		StageName:  c.StageName,
	}
}

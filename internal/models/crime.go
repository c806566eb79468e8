package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Crime is an offense record. At rest it is always linked to at least one
// Criminal through CriminalCrime.
type Crime struct {
	ID               string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Number           string    `gorm:"column:number;not null" json:"number"`
	Year             int       `gorm:"column:year;not null" json:"year"`
	TypeOfAccusation string    `gorm:"column:type_of_accusation;not null" json:"typeOfAccusation"`
	LastBehaviors    string    `gorm:"column:last_behaviors;not null" json:"lastBehaviors"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Crime) TableName() string {
	return "crimes"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Crime) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

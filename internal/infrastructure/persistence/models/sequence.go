package models

import "github.com/google/uuid"

// DocumentSequenceModel holds the last number handed out for one document
// prefix on one day of an organization
type DocumentSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Day       string    `gorm:"type:char(8);primaryKey"`
	LastValue int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Response struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Provider           string         `gorm:"type:varchar(32);not null"`
	Content            string         `gorm:"type:text"`
	Status             string         `gorm:"type:varchar(16);not null;index"`
	Award              *string        `gorm:"type:varchar(64)"`
	WorkStep           string         `gorm:"type:varchar(16)"`
	VerificationStatus string         `gorm:"type:varchar(16);not null;default:none"`
	Verifications      datatypes.JSON `gorm:"type:jsonb"` // []VerificationResult, append-only
	Metadata           datatypes.JSON `gorm:"type:jsonb"` // critique-exchange data
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
}

func (Response) TableName() string {
	return "responses"
}

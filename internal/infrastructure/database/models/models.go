package models

import (
	"time"

	"github.com/lib/pq"
)

type AdoptionRequest struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AnimalID        int64     `json:"animal_id" gorm:"index;not null"`
	FoundationID    int64     `json:"foundation_id" gorm:"index;not null"`
	AdopterUserID   string    `json:"adopter_user_id" gorm:"type:text;index;not null"`
	Status          string    `json:"status" gorm:"type:text;index;not null"`
	Priority        string    `json:"priority" gorm:"type:text"`
	RejectionReason *string   `json:"rejection_reason" gorm:"type:text"`
	AnimalName      string    `json:"animal_name" gorm:"type:text"`
	AnimalSpecies   string    `json:"animal_species" gorm:"type:text"`
	AnimalBreed     string    `json:"animal_breed" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type AdoptionRequestDocument struct {
	ID          string          `json:"id" gorm:"primaryKey;type:text"`
	RequestID   int64           `json:"request_id" gorm:"index;not null"`
	Request     AdoptionRequest `json:"-" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE;"`
	DocType     string          `json:"doc_type" gorm:"type:text;not null"`
	StoragePath string          `json:"storage_path" gorm:"type:text;not null"`
	Notes       *string         `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Message struct {
	ID           string          `json:"id" gorm:"primaryKey;type:text"`
	RequestID    int64           `json:"request_id" gorm:"index;not null"`
	Request      AdoptionRequest `json:"-" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE;"`
	SenderUserID string          `json:"sender_user_id" gorm:"type:text;not null"`
	SenderSide   string          `json:"sender_role" gorm:"type:text;not null"`
	Text         string          `json:"message_text" gorm:"type:text;not null"`
	FileURLs     pq.StringArray  `json:"file_urls" gorm:"type:text[]"`
	CreatedAt    time.Time       `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Membership struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;type:text"`
	FoundationID int64     `json:"foundation_id" gorm:"primaryKey;index"`
	Role         string    `json:"role" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type User struct {
	ID    string  `json:"id" gorm:"primaryKey;type:text"`
	Email *string `json:"email" gorm:"type:text"`
	Name  *string `json:"name" gorm:"type:text"`
}

type AdopterProfile struct {
	UserID      string  `json:"user_id" gorm:"primaryKey;type:text"`
	Email       *string `json:"email" gorm:"type:text"`
	Phone       *string `json:"phone" gorm:"type:text"`
	HousingType *string `json:"housing_type" gorm:"type:text"`
	HasYard     *bool   `json:"has_yard"`
	OtherPets   *string `json:"other_pets" gorm:"type:text"`
}

type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;type:text"`
	UserID      string     `json:"user_id" gorm:"type:text;index;not null"`
	ActorUserID *string    `json:"actor_user_id" gorm:"type:text"`
	Title       string     `json:"title" gorm:"type:text;not null"`
	Body        string     `json:"body" gorm:"type:text"`
	Type        string     `json:"type" gorm:"type:text;index;not null"`
	Data        string     `json:"data" gorm:"type:jsonb"`
	ReadAt      *time.Time `json:"read_at" gorm:"type:timestamp with time zone"`
	CreatedAt   time.Time  `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type EmailQueue struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	UserID    *string   `json:"user_id" gorm:"type:text"`
	ToEmail   string    `json:"to_email" gorm:"type:text;not null"`
	Template  string    `json:"template" gorm:"type:text;not null"`
	Payload   string    `json:"payload" gorm:"type:jsonb"`
	Status    string    `json:"status" gorm:"type:text;not null;default:'pending'"`
	Attempts  int       `json:"attempts" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

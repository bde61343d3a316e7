package domain

import "time"

// Status is the lifecycle state of an adoption request.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInReview      Status = "in_review"
	StatusInfoRequested Status = "info_requested"
	StatusPreapproved   Status = "preapproved"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusCancelled     Status = "cancelled"
	StatusCompleted     Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AdoptionRequest is the aggregate tracking one adopter's interest in one
// animal from one foundation. AnimalID, FoundationID and AdopterUserID are
// immutable after creation; Status only changes through Transitions.
type AdoptionRequest struct {
	ID              int64     `json:"id"`
	AnimalID        int64     `json:"animalId"`
	FoundationID    int64     `json:"foundationId"`
	AdopterUserID   string    `json:"adopterUserId"`
	Status          Status    `json:"status"`
	Priority        Priority  `json:"priority,omitempty"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AnimalSnapshot is denormalized at request creation so the request stays
// displayable even if the animal record changes later.
type AnimalSnapshot struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
}

// AdopterProfile carries the adopter's contact and housing questionnaire
// answers. Everything is nullable until the adopter fills it in.
type AdopterProfile struct {
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	HousingType *string `json:"housingType,omitempty"`
	HasYard     *bool   `json:"hasYard,omitempty"`
	OtherPets   *string `json:"otherPets,omitempty"`
}

// RequestDetail is the read projection combining the aggregate with the
// adopter profile snapshot, the animal snapshot and the attached documents.
type RequestDetail struct {
	Request   AdoptionRequest `json:"request"`
	Animal    AnimalSnapshot  `json:"animal"`
	Adopter   AdopterProfile  `json:"adopter"`
	Documents []Document      `json:"documents"`
}

type DocType string

const (
	DocTypeIdentity        DocType = "identity_document"
	DocTypeHomePhotos      DocType = "home_photos"
	DocTypeVaccinationCard DocType = "vaccination_card"
	DocTypeResponse        DocType = "response"
	DocTypeOther           DocType = "other"
)

// Document is one uploaded artifact owned by an adoption request.
// Documents are append-only and never mutated after creation.
type Document struct {
	ID          string    `json:"id"`
	RequestID   int64     `json:"requestId"`
	Type        DocType   `json:"docType"`
	StoragePath string    `json:"storagePath"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is one entry in the info-request exchange thread. Append-only,
// ordered by creation time.
type Message struct {
	ID           string    `json:"id"`
	RequestID    int64     `json:"requestId"`
	SenderUserID string    `json:"senderUserId"`
	SenderSide   ActorSide `json:"senderRole"`
	Text         string    `json:"messageText"`
	FileURLs     []string  `json:"fileUrls"`
	CreatedAt    time.Time `json:"createdAt"`
}

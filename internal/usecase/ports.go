package usecase

import (
	"context"
	"io"
	"time"

	"github.com/shelterhub/adoptd/internal/domain"
)

// RequestRepository defines storage operations for adoption requests.
// Transition and the two commit methods must apply the status write as a
// compare-and-swap against the observed status, so a concurrent writer
// loses with InvalidStatusError instead of overwriting.
type RequestRepository interface {
	Get(ctx context.Context, id int64) (domain.AdoptionRequest, error)
	GetDetail(ctx context.Context, id int64) (domain.RequestDetail, error)
	Transition(ctx context.Context, id int64, from, to domain.Status, rejectionReason *string) error

	// MarkInfoRequested commits the foundation prompt, the status change and
	// the adopter email-queue row in one transaction.
	MarkInfoRequested(ctx context.Context, id int64, from domain.Status, msg domain.Message, email domain.EmailQueueEntry) error

	// CommitResponse commits the adopter message, its response documents and
	// the info_requested -> in_review transition in one transaction.
	CommitResponse(ctx context.Context, id int64, msg domain.Message, docs []domain.Document) error
}

// AccessRepository serves the authorization projection.
type AccessRepository interface {
	AccessInfo(ctx context.Context, requestID int64) (domain.AccessInfo, error)
}

// MembershipRepository defines lookup of foundation staff memberships.
type MembershipRepository interface {
	ForUser(ctx context.Context, userID string) (domain.Membership, error)
	Members(ctx context.Context, foundationID int64) ([]domain.Membership, error)
}

// MessageRepository defines reads over the info-request thread.
type MessageRepository interface {
	LatestFromSide(ctx context.Context, requestID int64, side domain.ActorSide) (domain.Message, error)
}

// BlobStore defines binary object storage with signed-URL retrieval.
type BlobStore interface {
	Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

// AdopterDirectory resolves a user's account email when the profile
// snapshot carries none.
type AdopterDirectory interface {
	Email(ctx context.Context, userID string) (string, error)
}

// Dispatcher announces committed transitions. Implementations are
// best-effort: they log failures and never return them.
type Dispatcher interface {
	NotifyUser(ctx context.Context, n domain.Notification)
	NotifyFoundation(ctx context.Context, foundationID int64, n domain.Notification)
	EnqueueEmail(ctx context.Context, e domain.EmailQueueEntry)
}

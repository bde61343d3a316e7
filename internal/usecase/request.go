package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shelterhub/adoptd/internal/domain"
)

const signedURLTTL = time.Hour

// RequestUsecase covers status transitions outside the info-request
// subflow, plus the access-checked reads over a single request.
type RequestUsecase struct {
	access    *AccessUsecase
	requests  RequestRepository
	blob      BlobStore
	directory AdopterDirectory
	dispatch  Dispatcher
}

func NewRequestUsecase(
	access *AccessUsecase,
	requests RequestRepository,
	blob BlobStore,
	directory AdopterDirectory,
	dispatch Dispatcher,
) *RequestUsecase {
	return &RequestUsecase{
		access:    access,
		requests:  requests,
		blob:      blob,
		directory: directory,
		dispatch:  dispatch,
	}
}

type UpdateStatusInput struct {
	RequestID       int64
	Target          domain.Status
	RejectionReason *string
}

// UpdateStatus performs a guarded transition and announces it. The status
// write is a compare-and-swap: of two concurrent callers the second gets
// InvalidStatusError. Announcements never fail the transition.
func (uc *RequestUsecase) UpdateStatus(ctx context.Context, principal domain.Principal, input UpdateStatusInput) error {
	grant, err := uc.access.Resolve(ctx, principal, input.RequestID)
	if err != nil {
		return err
	}

	req, err := uc.requests.Get(ctx, input.RequestID)
	if err != nil {
		return err
	}

	// info_requested is owned by the info-request subflow, which also
	// commits the prompt and the adopter email.
	if input.Target == domain.StatusInfoRequested {
		return domain.InvalidTransitionError{From: req.Status, To: input.Target, Side: grant.Side}
	}

	if err := domain.CanTransition(req.Status, input.Target, grant.Side); err != nil {
		return err
	}

	var reason *string
	if input.Target == domain.StatusRejected {
		if input.RejectionReason == nil {
			return domain.ErrRejectionReasonRequired
		}
		trimmed := strings.TrimSpace(*input.RejectionReason)
		if trimmed == "" {
			return domain.ErrRejectionReasonRequired
		}
		reason = &trimmed
	}

	if err := uc.requests.Transition(ctx, req.ID, req.Status, input.Target, reason); err != nil {
		return err
	}

	uc.announce(ctx, principal, req, input.Target, reason)
	return nil
}

// Detail returns the full read projection for a request the principal may
// access.
func (uc *RequestUsecase) Detail(ctx context.Context, principal domain.Principal, requestID int64) (domain.RequestDetail, error) {
	if _, err := uc.access.Resolve(ctx, principal, requestID); err != nil {
		return domain.RequestDetail{}, err
	}
	return uc.requests.GetDetail(ctx, requestID)
}

// DocumentURL issues a signed download URL for a stored document. The path
// must parse back to the same foundation and request the caller was
// granted on, keeping the read path consistent with the upload path.
func (uc *RequestUsecase) DocumentURL(ctx context.Context, principal domain.Principal, requestID int64, path string) (string, error) {
	if _, err := uc.access.Resolve(ctx, principal, requestID); err != nil {
		return "", err
	}

	req, err := uc.requests.Get(ctx, requestID)
	if err != nil {
		return "", err
	}

	fid, rid, err := domain.ParseObjectPath(path)
	if err != nil {
		return "", domain.ForbiddenError{Reason: "document path outside this request"}
	}
	if fid != req.FoundationID || rid != req.ID {
		return "", domain.ForbiddenError{Reason: "document path outside this request"}
	}

	return uc.blob.SignedURL(ctx, path, signedURLTTL)
}

func (uc *RequestUsecase) announce(ctx context.Context, principal domain.Principal, req domain.AdoptionRequest, target domain.Status, reason *string) {
	data := map[string]any{
		"request_id":    req.ID,
		"foundation_id": req.FoundationID,
		"status":        string(target),
	}

	switch target {
	case domain.StatusCancelled:
		uc.dispatch.NotifyFoundation(ctx, req.FoundationID, domain.Notification{
			ActorUserID: &principal.UserID,
			Title:       "Adoption request withdrawn",
			Type:        domain.NotificationTypeStatusUpdate,
			Data:        data,
		})

	case domain.StatusPreapproved, domain.StatusApproved, domain.StatusRejected, domain.StatusCompleted:
		body := ""
		if reason != nil {
			body = *reason
		}
		uc.dispatch.NotifyUser(ctx, domain.Notification{
			UserID:      req.AdopterUserID,
			ActorUserID: &principal.UserID,
			Title:       "Your adoption request was updated",
			Body:        body,
			Type:        domain.NotificationTypeStatusUpdate,
			Data:        data,
		})
		if email, err := uc.directory.Email(ctx, req.AdopterUserID); err == nil && email != "" {
			uc.dispatch.EnqueueEmail(ctx, domain.EmailQueueEntry{
				UserID:   &req.AdopterUserID,
				ToEmail:  email,
				Template: domain.EmailTemplateStatusUpdate,
				Payload:  data,
			})
		}

	case domain.StatusInReview:
		uc.dispatch.NotifyUser(ctx, domain.Notification{
			UserID:      req.AdopterUserID,
			ActorUserID: &principal.UserID,
			Title:       "Your adoption request is being reviewed",
			Type:        domain.NotificationTypeStatusUpdate,
			Data:        data,
		})
	}
}

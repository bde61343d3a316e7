package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shelterhub/adoptd/internal/domain"
)

// InfoRequestUsecase runs the bounded two-party exchange: the foundation
// asks for more information, the adopter answers once with optional files.
type InfoRequestUsecase struct {
	access    *AccessUsecase
	requests  RequestRepository
	messages  MessageRepository
	blob      BlobStore
	directory AdopterDirectory
	dispatch  Dispatcher
	now       func() time.Time
}

func NewInfoRequestUsecase(
	access *AccessUsecase,
	requests RequestRepository,
	messages MessageRepository,
	blob BlobStore,
	directory AdopterDirectory,
	dispatch Dispatcher,
) *InfoRequestUsecase {
	return &InfoRequestUsecase{
		access:    access,
		requests:  requests,
		messages:  messages,
		blob:      blob,
		directory: directory,
		dispatch:  dispatch,
		now:       time.Now,
	}
}

type RequestInfoInput struct {
	RequestID int64
	Subject   string
	Message   string
}

// RequestInfo moves an active request into info_requested. The prompt
// message, the status change and the adopter email-queue row commit in one
// transaction: a request is never left in info_requested without a durable
// adopter-facing channel. The in-app notification is best-effort on top.
func (uc *InfoRequestUsecase) RequestInfo(ctx context.Context, principal domain.Principal, input RequestInfoInput) error {
	grant, err := uc.access.Resolve(ctx, principal, input.RequestID)
	if err != nil {
		return err
	}
	if grant.Side != domain.SideFoundation {
		return domain.ForbiddenError{Reason: "only foundation staff may request information"}
	}

	if strings.TrimSpace(input.Message) == "" {
		return domain.ErrMessageRequired
	}

	detail, err := uc.requests.GetDetail(ctx, input.RequestID)
	if err != nil {
		return err
	}
	req := detail.Request

	if err := domain.CanTransition(req.Status, domain.StatusInfoRequested, domain.SideFoundation); err != nil {
		return err
	}

	email, err := uc.adopterEmail(ctx, detail)
	if err != nil {
		return err
	}

	msg := domain.Message{
		ID:           uuid.NewString(),
		RequestID:    req.ID,
		SenderUserID: principal.UserID,
		SenderSide:   domain.SideFoundation,
		Text:         input.Message,
		CreatedAt:    uc.now(),
	}
	entry := domain.EmailQueueEntry{
		UserID:   &req.AdopterUserID,
		ToEmail:  email,
		Template: domain.EmailTemplateInfoRequest,
		Payload: map[string]any{
			"subject":       input.Subject,
			"message":       input.Message,
			"animal_name":   detail.Animal.Name,
			"animal_id":     req.AnimalID,
			"foundation_id": req.FoundationID,
			"adopter_id":    req.AdopterUserID,
			"request_id":    req.ID,
		},
	}

	if err := uc.requests.MarkInfoRequested(ctx, req.ID, req.Status, msg, entry); err != nil {
		return err
	}

	uc.dispatch.NotifyUser(ctx, domain.Notification{
		UserID:      req.AdopterUserID,
		ActorUserID: &principal.UserID,
		Title:       input.Subject,
		Body:        input.Message,
		Type:        domain.NotificationTypeInfoRequest,
		Data: map[string]any{
			"request_id":    req.ID,
			"foundation_id": req.FoundationID,
			"status":        string(domain.StatusInfoRequested),
		},
	})

	return nil
}

// ResponseFile is one attachment of an info-request response.
type ResponseFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type RespondInput struct {
	RequestID int64
	Message   string
	Files     []ResponseFile
}

// Respond records the adopter's answer and moves the request back to
// in_review for re-evaluation. Every attachment passes the file gate before
// any upload starts; blobs already uploaded are not rolled back if a later
// step fails.
func (uc *InfoRequestUsecase) Respond(ctx context.Context, principal domain.Principal, input RespondInput) error {
	grant, err := uc.access.Resolve(ctx, principal, input.RequestID)
	if err != nil {
		return err
	}
	if grant.Side != domain.SideAdopter {
		return domain.ForbiddenError{Reason: "only the requesting adopter may respond"}
	}

	req, err := uc.requests.Get(ctx, input.RequestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusInfoRequested {
		return domain.InvalidStatusError{Current: req.Status}
	}

	text := strings.TrimSpace(input.Message)
	if text == "" {
		return domain.ErrMessageRequired
	}

	for _, f := range input.Files {
		if err := domain.ValidateUpload(f.Name, f.Size, f.ContentType); err != nil {
			return err
		}
	}

	now := uc.now()
	fileURLs := make([]string, 0, len(input.Files))
	docs := make([]domain.Document, 0, len(input.Files))
	for _, f := range input.Files {
		path := domain.ObjectPath(req.FoundationID, req.ID, domain.DocTypeResponse, f.Name, now)
		stored, err := uc.blob.Upload(ctx, path, f.Body, f.Size, f.ContentType)
		if err != nil {
			return err
		}
		fileURLs = append(fileURLs, stored)
		docs = append(docs, domain.Document{
			ID:          uuid.NewString(),
			RequestID:   req.ID,
			Type:        domain.DocTypeResponse,
			StoragePath: stored,
			CreatedAt:   now,
		})
	}

	msg := domain.Message{
		ID:           uuid.NewString(),
		RequestID:    req.ID,
		SenderUserID: principal.UserID,
		SenderSide:   domain.SideAdopter,
		Text:         text,
		FileURLs:     fileURLs,
		CreatedAt:    now,
	}

	if err := uc.requests.CommitResponse(ctx, req.ID, msg, docs); err != nil {
		return err
	}

	uc.dispatch.NotifyFoundation(ctx, req.FoundationID, domain.Notification{
		ActorUserID: &principal.UserID,
		Title:       "Adoption request updated",
		Body:        text,
		Type:        domain.NotificationTypeInfoResponse,
		Data: map[string]any{
			"request_id":    req.ID,
			"foundation_id": req.FoundationID,
			"status":        string(domain.StatusInReview),
		},
	})

	return nil
}

// LatestPrompt returns the newest foundation-side message of the thread to
// the requesting adopter. It only answers while the request sits in
// info_requested, so adopters never see stale prompts.
func (uc *InfoRequestUsecase) LatestPrompt(ctx context.Context, principal domain.Principal, requestID int64) (domain.Message, error) {
	grant, err := uc.access.Resolve(ctx, principal, requestID)
	if err != nil {
		return domain.Message{}, err
	}
	if grant.Side != domain.SideAdopter {
		return domain.Message{}, domain.ForbiddenError{Reason: "only the requesting adopter may read the prompt"}
	}

	req, err := uc.requests.Get(ctx, requestID)
	if err != nil {
		return domain.Message{}, err
	}
	if req.Status != domain.StatusInfoRequested {
		return domain.Message{}, domain.InvalidStatusError{Current: req.Status}
	}

	return uc.messages.LatestFromSide(ctx, requestID, domain.SideFoundation)
}

func (uc *InfoRequestUsecase) adopterEmail(ctx context.Context, detail domain.RequestDetail) (string, error) {
	if detail.Adopter.Email != nil && *detail.Adopter.Email != "" {
		return *detail.Adopter.Email, nil
	}
	email, err := uc.directory.Email(ctx, detail.Request.AdopterUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.AdopterEmailNotFoundError{RequestID: detail.Request.ID}
		}
		return "", err
	}
	if email == "" {
		return "", domain.AdopterEmailNotFoundError{RequestID: detail.Request.ID}
	}
	return email, nil
}

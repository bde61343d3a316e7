package usecase

import (
	"context"
	"io"
	"time"

	"github.com/shelterhub/adoptd/internal/domain"
)

type mockAccessRepo struct {
	infos map[int64]domain.AccessInfo
}

func (m *mockAccessRepo) AccessInfo(ctx context.Context, requestID int64) (domain.AccessInfo, error) {
	info, ok := m.infos[requestID]
	if !ok {
		return domain.AccessInfo{}, domain.NotFoundError{Resource: "adoption request"}
	}
	return info, nil
}

type mockMembershipRepo struct {
	byUser  map[string]domain.Membership
	members map[int64][]domain.Membership
}

func (m *mockMembershipRepo) ForUser(ctx context.Context, userID string) (domain.Membership, error) {
	ms, ok := m.byUser[userID]
	if !ok {
		return domain.Membership{}, domain.NotFoundError{Resource: "membership"}
	}
	return ms, nil
}

func (m *mockMembershipRepo) Members(ctx context.Context, foundationID int64) ([]domain.Membership, error) {
	return m.members[foundationID], nil
}

type transitionCall struct {
	from, to domain.Status
	reason   *string
}

type mockRequestRepo struct {
	reqs    map[int64]domain.AdoptionRequest
	details map[int64]domain.RequestDetail

	transitions []transitionCall
	infoMsg     *domain.Message
	infoEmail   *domain.EmailQueueEntry
	response    *domain.Message
	respDocs    []domain.Document
}

func (m *mockRequestRepo) Get(ctx context.Context, id int64) (domain.AdoptionRequest, error) {
	req, ok := m.reqs[id]
	if !ok {
		return domain.AdoptionRequest{}, domain.NotFoundError{Resource: "adoption request"}
	}
	return req, nil
}

func (m *mockRequestRepo) GetDetail(ctx context.Context, id int64) (domain.RequestDetail, error) {
	req, ok := m.reqs[id]
	if !ok {
		return domain.RequestDetail{}, domain.NotFoundError{Resource: "adoption request"}
	}
	detail := m.details[id]
	detail.Request = req
	return detail, nil
}

func (m *mockRequestRepo) cas(id int64, from, to domain.Status, reason *string) error {
	req, ok := m.reqs[id]
	if !ok {
		return domain.NotFoundError{Resource: "adoption request"}
	}
	if req.Status != from {
		return domain.InvalidStatusError{Current: req.Status}
	}
	req.Status = to
	if reason != nil {
		req.RejectionReason = reason
	}
	m.reqs[id] = req
	return nil
}

func (m *mockRequestRepo) Transition(ctx context.Context, id int64, from, to domain.Status, reason *string) error {
	if err := m.cas(id, from, to, reason); err != nil {
		return err
	}
	m.transitions = append(m.transitions, transitionCall{from: from, to: to, reason: reason})
	return nil
}

func (m *mockRequestRepo) MarkInfoRequested(ctx context.Context, id int64, from domain.Status, msg domain.Message, email domain.EmailQueueEntry) error {
	if err := m.cas(id, from, domain.StatusInfoRequested, nil); err != nil {
		return err
	}
	m.infoMsg = &msg
	m.infoEmail = &email
	return nil
}

func (m *mockRequestRepo) CommitResponse(ctx context.Context, id int64, msg domain.Message, docs []domain.Document) error {
	if err := m.cas(id, domain.StatusInfoRequested, domain.StatusInReview, nil); err != nil {
		return err
	}
	m.response = &msg
	m.respDocs = docs
	return nil
}

type mockMessageRepo struct {
	latest map[domain.ActorSide]domain.Message
}

func (m *mockMessageRepo) LatestFromSide(ctx context.Context, requestID int64, side domain.ActorSide) (domain.Message, error) {
	msg, ok := m.latest[side]
	if !ok {
		return domain.Message{}, domain.NotFoundError{Resource: "message"}
	}
	return msg, nil
}

type mockBlob struct {
	uploads []string
	signed  []string
	fail    error
}

func (m *mockBlob) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	m.uploads = append(m.uploads, path)
	return path, nil
}

func (m *mockBlob) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	m.signed = append(m.signed, path)
	return "https://blob.example/" + path + "?signed", nil
}

type mockDirectory struct {
	emails map[string]string
}

func (m *mockDirectory) Email(ctx context.Context, userID string) (string, error) {
	email, ok := m.emails[userID]
	if !ok {
		return "", domain.NotFoundError{Resource: "user"}
	}
	return email, nil
}

type foundationNotify struct {
	foundationID int64
	notification domain.Notification
}

type mockDispatcher struct {
	user       []domain.Notification
	foundation []foundationNotify
	emails     []domain.EmailQueueEntry
}

func (m *mockDispatcher) NotifyUser(ctx context.Context, n domain.Notification) {
	m.user = append(m.user, n)
}

func (m *mockDispatcher) NotifyFoundation(ctx context.Context, foundationID int64, n domain.Notification) {
	m.foundation = append(m.foundation, foundationNotify{foundationID: foundationID, notification: n})
}

func (m *mockDispatcher) EnqueueEmail(ctx context.Context, e domain.EmailQueueEntry) {
	m.emails = append(m.emails, e)
}

// fixture wires one request (id 1, foundation 7, adopter "user-1") through
// fresh mocks.
type fixture struct {
	access     *mockAccessRepo
	members    *mockMembershipRepo
	requests   *mockRequestRepo
	messages   *mockMessageRepo
	blob       *mockBlob
	directory  *mockDirectory
	dispatcher *mockDispatcher
}

func newFixture(status domain.Status) *fixture {
	email := "adopter@example.com"
	return &fixture{
		access: &mockAccessRepo{infos: map[int64]domain.AccessInfo{
			1: {RequestID: 1, FoundationID: 7, AdopterUserID: "user-1"},
		}},
		members: &mockMembershipRepo{
			byUser: map[string]domain.Membership{
				"staff-1": {UserID: "staff-1", FoundationID: 7, Role: domain.MemberRoleOwner},
				"staff-2": {UserID: "staff-2", FoundationID: 7, Role: domain.MemberRoleViewer},
				"staff-9": {UserID: "staff-9", FoundationID: 9, Role: domain.MemberRoleOwner},
			},
			members: map[int64][]domain.Membership{
				7: {
					{UserID: "staff-1", FoundationID: 7, Role: domain.MemberRoleOwner},
					{UserID: "staff-2", FoundationID: 7, Role: domain.MemberRoleViewer},
				},
			},
		},
		requests: &mockRequestRepo{
			reqs: map[int64]domain.AdoptionRequest{
				1: {ID: 1, AnimalID: 3, FoundationID: 7, AdopterUserID: "user-1", Status: status},
			},
			details: map[int64]domain.RequestDetail{
				1: {
					Animal:  domain.AnimalSnapshot{Name: "Luna", Species: "dog"},
					Adopter: domain.AdopterProfile{Email: &email},
				},
			},
		},
		messages:   &mockMessageRepo{latest: map[domain.ActorSide]domain.Message{}},
		blob:       &mockBlob{},
		directory:  &mockDirectory{emails: map[string]string{}},
		dispatcher: &mockDispatcher{},
	}
}

func (f *fixture) accessUC() *AccessUsecase {
	return NewAccessUsecase(f.access, f.members)
}

func (f *fixture) infoUC() *InfoRequestUsecase {
	return NewInfoRequestUsecase(f.accessUC(), f.requests, f.messages, f.blob, f.directory, f.dispatcher)
}

func (f *fixture) requestUC() *RequestUsecase {
	return NewRequestUsecase(f.accessUC(), f.requests, f.blob, f.directory, f.dispatcher)
}

var (
	adopter    = domain.Principal{UserID: "user-1", Role: domain.RoleExternal}
	stranger   = domain.Principal{UserID: "user-2", Role: domain.RoleExternal}
	owner      = domain.Principal{UserID: "staff-1", Role: domain.RoleFoundationUser}
	viewer     = domain.Principal{UserID: "staff-2", Role: domain.RoleFoundationUser}
	otherStaff = domain.Principal{UserID: "staff-9", Role: domain.RoleFoundationUser}
)

package usecase

import (
	"context"
	"errors"

	"github.com/shelterhub/adoptd/internal/domain"
)

// AccessUsecase maps a principal and a target request to a grant. Every
// mutating use case resolves access here before touching anything else.
type AccessUsecase struct {
	access      AccessRepository
	memberships MembershipRepository
}

func NewAccessUsecase(access AccessRepository, memberships MembershipRepository) *AccessUsecase {
	return &AccessUsecase{access: access, memberships: memberships}
}

func (uc *AccessUsecase) Resolve(ctx context.Context, principal domain.Principal, requestID int64) (domain.Grant, error) {
	if principal.IsZero() {
		return domain.Grant{}, domain.ErrUnauthenticated
	}

	info, err := uc.access.AccessInfo(ctx, requestID)
	if err != nil {
		return domain.Grant{}, err
	}

	switch principal.Role {
	case domain.RoleExternal:
		if info.AdopterUserID != principal.UserID {
			return domain.Grant{}, domain.ForbiddenError{Reason: "not the requesting adopter"}
		}
		return domain.Grant{Side: domain.SideAdopter}, nil

	case domain.RoleFoundationUser, domain.RoleAdmin:
		m, err := uc.memberships.ForUser(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Grant{}, domain.ForbiddenError{Reason: "no foundation membership"}
			}
			return domain.Grant{}, err
		}
		if !m.CanWrite() {
			return domain.Grant{}, domain.ForbiddenError{Reason: "membership role grants no write access"}
		}
		if m.FoundationID != info.FoundationID {
			return domain.Grant{}, domain.ForbiddenError{Reason: "request belongs to another foundation"}
		}
		return domain.Grant{Side: domain.SideFoundation, FoundationID: m.FoundationID}, nil

	default:
		return domain.Grant{}, domain.ForbiddenError{Reason: "unknown role"}
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/shelterhub/adoptd/internal/domain"
)

var tracer = otel.Tracer("service")

// AuthService validates session tokens and produces the principal that is
// passed explicitly into every engine operation.
type AuthService struct {
	secret   []byte
	audience string
}

func NewAuthService(secret string, audience string) *AuthService {
	return &AuthService{secret: []byte(secret), audience: audience}
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) AuthToken(ctx context.Context, token string) (domain.Principal, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "token validation failed"))
		return domain.Principal{}, err
	}
	if !parsed.Valid {
		err := fmt.Errorf("invalid token")
		span.RecordError(err)
		return domain.Principal{}, err
	}

	if s.audience != "" {
		ok := false
		for _, aud := range claims.Audience {
			if aud == s.audience {
				ok = true
				break
			}
		}
		if !ok {
			err := fmt.Errorf("token audience mismatch: expected %s", s.audience)
			span.RecordError(err)
			return domain.Principal{}, err
		}
	}

	if claims.Subject == "" {
		err := fmt.Errorf("token carries no subject")
		span.RecordError(err)
		return domain.Principal{}, err
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleAdmin, domain.RoleFoundationUser, domain.RoleExternal:
	default:
		err := fmt.Errorf("unknown role %q", claims.Role)
		span.RecordError(err)
		return domain.Principal{}, err
	}

	return domain.Principal{UserID: claims.Subject, Role: role}, nil
}

package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/service"
)

var tracer = otel.Tracer("auth")

// PrincipalContextKey is where IdentifyPrincipal stores the resolved
// principal on the echo context.
const PrincipalContextKey = "adoptd-principal"

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// IdentifyPrincipal resolves the bearer token into a Principal when one is
// present. It never rejects: operations receive the principal explicitly
// and report Unauthenticated themselves when they need one.
func (s *AuthMiddleware) IdentifyPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyPrincipal")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			{
				authType, token := split[0], split[1]
				if authType != "Bearer" {
					span.RecordError(fmt.Errorf("only Bearer is acceptable"))
					goto skipCheckAuthorization
				}

				principal, err := s.auth.AuthToken(ctx, token)
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyPrincipal: token rejected"))
					goto skipCheckAuthorization
				}

				c.Set(PrincipalContextKey, principal)
				span.SetAttributes(attribute.String("PrincipalId", principal.UserID))
			}
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// PrincipalFrom extracts the principal stored by IdentifyPrincipal. The
// zero principal means no session.
func PrincipalFrom(c echo.Context) domain.Principal {
	if p, ok := c.Get(PrincipalContextKey).(domain.Principal); ok {
		return p
	}
	return domain.Principal{}
}

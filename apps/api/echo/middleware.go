package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core/user"
)

// onboardingRequiredMiddleware blocks access to the app's data routes until
// the user has completed the onboarding wizard.
func onboardingRequiredMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.OnboardingCompleted {
				return next(ctx)
			}

			// the claims may predate onboarding completion; re-check the user
			usr, err := getContextUser(ctx, svc, claims)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.OnboardingCompleted {
				return next(ctx)
			}
			return errOnboardingRequired
		}
	}
}

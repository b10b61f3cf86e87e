package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// RequireEmailVerified blocks users whose email address is not verified.
// The flag is read from the database so a verification takes effect without
// a new token. Admins are exempt.
func RequireEmailVerified(userRepo port.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if domain.UserRole(GetRole(c)) == domain.RoleAdmin {
			c.Next()
			return
		}

		userID, err := GetUserID(c)
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).
				Msg("middleware.RequireEmailVerified: user lookup failed")
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not found")
			return
		}
		if !user.EmailVerified {
			abort(c, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "please verify your email before performing this action")
			return
		}
		c.Next()
	}
}

package server

import (
	"github.com/gin-gonic/gin"

	obscontext "github.com/smallbiznis/faktur/internal/observability/context"
	"github.com/smallbiznis/faktur/internal/usercontext"
)

const contextUserIDKey = "user_id"

// WebAuthRequired resolves the session cookie into an authenticated
// user and threads the user ID through the request context.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.accountSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		ctx := usercontext.WithUserID(c.Request.Context(), user.ID)
		ctx = obscontext.WithUserID(ctx, user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, user.ID.String())
		c.Next()
	}
}

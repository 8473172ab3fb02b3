package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AbdullahAsendar/chimney-sub000/internal/core/apperror"
	appctx "github.com/AbdullahAsendar/chimney-sub000/internal/core/context"
	"github.com/AbdullahAsendar/chimney-sub000/internal/session"
)

// Operator middleware resolves the operator account from the session
// provider and attaches it to the request context for logging and auditing.
// The session state itself is read-only here.
func Operator(sess session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := sess.AccountID(c.Request.Context())
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("session unavailable").WithCause(err))
			c.Abort()
			return
		}

		ctx := appctx.WithOperator(c.Request.Context(), &appctx.Operator{AccountID: accountID})
		c.Request = c.Request.WithContext(ctx)
		c.Set("account_id", accountID)

		c.Next()
	}
}

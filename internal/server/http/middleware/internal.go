package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/ntroshin/orderflow/internal/pkg/auth"
)

const (
	// ApproverIDContextKey is a gin context key for the messaging identity of
	// the approver acting through the internal channel.
	ApproverIDContextKey = "approverID"

	internalTokenHeader = "X-Internal-Token"
	approverIDHeader    = "X-Approver-Id"
)

// InternalOnly admits only the trusted messaging gateway, identified by a
// pre-shared credential, and requires it to declare on whose behalf it acts.
func InternalOnly(credential pkgAuth.CredentialVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(internalTokenHeader)
		if token == "" || !credential.Verify(token) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		approverID, err := strconv.ParseInt(c.GetHeader(approverIDHeader), 10, 64)
		if err != nil || approverID <= 0 {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(ApproverIDContextKey, approverID)
		c.Next()
	}
}

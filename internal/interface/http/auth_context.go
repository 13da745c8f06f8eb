package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/usergate/internal/domain/auth"
)

const (
	principalKey = "auth_principal"
	requestIDKey = "request_id"
)

func setPrincipal(c *gin.Context, principal auth.Principal) {
	c.Set(principalKey, principal)
}

func getPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}

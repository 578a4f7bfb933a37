package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/faqbot/internal/domain/admin"
)

const authClaimsKey = "admin_claims"

func setClaims(c *gin.Context, claims admin.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (admin.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return admin.Claims{}, false
	}
	claims, ok := value.(admin.Claims)
	return claims, ok
}

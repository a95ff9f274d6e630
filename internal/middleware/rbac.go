package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/response"
)

// RequirePermission checks that the operator JWT contains the required permission code.
func RequirePermission(permission model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.HasPermission(string(permission)) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RequireSchoolScope checks that the operator may act within the school named by the
// route parameter param.
func RequireSchoolScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !claims.CanAccessSchool(c.Param(param)) {
			response.AbortFail(c, http.StatusForbidden, response.ErrSchoolAccessDenied)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type tokenValidatorStub map[string]*models.JWTClaims

func (s tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = tokenValidatorStub{
	"admin":   {UserID: "admin-1", Role: models.RoleAdmin},
	"teacher": {UserID: "teacher-1", Role: models.RoleTeacher},
	"student": {UserID: "stu-1", Role: models.RoleStudent},
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWT(testTokens)}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/students/:id", chain...)
	return r
}

func serve(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/stu-1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/stu-1", "Basic admin").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/stu-1", "Bearer nope").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/students/stu-1", "bearer admin").Code)
}

func TestRBACAllowsRolesAndSelf(t *testing.T) {
	r := newAuthRouter(RBAC(Access{Roles: []models.UserRole{models.RoleAdmin, models.RoleTeacher}, SelfParam: "id"}))

	assert.Equal(t, http.StatusNoContent, serve(r, "/students/stu-9", "Bearer teacher").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/students/stu-1", "Bearer student").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/students/stu-9", "Bearer student").Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, "/admin", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAttachesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen *models.JWTClaims
	r.GET("/open", OptionalJWT(testTokens), func(c *gin.Context) {
		if value, ok := c.Get(ContextUserKey); ok {
			seen = value.(*models.JWTClaims)
		}
		c.Status(http.StatusNoContent)
	})

	require.Equal(t, http.StatusNoContent, serve(r, "/open", "Bearer nope").Code)
	assert.Nil(t, seen)
	require.Equal(t, http.StatusNoContent, serve(r, "/open", "Bearer teacher").Code)
	require.NotNil(t, seen)
	assert.Equal(t, "teacher-1", seen.UserID)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideconnect/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	Configure("test-secret", time.Hour)
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken(id, models.RoleStaff)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_Rejects(t *testing.T) {
	sign := func(method jwt.SigningMethod, key interface{}, claims Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{
			name:  "expired",
			token: sign(jwt.SigningMethodHS256, secret, Claims{UserID: uuid.NewString(), Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}),
		},
		{
			name:  "wrong secret",
			token: sign(jwt.SigningMethodHS256, []byte("other"), Claims{UserID: uuid.NewString(), Role: models.RoleAdmin, RegisteredClaims: valid}),
		},
		{
			name:  "wrong algorithm",
			token: sign(jwt.SigningMethodHS512, secret, Claims{UserID: uuid.NewString(), Role: models.RoleAdmin, RegisteredClaims: valid}),
		},
		{
			name:  "subject is not a uuid",
			token: sign(jwt.SigningMethodHS256, secret, Claims{UserID: "42", Role: models.RoleAdmin, RegisteredClaims: valid}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token)
			require.Error(t, err)
		})
	}
}

func TestRequireAuthWithRole(t *testing.T) {
	var reached bool
	r := gin.New()
	r.GET("/admin/ping", RequireAuthWithRole(models.RoleAdmin), func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c).String(), "role": CurrentRole(c)})
	})

	bearer := func(role models.Role) string {
		token, err := GenerateToken(uuid.New(), role)
		require.NoError(t, err)
		return "Bearer " + token
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantReach  bool
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized, wantBody: "Missing or invalid Authorization header"},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "Invalid or expired token"},
		{name: "student", header: bearer(models.RoleStudent), wantStatus: http.StatusForbidden, wantBody: UnauthorizedMessage},
		{name: "staff", header: bearer(models.RoleStaff), wantStatus: http.StatusForbidden, wantBody: UnauthorizedMessage},
		{name: "admin", header: bearer(models.RoleAdmin), wantStatus: http.StatusOK, wantBody: `"role":"admin"`, wantReach: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.Equal(t, tt.wantReach, reached)
		})
	}
}

func TestCurrentUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, CurrentUserID(c))
	assert.Equal(t, models.Role(""), CurrentRole(c))
}

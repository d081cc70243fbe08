// internal/utils/utils_test.go
package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "janedoe", "customer", 30)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "janedoe", claims.Username)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "shop-backend", claims.Issuer)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	SetJWTSecret("first-secret")
	token, err := GenerateJWT(uuid.New(), "janedoe", "customer", 30)
	require.NoError(t, err)

	SetJWTSecret("second-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTExpiredRejected(t *testing.T) {
	SetJWTSecret("unit-test-secret")
	token, err := GenerateJWT(uuid.New(), "janedoe", "customer", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 60)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ceramic-mug", Slugify("Ceramic Mug"))
	assert.Equal(t, "caf-au-lait", Slugify("Café au Lait"))
	assert.Equal(t, "usb-c-cable-2m", Slugify("  USB-C Cable (2m)!  "))
	assert.Equal(t, "", Slugify("***"))
}

func TestGenerateOrderNumber(t *testing.T) {
	number, err := GenerateOrderNumber()
	require.NoError(t, err)

	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Len(t, parts[1], 8, "date segment")
	assert.Len(t, parts[2], 8, "random segment")
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/products?page=0&limit=9999&order=sideways", nil)

	params := GetPaginationParams(c)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)
	assert.Equal(t, "created_at", params.Sort)
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]string{"a", "b"}, 45, PaginationParams{Page: 2, Limit: 20})

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(45), result.Total)
	assert.Equal(t, 3, result.TotalPages)
}

func TestValidateStructStrongPassword(t *testing.T) {
	type form struct {
		Password string `validate:"required,strong_password"`
	}

	assert.NoError(t, ValidateStruct(&form{Password: "GoodPass1"}))
	assert.Error(t, ValidateStruct(&form{Password: "weak"}))
	assert.Error(t, ValidateStruct(&form{Password: "nouppercase1"}))
	assert.Error(t, ValidateStruct(&form{Password: "NoNumbersHere"}))
}

func TestValidateStructUsername(t *testing.T) {
	type form struct {
		Username string `validate:"required,username"`
	}

	assert.NoError(t, ValidateStruct(&form{Username: "jane_doe42"}))
	assert.Error(t, ValidateStruct(&form{Username: "ab"}))
	assert.Error(t, ValidateStruct(&form{Username: "has space"}))
}

package services_test

import (
	"testing"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"
	"github.com/Maheshwickramage/S3learnUID/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthentication(t *testing.T) {
	_, err := services.NewAuthentication("")
	assert.Error(t, err)

	authentication, err := services.NewAuthentication("secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.CreatorFromAuth{ID: 3, Username: "carol"})
	require.NoError(t, err)

	creator, err := authentication.Validate(token)
	require.NoError(t, err)
	assert.EqualValues(t, 3, creator.ID)
	assert.Equal(t, "carol", creator.Username)
	assert.Equal(t, models.ROLE_CREATOR, creator.Role)

	other, err := services.NewAuthentication("other")
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.Error(t, err)

	_, err = authentication.Validate("garbage")
	assert.Error(t, err)
}

func TestAuthenticationRejectsBadClaims(t *testing.T) {
	authentication, err := services.NewAuthentication("secret")
	require.NoError(t, err)

	noSubject, err := authentication.CreateToken(&models.CreatorFromAuth{ID: 0, Username: "nobody"})
	require.NoError(t, err)
	_, err = authentication.Validate(noSubject)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &services.CustomClaims{
		ID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = authentication.Validate(signed)
	assert.Error(t, err)

	admin, err := authentication.CreateToken(&models.CreatorFromAuth{ID: 9, Username: "root", Role: models.ROLE_ADMIN})
	require.NoError(t, err)
	creator, err := authentication.Validate(admin)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_ADMIN, creator.Role)
}

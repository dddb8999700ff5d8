package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/autotaller-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "t1", "bodeguero", "test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "t1", claims.CompanyID)
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "t1", "admin", "test", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "t1", "admin", "test", 60)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u1", "t1", "admin", "test", 60)
	assert.Error(t, err)
}

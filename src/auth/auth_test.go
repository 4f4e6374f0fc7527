package auth

import (
	"testing"

	"git.mbbs.network/mbbs/mbbs/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hashed := HashPassword("hunter2")

	parsed, err := ParsePasswordString(hashed.String())
	require.NoError(t, err)
	assert.Equal(t, hashed, parsed)

	ok, err := CheckPassword("hunter2", parsed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("hunter3", parsed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParsePasswordString(t *testing.T) {
	_, err := ParsePasswordString("garbage")
	assert.Error(t, err)

	_, err = CheckPassword("x", HashedPassword{Algorithm: "md5"})
	assert.Error(t, err)
}

func TestResourceToken(t *testing.T) {
	assert.Equal(t, "", ResourceToken(nil))
	assert.Equal(t, "", ResourceToken(&models.User{}))
	assert.Equal(t, "abc", ResourceToken(&models.User{Token: "abc"}))
	assert.Equal(t, "12345678", ResourceToken(&models.User{Token: "1234567890abcdef"}))

	token := NewToken()
	assert.Len(t, token, 32)
}

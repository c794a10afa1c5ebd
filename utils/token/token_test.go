package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	signed, err := GenerateToken(userID, "ada@example.com", "ada", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(signed, secret)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "ada", claims.Username)
}

func TestValidateTokenRejects(t *testing.T) {
	signed, err := GenerateToken(uuid.New(), "a@b.c", "abc", secret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(signed, []byte("other-secret"))
	assert.Error(t, err)

	expired, err := GenerateToken(uuid.New(), "a@b.c", "abc", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, secret)
	assert.Error(t, err)

	_, err = ValidateToken("not-a-jwt", secret)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name    string
		url     string
		header  string
		want    string
		wantErr error
	}{
		{"bearer header", "/", "Bearer abc", "abc", nil},
		{"query param", "/?token=xyz", "", "xyz", nil},
		{"missing", "/", "", "", ErrAuthHeaderMissing},
		{"bad scheme", "/", "Basic abc", "", ErrInvalidAuthFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}
			got, err := ExtractToken(c)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/model"
)

func testConfig() configs.AuthConfig {
	return configs.AuthConfig{Enabled: true, JWTSecret: "test-secret", Issuer: "sociojustice", TokenTTL: time.Hour}
}

func TestIssueAndParse(t *testing.T) {
	m := auth.NewManager(testConfig())
	u := &model.User{ID: "u-1", Email: "admin@example.org", Role: model.RoleAdmin}

	token, exp, err := m.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "admin@example.org", id.Email)
	assert.True(t, id.IsAdmin())
}

func TestParseRejects(t *testing.T) {
	m := auth.NewManager(testConfig())
	token, _, err := m.Issue(&model.User{ID: "u-1", Role: model.RoleUser})
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "another-secret"
	_, err = auth.NewManager(other).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = m.Parse("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := testConfig()
	expired.TokenTTL = time.Nanosecond
	short := auth.NewManager(expired)
	token, _, err = short.Issue(&model.User{ID: "u-1"})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = short.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/travelapp/restaurants/backend/go-services/internal/auth"
)

const secret = "ctl-test-secret-0123456789abcdefgh"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"restaurantctl"}, args...))
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	out, err := run(t, "token", "--secret", secret, "--sub", "ops@example.com", "--ttl", "10m")
	require.NoError(t, err)

	tok, err := auth.NewHMACVerifier(secret).Verify(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "ops@example.com", claims["sub"])
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := run(t, "token")
	require.Error(t, err)
}

func TestRevokeCommand(t *testing.T) {
	s, err := mr.Run()
	require.NoError(t, err)
	defer s.Close()

	out, err := run(t, "token", "--secret", secret, "--ttl", "10m")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	jti, _, err := auth.ParseUnverified(token)
	require.NoError(t, err)

	out, err = run(t, "revoke", "--redis", s.Addr(), token)
	require.NoError(t, err)
	require.Contains(t, out, "revoked "+jti)
	require.True(t, s.Exists("revoked:jti:"+jti))
	require.Greater(t, s.TTL("revoked:jti:"+jti).Minutes(), 9.0)
}

func TestRevokeCommand_NeedsToken(t *testing.T) {
	_, err := run(t, "revoke", "--redis", "127.0.0.1:1")
	require.Error(t, err)

	_, err = run(t, "revoke", "--redis", "127.0.0.1:1", "not-a-jwt")
	require.Error(t, err)
}

func TestPingCommand_NoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MongoDBAtlasURI", "")
	_, err := run(t, "ping")
	require.Error(t, err)
}

func TestArchiveURLCommand_NeedsKey(t *testing.T) {
	_, err := run(t, "archive-url")
	require.Error(t, err)
}

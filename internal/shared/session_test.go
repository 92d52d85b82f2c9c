package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customtruckbeds/site/internal/shared"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRoundTripKeepsValuesAndFlashes(t *testing.T) {
	_, client := newRedis(t)
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.Set("name", "value")
	require.NoError(t, sess.SetJSON("form", map[string]string{"firstName": "John"}))
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "sent"})

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, req, sess))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "value", loaded.Get("name"))

	var form map[string]string
	ok, err := loaded.GetJSON("form", &form)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "John", form["firstName"])

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "sent", flash.Message)
	assert.Nil(t, loaded.PopFlash())

	// The popped flash is gone after the next commit.
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), next, loaded))
	again, err := sm.Load(context.Background(), next)
	require.NoError(t, err)
	assert.Nil(t, again.PopFlash())
}

func TestSessionUnknownCookieGetsFreshID(t *testing.T) {
	_, client := newRedis(t)
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "chosen-by-visitor"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "chosen-by-visitor", sess.ID)
}

func TestSessionGetJSONMissingKey(t *testing.T) {
	_, client := newRedis(t)
	sm := shared.NewSessionManager(client, "s", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var v map[string]string
	ok, err := sess.GetJSON("absent", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

package shared

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
)

func newTestSessions(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionCommitAndReload(t *testing.T) {
	sm := newTestSessions(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("k", "v")
	sess.AddFlash(FlashMessage{Kind: "success", Message: "hi"})

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "42", loaded.User())
	assert.Equal(t, "v", loaded.Get("k"))
	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "hi", flash.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm := newTestSessions(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "forged-id"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "forged-id", sess.ID)
	assert.Empty(t, sess.User())
}

func TestSessionRenewDropsPreviousKey(t *testing.T) {
	sm := newTestSessions(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))
	oldID := sess.ID

	reloadReq := httptest.NewRequest(http.MethodGet, "/", nil)
	reloadReq.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: oldID})
	loaded, err := sm.Load(ctx, reloadReq)
	require.NoError(t, err)
	sm.Renew(loaded)
	loaded.SetUser("7")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), reloadReq, loaded))
	assert.NotEqual(t, oldID, loaded.ID)

	stale := httptest.NewRequest(http.MethodGet, "/", nil)
	stale.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: oldID})
	fresh, err := sm.Load(ctx, stale)
	require.NoError(t, err)
	assert.Empty(t, fresh.User())
}

package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customtruckbeds/site/internal/shared"
)

func TestCSRFTokenIsStablePerSession(t *testing.T) {
	_, client := newRedis(t)
	sm := shared.NewSessionManager(client, "s", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	second, err := csrf.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, csrf.VerifyToken(sess, first))
	assert.ErrorIs(t, csrf.VerifyToken(sess, "forged"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(sess, ""), shared.ErrCSRFTokenMissing)
	assert.ErrorIs(t, csrf.VerifyToken(nil, first), shared.ErrCSRFTokenMissing)
}

func TestCSRFVerifyRequestReadsHeaderOrForm(t *testing.T) {
	_, client := newRedis(t)
	sm := shared.NewSessionManager(client, "s", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token, err := csrf.EnsureToken(sess)
	require.NoError(t, err)

	headerReq := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader("{}"))
	headerReq.Header.Set(shared.CSRFHeader, token)
	assert.NoError(t, csrf.VerifyRequest(sess, headerReq))

	form := url.Values{shared.CSRFFormField: {token}}
	formReq := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(form.Encode()))
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, formReq.ParseForm())
	assert.NoError(t, csrf.VerifyRequest(sess, formReq))

	bare := httptest.NewRequest(http.MethodPost, "/quote", nil)
	assert.ErrorIs(t, csrf.VerifyRequest(sess, bare), shared.ErrCSRFTokenMissing)
}

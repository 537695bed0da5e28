package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
)

// NonceQueryParam carries action nonces on links.
const NonceQueryParam = "_nonce"

const nonceLength = 10

// CreateNonce returns a token scoped to action, the session and its user.
// The same inputs yield the same token until the tick rolls over.
func (m *CSRFManager) CreateNonce(sess *Session, action string) string {
	if sess == nil {
		return ""
	}
	return m.nonceAt(m.tick(), action, sess.User(), sess.ID)
}

// VerifyNonce reports whether nonce was issued for action in this session during
// the current or the previous tick.
func (m *CSRFManager) VerifyNonce(sess *Session, action, nonce string) bool {
	if sess == nil || nonce == "" || action == "" {
		return false
	}
	tick := m.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(m.nonceAt(t, action, sess.User(), sess.ID)), []byte(nonce)) {
			return true
		}
	}
	return false
}

func (m *CSRFManager) tick() int64 {
	half := int64(m.nonceLifetime / 2)
	if half <= 0 {
		half = 1
	}
	now := m.now().UnixNano()
	return (now + half - 1) / half
}

func (m *CSRFManager) nonceAt(tick int64, action, userID, sessionID string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(strconv.FormatInt(tick, 10)))
	for _, part := range []string{action, userID, sessionID} {
		_, _ = mac.Write([]byte{'|'})
		_, _ = mac.Write([]byte(part))
	}
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))[:nonceLength]
}

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenHash(t *testing.T) {
	h := TokenHash("secret-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, TokenHash("secret-token"))
	assert.NotEqual(t, h, TokenHash("secret-token2"))
	assert.NotContains(t, h, "secret")
}

func TestKeys(t *testing.T) {
	bans := NewBanStore(nil, "rental:")
	assert.Equal(t, "rental:ban:ip:1.2.3.4", bans.key("ip:1.2.3.4"))

	sessions := NewSessionStore(nil, "rental:", 0)
	assert.Equal(t, "rental:session:"+TokenHash("t"), sessions.key("t"))
}

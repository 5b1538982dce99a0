package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	wallet := base58.Encode(pub)
	message := "SolQuest login: 4f2a"
	sig := base58.Encode(ed25519.Sign(priv, []byte(message)))

	assert.True(t, VerifySignature(wallet, message, sig))
	assert.False(t, VerifySignature(wallet, "other message", sig))
	assert.False(t, VerifySignature(wallet, message, base58.Encode([]byte("short"))))
	assert.False(t, VerifySignature("not-base58-!!", message, sig))

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	assert.False(t, VerifySignature(base58.Encode(otherPub), message, sig))
}

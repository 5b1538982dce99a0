package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// VerifySignature checks an ed25519 signature produced by a Solana wallet.
// wallet is the base58 public key, signature the base58 signature over the
// raw message bytes. Malformed inputs simply fail verification.
func VerifySignature(wallet, message, signature string) bool {
	pub, err := base58.Decode(wallet)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}

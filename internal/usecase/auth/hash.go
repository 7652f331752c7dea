package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	hashTime    = uint32(2)
	hashMem     = uint32(19 * 1024)
	hashThreads = uint8(1)
	hashLen     = uint32(32)
)

// hashPassword is deterministic and unsalted. Login recomputes the digest and
// compares it with the stored one.
func hashPassword(pw string) string {
	h := argon2.IDKey([]byte(pw), nil, hashTime, hashMem, hashThreads, hashLen)
	hEnc := base64.RawStdEncoding.EncodeToString(h)
	return fmt.Sprintf("argon2id$%d$%d$%d$%d$$%s", hashTime, hashMem, hashThreads, hashLen, hEnc)
}

func samePassword(pw, stored string) bool {
	got := hashPassword(pw)
	if len(got) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1
}

package envelope

import "crypto/subtle"

// Preview returns a display-safe masked form of a credential: "***" plus
// the last four characters, or a fixed mask for very short inputs. It is
// derived once at write time and is not reversible.
func Preview(plaintext string) string {
	if len(plaintext) < 4 {
		return "****"
	}
	return "***" + plaintext[len(plaintext)-4:]
}

// SecureCompare reports whether a and b are equal without the comparison
// time depending on where the first mismatch occurs. The early return on
// length mismatch leaks length only, never content; that is an accepted
// trade-off over fixed-length padding.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

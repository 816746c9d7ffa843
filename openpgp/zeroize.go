package openpgp

// Zero overwrites b with zero octets in place. Callers hold session
// keys, passphrases, and decrypted secret-key material in byte slices
// and should Zero them once no longer needed. This is a caller-side
// hygiene practice, not a security boundary enforced by the package
// itself.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

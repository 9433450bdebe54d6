package ports

// PasswordHasher derives salted one-way digests for credentials. The salt
// is generated separately and persisted next to the digest so that login
// verification can recompute the hash with the stored salt and compare.
type PasswordHasher interface {
	// GenerateSalt returns a fresh random salt.
	GenerateSalt() (string, error)
	// Hash derives the digest for a (plaintext, salt) pair. Deterministic
	// for a given pair; fails only if the salt is malformed.
	Hash(password, salt string) (string, error)
}

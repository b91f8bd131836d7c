package ports

// EncryptionService defines the interface for encrypting secrets at rest,
// such as tenant access tokens.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

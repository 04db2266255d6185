// Package envelope opens the hybrid-encrypted identity payload returned by
// the provider: an AES-GCM ciphertext, the AES key wrapped with the partner's
// RSA key, and the SHA-256 thumbprint of the partner certificate.
package envelope

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

const (
	// ThumbprintLen is the length of a SHA-256 certificate thumbprint.
	ThumbprintLen = sha256.Size
	// DefaultKeySplitter separates the ciphertext from the wrapped key.
	DefaultKeySplitter = "#KEY_SPLITTER#"

	nonceLen      = 12
	sessionKeyLen = 32
)

// Decryptor opens an assembled blob and returns the plaintext as base64url.
type Decryptor interface {
	Decrypt(ctx context.Context, blobB64 string) (string, error)
}

// RSADecryptor opens blobs addressed to one partner key pair.
type RSADecryptor struct {
	key           *rsa.PrivateKey
	splitter      string
	thumbprint    []byte
	thumbprintLen int
}

// Option configures an RSADecryptor.
type Option func(*RSADecryptor)

// WithCertificate makes Decrypt reject blobs whose thumbprint does not match
// cert.
func WithCertificate(cert *x509.Certificate) Option {
	return func(d *RSADecryptor) {
		d.thumbprint = Thumbprint(cert)
	}
}

// WithoutThumbprint is for providers that do not append a thumbprint.
func WithoutThumbprint() Option {
	return func(d *RSADecryptor) {
		d.thumbprintLen = 0
		d.thumbprint = nil
	}
}

// NewRSADecryptor creates a decryptor for key. An empty splitter selects
// DefaultKeySplitter.
func NewRSADecryptor(key *rsa.PrivateKey, splitter string, opts ...Option) (*RSADecryptor, error) {
	if key == nil {
		return nil, fmt.Errorf("decryption key is required: %w", models.ErrDecryption)
	}
	if splitter == "" {
		splitter = DefaultKeySplitter
	}
	d := &RSADecryptor{key: key, splitter: splitter, thumbprintLen: ThumbprintLen}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Decrypt implements Decryptor.
func (d *RSADecryptor) Decrypt(_ context.Context, blobB64 string) (string, error) {
	blob, err := combiner.DecodeURL(blobB64)
	if err != nil {
		return "", fmt.Errorf("blob: %w: %w", models.ErrDecryption, err)
	}

	body := blob
	if d.thumbprintLen > 0 {
		var tp []byte
		body, tp, err = combiner.SplitTrailing(blob, d.thumbprintLen)
		if err != nil {
			return "", fmt.Errorf("thumbprint: %w: %w", models.ErrDecryption, err)
		}
		if d.thumbprint != nil && !bytes.Equal(tp, d.thumbprint) {
			return "", fmt.Errorf("payload addressed to another certificate: %w", models.ErrDecryption)
		}
	}

	ciphertext, wrapped, err := combiner.Split(body, d.splitter)
	if err != nil {
		return "", fmt.Errorf("key splitter: %w: %w", models.ErrDecryption, err)
	}
	sessionKey, err := rsa.DecryptOAEP(sha256.New(), nil, d.key, wrapped, nil)
	if err != nil {
		return "", fmt.Errorf("unwrap session key: %w", models.ErrDecryption)
	}
	plaintext, err := open(sessionKey, ciphertext)
	if err != nil {
		return "", err
	}
	return combiner.EncodeURL(plaintext), nil
}

// Seal encrypts plaintext for pub the way the provider does. It returns the
// AES-GCM ciphertext with the nonce appended, and the RSA-OAEP wrapped
// session key.
func Seal(pub *rsa.PublicKey, plaintext []byte) ([]byte, []byte, error) {
	sessionKey := make([]byte, sessionKeyLen)
	if _, err := rand.Read(sessionKey); err != nil {
		return nil, nil, fmt.Errorf("session key: %w", err)
	}
	gcm, err := newGCM(sessionKey)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("nonce: %w", err)
	}
	ciphertext := append(gcm.Seal(nil, nonce, plaintext, nil), nonce...)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, sessionKey, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap session key: %w", err)
	}
	return ciphertext, wrapped, nil
}

// Thumbprint returns the SHA-256 digest of the certificate's DER encoding.
func Thumbprint(cert *x509.Certificate) []byte {
	if cert == nil {
		return nil
	}
	sum := sha256.Sum256(cert.Raw)
	return sum[:]
}

func open(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < nonceLen+gcm.Overhead() {
		return nil, fmt.Errorf("ciphertext too short: %w", models.ErrDecryption)
	}
	cut := len(data) - nonceLen
	plaintext, err := gcm.Open(nil, data[cut:], data[:cut], nil)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", models.ErrDecryption)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("session key: %w: %w", models.ErrDecryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w: %w", models.ErrDecryption, err)
	}
	return gcm, nil
}

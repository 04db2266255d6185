package envelope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/signer"
)

func sealedBlob(t *testing.T, keys *signer.KeyPair, plaintext []byte) string {
	t.Helper()
	ct, wrapped, err := Seal(&keys.Key.PublicKey, plaintext)
	require.NoError(t, err)
	blob, err := combiner.Assemble(
		combiner.EncodeURL(ct),
		combiner.EncodeURL(wrapped),
		combiner.EncodeURL(Thumbprint(keys.Cert)),
		DefaultKeySplitter,
	)
	require.NoError(t, err)
	return blob
}

func TestDecrypt(t *testing.T) {
	keys, err := signer.GenerateKeyPair("partner", 2048)
	require.NoError(t, err)
	identity := []byte(`{"fullName":[{"language":"eng","value":"Jane"}]}`)

	t.Run("opens a sealed payload", func(t *testing.T) {
		d, err := NewRSADecryptor(keys.Key, "", WithCertificate(keys.Cert))
		require.NoError(t, err)

		out, err := d.Decrypt(context.Background(), sealedBlob(t, keys, identity))
		require.NoError(t, err)
		plain, err := combiner.DecodeURL(out)
		require.NoError(t, err)
		assert.Equal(t, identity, plain)
	})

	t.Run("thumbprint of another certificate", func(t *testing.T) {
		other, err := signer.GenerateKeyPair("other", 2048)
		require.NoError(t, err)
		d, err := NewRSADecryptor(keys.Key, "", WithCertificate(other.Cert))
		require.NoError(t, err)

		_, err = d.Decrypt(context.Background(), sealedBlob(t, keys, identity))
		assert.ErrorIs(t, err, models.ErrDecryption)
	})

	t.Run("wrong private key", func(t *testing.T) {
		other, err := signer.GenerateKeyPair("other", 2048)
		require.NoError(t, err)
		d, err := NewRSADecryptor(other.Key, "")
		require.NoError(t, err)

		_, err = d.Decrypt(context.Background(), sealedBlob(t, keys, identity))
		assert.ErrorIs(t, err, models.ErrDecryption)
	})

	t.Run("no thumbprint", func(t *testing.T) {
		ct, wrapped, err := Seal(&keys.Key.PublicKey, identity)
		require.NoError(t, err)
		blob := combiner.EncodeURL(combiner.Combine(ct, wrapped, "|"))

		d, err := NewRSADecryptor(keys.Key, "|", WithoutThumbprint())
		require.NoError(t, err)
		out, err := d.Decrypt(context.Background(), blob)
		require.NoError(t, err)
		assert.Equal(t, combiner.EncodeURL(identity), out)
	})

	t.Run("malformed blobs", func(t *testing.T) {
		d, err := NewRSADecryptor(keys.Key, "")
		require.NoError(t, err)

		for name, blob := range map[string]string{
			"not base64":       "***",
			"too short":        combiner.EncodeURL([]byte("short")),
			"missing splitter": combiner.EncodeURL(make([]byte, 64)),
		} {
			_, err := d.Decrypt(context.Background(), blob)
			assert.ErrorIs(t, err, models.ErrDecryption, name)
		}
	})

	t.Run("nil key", func(t *testing.T) {
		_, err := NewRSADecryptor(nil, "")
		assert.ErrorIs(t, err, models.ErrDecryption)
	})
}

// Package main is a developer CLI for the authenticator's key material. It
// generates partner key pairs and secrets and derives pseudonyms so local
// setups and support sessions can reproduce what the server computes.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/akilalakshman/esignet/internal/authenticator/envelope"
	"github.com/akilalakshman/esignet/internal/authenticator/signer"
	"github.com/akilalakshman/esignet/internal/authenticator/token"
)

const (
	defaultCommonName = "esignet-ida-dev"
	defaultKeyBits    = 2048
	secretBytes       = 32
)

func main() {
	keysCmd := flag.NewFlagSet("keys", flag.ExitOnError)
	keysOut := keysCmd.String("out", ".", "Directory for partner.key and partner.crt")
	keysCN := keysCmd.String("cn", defaultCommonName, "Certificate common name")
	keysBits := keysCmd.Int("bits", defaultKeyBits, "RSA key size")

	secretCmd := flag.NewFlagSet("secret", flag.ExitOnError)

	psutCmd := flag.NewFlagSet("psut", flag.ExitOnError)
	psutSalt := psutCmd.String("salt", os.Getenv("PSUT_SALT"), "Pseudonym salt (defaults to $PSUT_SALT)")
	psutIndividual := psutCmd.String("individual-id", "", "Individual id")
	psutRP := psutCmd.String("relying-party", "", "Relying party id")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "keys":
		_ = keysCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		err = writeKeys(*keysOut, *keysCN, *keysBits)
	case "secret":
		_ = secretCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		err = printSecret()
	case "psut":
		_ = psutCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		err = printPSUT(*psutSalt, *psutIndividual, *psutRP)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tokengen <command> [flags]

commands:
  keys    generate a self-signed partner key pair (PARTNER_KEY_FILE / PARTNER_CERT_FILE)
  secret  generate a random KYC_TOKEN_SECRET
  psut    derive the partner specific user token for an individual`)
}

func writeKeys(dir, cn string, bits int) error {
	kp, err := signer.GenerateKeyPair(cn, bits)
	if err != nil {
		return err
	}
	keyPEM, certPEM, err := kp.EncodePEM()
	if err != nil {
		return err
	}
	keyPath := filepath.Join(dir, "partner.key")
	certPath := filepath.Join(dir, "partner.crt")
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil { //nolint:gosec // certificates are public
		return fmt.Errorf("write certificate: %w", err)
	}
	return printJSON(map[string]string{
		"key_file":   keyPath,
		"cert_file":  certPath,
		"thumbprint": hex.EncodeToString(envelope.Thumbprint(kp.Cert)),
	})
}

func printSecret() error {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	return printJSON(map[string]string{"KYC_TOKEN_SECRET": base64.RawURLEncoding.EncodeToString(b)})
}

func printPSUT(salt, individualID, relyingPartyID string) error {
	if individualID == "" || relyingPartyID == "" {
		return fmt.Errorf("-individual-id and -relying-party are required")
	}
	gen, err := token.NewHMACGenerator([]byte(salt))
	if err != nil {
		return err
	}
	psut, err := gen.Generate(context.Background(), individualID, relyingPartyID)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"relying_party_id":            relyingPartyID,
		"partner_specific_user_token": psut,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

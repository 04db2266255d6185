package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/akilalakshman/esignet/internal/authenticator/claims"
	"github.com/akilalakshman/esignet/internal/authenticator/envelope"
	"github.com/akilalakshman/esignet/internal/authenticator/metrics"
	"github.com/akilalakshman/esignet/internal/authenticator/provider"
	"github.com/akilalakshman/esignet/internal/authenticator/service"
	"github.com/akilalakshman/esignet/internal/authenticator/signer"
	"github.com/akilalakshman/esignet/internal/authenticator/store"
	"github.com/akilalakshman/esignet/internal/authenticator/token"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	"github.com/akilalakshman/esignet/internal/platform/config"
	"github.com/akilalakshman/esignet/internal/platform/redis"
	"github.com/akilalakshman/esignet/pkg/platform/circuit"
)

const devKeyBits = 2048

// authenticatorDeps are the pieces main needs beyond the service itself.
type authenticatorDeps struct {
	service *service.Service
	// memoryStore is set when payloads live in process and need sweeping.
	memoryStore *store.InMemoryStore
}

func loadKeys(cfg config.SigningConfig, log *slog.Logger) (*signer.KeyPair, error) {
	if cfg.GeneratedKeys() {
		log.Warn("no partner key configured, generating a development key pair")
		return signer.GenerateKeyPair("esignet-ida-dev", devKeyBits)
	}
	return signer.LoadKeyPair(cfg.KeyFile, cfg.CertFile)
}

func buildAuthenticator(
	cfg config.Config,
	log *slog.Logger,
	m *metrics.Metrics,
	rdb *redis.Client,
	audit service.AuditPublisher,
) (*authenticatorDeps, error) {
	if cfg.Authenticator.Impl != config.ImplIDA115 {
		return nil, fmt.Errorf("unsupported authenticator implementation %q", cfg.Authenticator.Impl)
	}

	keys, err := loadKeys(cfg.Signing, log)
	if err != nil {
		return nil, fmt.Errorf("load partner keys: %w", err)
	}
	jwtSigner, err := signer.New(keys)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	a := cfg.Authenticator
	ida := provider.New(provider.Config{
		KycURL:        a.KycURL,
		AuthURL:       a.AuthURL,
		OTPURL:        a.OTPURL,
		PartnerID:     a.PartnerID,
		PartnerAPIKey: a.PartnerAPIKey,
		KycID:         a.KycID,
		AuthOnlyID:    a.AuthOnlyID,
		OTPID:         a.OTPID,
		Version:       a.Version,
		DomainURI:     a.DomainURI,
		Env:           a.Env,
		AuthOnly:      a.AuthOnly,
		Authorization: a.AuthorizationValue,
		Timeout:       a.Timeout,
	}, jwtSigner, providerOptions(a, log, m)...)

	pseudonyms, err := token.NewHMACGenerator([]byte(cfg.Token.PseudonymSalt))
	if err != nil {
		return nil, fmt.Errorf("create pseudonym generator: %w", err)
	}
	tokens, err := token.New(cfg.Token.Secret, pseudonyms)
	if err != nil {
		return nil, fmt.Errorf("create token service: %w", err)
	}

	deps := &authenticatorDeps{}
	var payloads service.PayloadStore
	if rdb != nil {
		payloads = store.NewRedisStore(rdb, cfg.Token.PayloadTTL, m)
	} else {
		log.Info("redis not configured, kyc payloads kept in memory")
		deps.memoryStore = store.NewInMemoryStore(cfg.Token.PayloadTTL)
		payloads = deps.memoryStore
	}

	decOpts := []envelope.Option{envelope.WithCertificate(keys.Cert)}
	if !a.ThumbprintEnabled {
		decOpts = append(decOpts, envelope.WithoutThumbprint())
	}
	decryptor, err := envelope.NewRSADecryptor(keys.Key, a.KeySplitter, decOpts...)
	if err != nil {
		return nil, fmt.Errorf("create decryptor: %w", err)
	}

	schema := claims.DefaultSchema()
	if cfg.Claims.SchemaFile != "" {
		if schema, err = claims.LoadSchemaFile(cfg.Claims.SchemaFile); err != nil {
			return nil, err
		}
	}
	resolver := claims.NewResolver(schema, claims.PassthroughConverter{}, claimsConfig(cfg.Claims), claims.WithLogger(log))

	svc, err := service.New(ida, tokens, payloads, decryptor, jwtSigner, resolver, service.Config{
		KeySplitter:        a.KeySplitter,
		ApplicationID:      a.ApplicationID,
		IncludeCertificate: a.IncludeCertificate,
		OTPChannels:        a.OTPChannels,
		SubjectClaim:       cfg.Claims.SubjectClaim,
	},
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(tracer.NewOTel()),
		service.WithAuditPublisher(audit),
	)
	if err != nil {
		return nil, err
	}
	deps.service = svc
	return deps, nil
}

func claimsConfig(c config.ClaimsConfig) claims.Config {
	out := claims.DefaultConfig()
	out.SubjectClaim = c.SubjectClaim
	out.IndividualIDClaim = c.IndividualIDClaim
	out.PictureClaim = c.PictureClaim
	out.PicturePrefix = c.PicturePrefix
	out.FaceAttribute = c.FaceAttribute
	out.AddressClaim = c.AddressClaim
	out.AddressSeparator = c.AddressSeparator
	out.NameSeparator = c.NameSeparator
	out.AddressSubset = c.AddressSubset
	out.AttributeLangSep = c.AttributeLangSep
	out.ClaimsLangSep = c.ClaimsLangSep
	return out
}

// sweepInterval runs the in-memory sweep a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	if iv := ttl / 4; iv > time.Second {
		return iv
	}
	return time.Second
}

func providerOptions(a config.AuthenticatorConfig, log *slog.Logger, m *metrics.Metrics) []provider.Option {
	opts := []provider.Option{provider.WithMetrics(m)}
	if a.CircuitFailures == 0 {
		return opts
	}
	breaker := circuit.New("ida",
		circuit.WithFailureThreshold(a.CircuitFailures),
		circuit.WithCoolDown(a.CircuitCoolDown),
		circuit.WithStateChange(func(name string, from, to circuit.State) {
			log.Warn("provider circuit state changed", "circuit", name, "from", from.String(), "to", to.String())
		}),
	)
	return append(opts, provider.WithBreaker(breaker))
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Supported authenticator implementations.
const (
	ImplIDA115 = "ida115"
)

// Audit sinks.
const (
	AuditMemory   = "memory"
	AuditPostgres = "postgres"
	AuditKafka    = "kafka"
)

// Config is the complete process configuration. It is built once by FromEnv
// and never modified afterwards.
type Config struct {
	Environment   string `validate:"required"`
	Log           LogConfig
	Server        ServerConfig
	Redis         RedisConfig
	Database      DatabaseConfig
	Kafka         KafkaConfig
	Audit         AuditConfig
	Authenticator AuthenticatorConfig
	Claims        ClaimsConfig
	Token         TokenConfig
	Signing       SigningConfig
	RateLimit     RateLimitConfig
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `validate:"required"`
	MaxBodyBytes    int64         `validate:"gt=0"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	MetricsInterval time.Duration `validate:"gt=0"`
}

// RedisConfig configures the payload store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string `validate:"omitempty,url"`
	PoolSize     int    `validate:"gt=0"`
	MinIdleConns int    `validate:"gte=0"`
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the audit database.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int `validate:"gt=0"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the audit topic.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string `validate:"required"`
	// SinkEnabled runs the consumer that copies the audit topic into the
	// database.
	SinkEnabled bool
}

// AuditConfig selects where audit events go.
type AuditConfig struct {
	Mode        string `validate:"oneof=memory postgres kafka"`
	AsyncBuffer int    `validate:"gte=0"`
}

// AuthenticatorConfig holds the provider endpoints and partner identity.
type AuthenticatorConfig struct {
	Impl               string `validate:"oneof=ida115"`
	KycURL             string `validate:"required,url"`
	AuthURL            string `validate:"omitempty,url"`
	OTPURL             string `validate:"required,url"`
	PartnerID          string `validate:"required"`
	PartnerAPIKey      string `validate:"required"`
	KycID              string `validate:"required"`
	AuthOnlyID         string
	OTPID              string `validate:"required"`
	Version            string `validate:"required"`
	DomainURI          string
	Env                string
	AuthOnly           bool
	AuthorizationValue string
	Timeout            time.Duration `validate:"gt=0"`
	OTPChannels        []string      `validate:"min=1,dive,required"`
	KeySplitter        string        `validate:"required"`
	ApplicationID      string        `validate:"required"`
	IncludeCertificate bool
	ThumbprintEnabled  bool
	// CircuitFailures consecutive outages open the provider circuit; zero
	// disables the breaker.
	CircuitFailures int           `validate:"gte=0"`
	CircuitCoolDown time.Duration `validate:"gt=0"`
}

// ClaimsConfig controls claim naming and value formatting.
type ClaimsConfig struct {
	SchemaFile        string
	SubjectClaim      string `validate:"required"`
	IndividualIDClaim string
	PictureClaim      string
	PicturePrefix     string
	FaceAttribute     string
	AddressClaim      string
	AddressSeparator  string
	NameSeparator     string
	AddressSubset     []string
	AttributeLangSep  string `validate:"required"`
	ClaimsLangSep     string `validate:"required"`
}

// TokenConfig holds the secrets used to derive kyc tokens and pseudonyms.
type TokenConfig struct {
	Secret        string        `validate:"required"`
	PseudonymSalt string        `validate:"required"`
	PayloadTTL    time.Duration `validate:"gt=0"`
}

// SigningConfig points at the partner key pair. When both paths are empty a
// development key pair is generated at startup.
type SigningConfig struct {
	KeyFile  string `validate:"required_with=CertFile"`
	CertFile string `validate:"required_with=KeyFile"`
}

// GeneratedKeys reports whether no key material was configured.
func (s SigningConfig) GeneratedKeys() bool {
	return s.KeyFile == "" && s.CertFile == ""
}

// RateLimitConfig bounds how often one caller may start an authentication or
// request an OTP. Counters live in Redis when it is configured.
type RateLimitConfig struct {
	Enabled     bool
	AuthLimit   int           `validate:"gt=0"`
	OTPLimit    int           `validate:"gt=0"`
	Window      time.Duration `validate:"gt=0"`
	TrustHeader bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FromEnv builds the configuration from environment variables and validates
// it. Unset variables take the defaults below.
func FromEnv() (Config, error) {
	env := envString("ESIGNET_ENV", "dev")
	cfg := Config{
		Environment: env,
		Log: LogConfig{
			Level: strings.ToLower(envString("LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Addr:            envString("ESIGNET_ADDR", ":8080"),
			MaxBodyBytes:    int64(envInt("MAX_BODY_BYTES", 1<<20)),
			RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MetricsInterval: envDuration("METRICS_INTERVAL", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("KAFKA_BROKERS", nil),
			AuditTopic:  envString("KAFKA_AUDIT_TOPIC", "esignet.audit.events"),
			SinkEnabled: envBool("KAFKA_AUDIT_SINK_ENABLED", false),
		},
		Audit: AuditConfig{
			Mode:        strings.ToLower(envString("AUDIT_MODE", AuditMemory)),
			AsyncBuffer: envInt("AUDIT_ASYNC_BUFFER", 0),
		},
		Authenticator: AuthenticatorConfig{
			Impl:               strings.ToLower(envString("AUTHENTICATOR_IMPL", ImplIDA115)),
			KycURL:             os.Getenv("IDA_KYC_AUTH_URL"),
			AuthURL:            os.Getenv("IDA_AUTH_URL"),
			OTPURL:             os.Getenv("IDA_SEND_OTP_URL"),
			PartnerID:          os.Getenv("IDA_PARTNER_ID"),
			PartnerAPIKey:      os.Getenv("IDA_PARTNER_API_KEY"),
			KycID:              envString("IDA_KYC_AUTH_ID", "mosip.identity.kycauth"),
			AuthOnlyID:         envString("IDA_AUTH_ID", "mosip.identity.auth"),
			OTPID:              envString("IDA_SEND_OTP_ID", "mosip.identity.otp"),
			Version:            envString("IDA_VERSION", "1.0"),
			DomainURI:          os.Getenv("IDA_DOMAIN_URI"),
			Env:                envString("IDA_ENV", "Staging"),
			AuthOnly:           envBool("IDA_AUTH_ONLY", false),
			AuthorizationValue: envString("IDA_AUTHORIZATION", "Authorization"),
			Timeout:            envDuration("IDA_TIMEOUT", 10*time.Second),
			OTPChannels:        envList("IDA_OTP_CHANNELS", []string{"email", "phone"}),
			KeySplitter:        envString("IDA_KEY_SPLITTER", "#KEY_SPLITTER#"),
			ApplicationID:      envString("KYC_APPLICATION_ID", "esignet-partner"),
			IncludeCertificate: envBool("KYC_INCLUDE_CERTIFICATE", false),
			ThumbprintEnabled:  envBool("IDA_THUMBPRINT_ENABLED", true),
			CircuitFailures:    envInt("IDA_CIRCUIT_FAILURES", 5),
			CircuitCoolDown:    envDuration("IDA_CIRCUIT_COOLDOWN", 30*time.Second),
		},
		Claims: ClaimsConfig{
			SchemaFile:        os.Getenv("CLAIMS_SCHEMA_FILE"),
			SubjectClaim:      envString("CLAIMS_SUBJECT", "sub"),
			IndividualIDClaim: envString("CLAIMS_INDIVIDUAL_ID", "individual_id"),
			PictureClaim:      envString("CLAIMS_PICTURE", "picture"),
			PicturePrefix:     envString("CLAIMS_PICTURE_PREFIX", "data:image/jpeg;base64,"),
			FaceAttribute:     envString("CLAIMS_FACE_ATTRIBUTE", "Face"),
			AddressClaim:      envString("CLAIMS_ADDRESS", "address"),
			AddressSeparator:  envString("CLAIMS_ADDRESS_SEPARATOR", " "),
			NameSeparator:     envString("CLAIMS_NAME_SEPARATOR", " "),
			AddressSubset:     envList("CLAIMS_ADDRESS_SUBSET", nil),
			AttributeLangSep:  envString("CLAIMS_ATTRIBUTE_LANG_SEP", "_"),
			ClaimsLangSep:     envString("CLAIMS_LANG_SEP", "#"),
		},
		Token: TokenConfig{
			Secret:        os.Getenv("KYC_TOKEN_SECRET"),
			PseudonymSalt: os.Getenv("PSUT_SALT"),
			PayloadTTL:    envDuration("KYC_PAYLOAD_TTL", 2*time.Minute),
		},
		Signing: SigningConfig{
			KeyFile:  os.Getenv("PARTNER_KEY_FILE"),
			CertFile: os.Getenv("PARTNER_CERT_FILE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:     envBool("RATE_LIMIT_ENABLED", true),
			AuthLimit:   envInt("RATE_LIMIT_AUTH", 30),
			OTPLimit:    envInt("RATE_LIMIT_OTP", 5),
			Window:      envDuration("RATE_LIMIT_WINDOW", time.Minute),
			TrustHeader: envBool("RATE_LIMIT_TRUST_RP_HEADER", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the cross-field rules between the
// audit mode and its backing services.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.Audit.Mode {
	case AuditPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("invalid configuration: AUDIT_MODE=postgres requires DATABASE_URL")
		}
	case AuditKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("invalid configuration: AUDIT_MODE=kafka requires KAFKA_BROKERS")
		}
	}
	if c.Kafka.SinkEnabled && (len(c.Kafka.Brokers) == 0 || c.Database.URL == "") {
		return fmt.Errorf("invalid configuration: audit sink requires KAFKA_BROKERS and DATABASE_URL")
	}
	if c.Authenticator.AuthOnly && c.Authenticator.AuthURL == "" {
		return fmt.Errorf("invalid configuration: IDA_AUTH_ONLY requires IDA_AUTH_URL")
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

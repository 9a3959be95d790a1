package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string

	// Storage
	DBUrl    string
	RedisURL string

	// Auth
	RSAPublicKey *rsa.PublicKey

	// Twilio / SendGrid for lease expiry notices
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	SendGridAPIKey   string

	// LaunchDarkly flags
	LDFlag_SeedDbWithTestData   bool
	LDFlag_NightlyRentSync      bool
	LDFlag_NotifyExpiringLeases bool
	LDFlag_SendgridSandboxMode  bool
	LDFlag_CORSHighSecurity     bool
	LDFlag_SendgridFromEmail    string
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
	LDContextKind       = "service"

	defaultFromEmail = "no-reply@propertyhub.app"
	defaultFromPhone = "+10005550006"
)

// build-time override
var AppName string

// LoadConfig reads the environment and snapshots feature flags. Missing
// required values are fatal.
func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		appPort = "8080"
	}

	var pubKey *rsa.PublicKey
	if pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64"); pubB64 != "" {
		var err error
		pubKey, err = parsePublicKey(pubB64)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
		}
	}

	twilioFrom := os.Getenv("TWILIO_FROM_PHONE")
	if twilioFrom == "" {
		twilioFrom = defaultFromPhone
	}

	flags := loadFlags(os.Getenv("LD_SDK_KEY"))

	return &Config{
		OrganizationName:            OrganizationName,
		AppName:                     AppName,
		Env:                         env,
		AppPort:                     appPort,
		AppUrl:                      os.Getenv("APP_URL_FROM_ANYWHERE"),
		DBUrl:                       dbURL,
		RedisURL:                    os.Getenv("REDIS_URL"),
		RSAPublicKey:                pubKey,
		TwilioAccountSID:            os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:             os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:             twilioFrom,
		SendGridAPIKey:              os.Getenv("SENDGRID_API_KEY"),
		LDFlag_SeedDbWithTestData:   flags.seedDbWithTestData,
		LDFlag_NightlyRentSync:      flags.nightlyRentSync,
		LDFlag_NotifyExpiringLeases: flags.notifyExpiringLeases,
		LDFlag_SendgridSandboxMode:  flags.sendgridSandboxMode,
		LDFlag_CORSHighSecurity:     flags.corsHighSecurity,
		LDFlag_SendgridFromEmail:    flags.sendgridFromEmail,
	}
}

func parsePublicKey(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		return nil, jwt.ErrKeyMustBePEMEncoded
	}
	return jwt.ParseRSAPublicKeyFromPEM(pubPEM)
}

type flagSnapshot struct {
	seedDbWithTestData   bool
	nightlyRentSync      bool
	notifyExpiringLeases bool
	sendgridSandboxMode  bool
	corsHighSecurity     bool
	sendgridFromEmail    string
}

// flagSource is the part of *ld.LDClient the snapshot needs.
type flagSource interface {
	BoolVariation(key string, context ldcontext.Context, defaultVal bool) (bool, error)
	StringVariation(key string, context ldcontext.Context, defaultVal string) (string, error)
}

// loadFlags reads every flag once at startup. Without an SDK key the client
// runs offline and every flag takes its default.
func loadFlags(sdkKey string) flagSnapshot {
	ldCfg := ld.Config{}
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY is empty, LaunchDarkly runs offline with flag defaults")
		ldCfg.Offline = true
	}
	ldClient, err := ld.MakeCustomClient(sdkKey, ldCfg, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()
	if !ldCfg.Offline && !ldClient.Initialized() {
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}

	return snapshotFlags(ldClient, ldcontext.NewWithKind(ldcontext.Kind(LDContextKind), AppName))
}

func snapshotFlags(src flagSource, ctx ldcontext.Context) flagSnapshot {
	boolFlag := func(key string, def bool) bool {
		v, err := src.BoolVariation(key, ctx, def)
		if err != nil {
			utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using %t", key, def)
			return def
		}
		utils.Logger.Debugf("%s flag: %t", key, v)
		return v
	}

	fromEmail, err := src.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		utils.Logger.WithError(err).Warn("Error retrieving sendgrid_from_email flag")
	}
	if fromEmail == "" {
		utils.Logger.Warnf("sendgrid_from_email flag is empty, defaulting to %s", defaultFromEmail)
		fromEmail = defaultFromEmail
	}

	return flagSnapshot{
		seedDbWithTestData:   boolFlag("seed_db_with_test_accounts", false),
		nightlyRentSync:      boolFlag("nightly_rent_sync", true),
		notifyExpiringLeases: boolFlag("notify_expiring_leases", false),
		sendgridSandboxMode:  boolFlag("sendgrid_sandbox_mode", true),
		corsHighSecurity:     boolFlag("cors_high_security", false),
		sendgridFromEmail:    fromEmail,
	}
}

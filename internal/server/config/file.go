package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MEDTRACK_DATABASE_DSN.
const EnvPrefix = "MEDTRACK"

// FileConfig is the DTO decoded by viper from the config file and the
// environment. Durations accept strings such as "15m".
type FileConfig struct {
	EndpointAddrGRPC             string        `mapstructure:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string        `mapstructure:"endpoint_addr_http"`
	PublicBaseURL                string        `mapstructure:"public_base_url"`
	DatabaseDSN                  string        `mapstructure:"database_dsn"`
	SecretKey                    string        `mapstructure:"secret_key"`
	AccessTokenValidityDuration  time.Duration `mapstructure:"access_token_validity_duration"`
	RefreshTokenValidityDuration time.Duration `mapstructure:"refresh_token_validity_duration"`
	RecentLoginWindow            time.Duration `mapstructure:"recent_login_window"`
	ActionTokenValidity          time.Duration `mapstructure:"action_token_validity"`
	OTPValidity                  time.Duration `mapstructure:"otp_validity"`
	S3RootUser                   string        `mapstructure:"s3_root_user"`
	S3RootPassword               string        `mapstructure:"s3_root_password"`
	S3Bucket                     string        `mapstructure:"s3_bucket"`
	S3Region                     string        `mapstructure:"s3_region"`
	S3BaseEndpoint               string        `mapstructure:"s3_base_endpoint"`
	PresignedURLValidity         time.Duration `mapstructure:"presigned_url_validity"`
	DocumentBackend              string        `mapstructure:"document_backend"`
	FirestoreProjectID           string        `mapstructure:"firestore_project_id"`
	FirestoreCredentialsFile     string        `mapstructure:"firestore_credentials_file"`
	GeminiAPIKey                 string        `mapstructure:"gemini_api_key"`
	GeminiModel                  string        `mapstructure:"gemini_model"`
	OIDCIssuerURL                string        `mapstructure:"oidc_issuer_url"`
	OIDCClientID                 string        `mapstructure:"oidc_client_id"`
	OIDCClientSecret             string        `mapstructure:"oidc_client_secret"`
	SMSGatewayURL                string        `mapstructure:"sms_gateway_url"`
	SMSAPIKey                    string        `mapstructure:"sms_api_key"`
	SMSSender                    string        `mapstructure:"sms_sender"`
	SMTPHost                     string        `mapstructure:"smtp_host"`
	SMTPPort                     int           `mapstructure:"smtp_port"`
	SMTPUser                     string        `mapstructure:"smtp_user"`
	SMTPPassword                 string        `mapstructure:"smtp_password"`
	MailFrom                     string        `mapstructure:"mail_from"`
	LogFormat                    string        `mapstructure:"log_format"`
	LogLevel                     string        `mapstructure:"log_level"`
}

func (f FileConfig) apply(c *Config) {
	c.EndpointAddrGRPC = f.EndpointAddrGRPC
	c.EndpointAddrHTTP = f.EndpointAddrHTTP
	c.PublicBaseURL = f.PublicBaseURL
	c.DatabaseDSN = f.DatabaseDSN
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration
	c.RefreshTokenValidityDuration = f.RefreshTokenValidityDuration
	c.RecentLoginWindow = f.RecentLoginWindow
	c.ActionTokenValidity = f.ActionTokenValidity
	c.OTPValidity = f.OTPValidity
	c.S3RootUser = f.S3RootUser
	c.S3RootPassword = f.S3RootPassword
	c.S3Bucket = f.S3Bucket
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.PresignedURLValidity = f.PresignedURLValidity
	c.DocumentBackend = f.DocumentBackend
	c.FirestoreProjectID = f.FirestoreProjectID
	c.FirestoreCredentialsFile = f.FirestoreCredentialsFile
	c.GeminiAPIKey = f.GeminiAPIKey
	c.GeminiModel = f.GeminiModel
	c.OIDCIssuerURL = f.OIDCIssuerURL
	c.OIDCClientID = f.OIDCClientID
	c.OIDCClientSecret = f.OIDCClientSecret
	c.SMSGatewayURL = f.SMSGatewayURL
	c.SMSAPIKey = f.SMSAPIKey
	c.SMSSender = f.SMSSender
	c.SMTPHost = f.SMTPHost
	c.SMTPPort = f.SMTPPort
	c.SMTPUser = f.SMTPUser
	c.SMTPPassword = f.SMTPPassword
	c.MailFrom = f.MailFrom
	c.LogFormat = f.LogFormat
	c.LogLevel = f.LogLevel
}

// parseFile overlays the file named by -c/-config (JSON, YAML or TOML,
// chosen by extension) and MEDTRACK_* environment variables onto config.
// Keys missing from both keep their current value.
func parseFile(config *Config, args []string) error {
	v := viper.New()

	// AutomaticEnv only resolves keys viper already knows about.
	for k, val := range settings(config) {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	fc := FileConfig{}
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	fc.apply(config)
	return nil
}

// settings lists every key with its current value.
func settings(c *Config) map[string]any {
	return map[string]any{
		"endpoint_addr_grpc":              c.EndpointAddrGRPC,
		"endpoint_addr_http":              c.EndpointAddrHTTP,
		"public_base_url":                 c.PublicBaseURL,
		"database_dsn":                    c.DatabaseDSN,
		"secret_key":                      c.SecretKey,
		"access_token_validity_duration":  c.AccessTokenValidityDuration,
		"refresh_token_validity_duration": c.RefreshTokenValidityDuration,
		"recent_login_window":             c.RecentLoginWindow,
		"action_token_validity":           c.ActionTokenValidity,
		"otp_validity":                    c.OTPValidity,
		"s3_root_user":                    c.S3RootUser,
		"s3_root_password":                c.S3RootPassword,
		"s3_bucket":                       c.S3Bucket,
		"s3_region":                       c.S3Region,
		"s3_base_endpoint":                c.S3BaseEndpoint,
		"presigned_url_validity":          c.PresignedURLValidity,
		"document_backend":                c.DocumentBackend,
		"firestore_project_id":            c.FirestoreProjectID,
		"firestore_credentials_file":      c.FirestoreCredentialsFile,
		"gemini_api_key":                  c.GeminiAPIKey,
		"gemini_model":                    c.GeminiModel,
		"oidc_issuer_url":                 c.OIDCIssuerURL,
		"oidc_client_id":                  c.OIDCClientID,
		"oidc_client_secret":              c.OIDCClientSecret,
		"sms_gateway_url":                 c.SMSGatewayURL,
		"sms_api_key":                     c.SMSAPIKey,
		"sms_sender":                      c.SMSSender,
		"smtp_host":                       c.SMTPHost,
		"smtp_port":                       c.SMTPPort,
		"smtp_user":                       c.SMTPUser,
		"smtp_password":                   c.SMTPPassword,
		"mail_from":                       c.MailFrom,
		"log_format":                      c.LogFormat,
		"log_level":                       c.LogLevel,
	}
}

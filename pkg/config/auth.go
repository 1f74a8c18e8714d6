package config

// JwtConfig holds the token verification settings
type JwtConfig struct {
	Secret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

// GateConfig holds the authentication gate settings
type GateConfig struct {
	// WebClientType is the client-type value that marks a browser client;
	// web clients are exempt from device binding
	WebClientType string `env:"WEB_CLIENT_TYPE" env-default:"web"`
}

// SMTPConfig holds email delivery settings for device alerts
type SMTPConfig struct {
	Enabled  bool   `env:"SMTP_ENABLED" env-default:"false"`
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"no-reply@ogrenly.example"`
}

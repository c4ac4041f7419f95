package config

import "os"

// Config holds everything the server needs. It is built once in main and
// passed to collaborators by reference; nothing reads the environment after
// startup.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	// BaseURL is the public URL of the intake form, used to build resume links.
	BaseURL string

	// IntakeFormSlug selects which intake form template is active.
	IntakeFormSlug string

	CORSOrigins string

	ConsultantEmail    string
	ConsultantPassword string
	JWTSecret          string

	AI     AIConfig
	Mail   MailConfig
	Render RenderConfig
}

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Eval is for per-answer quality evaluation (needs to be fast)
	Eval string `json:"eval"`

	// Case is for business-case generation at finalize (quality over speed)
	Case string `json:"case"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

// MailConfig holds settings for the Resend-style email API
type MailConfig struct {
	APIKey    string `json:"-"`
	BaseURL   string `json:"baseUrl"`
	From      string `json:"from"`
	TimeoutMS int    `json:"timeoutMs"`
}

// IsEnabled returns true if the email API is configured
func (c *MailConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// RenderConfig holds settings for the HTML-to-PDF render service
type RenderConfig struct {
	BaseURL   string `json:"baseUrl"`
	TimeoutMS int    `json:"timeoutMs"`
}

// IsEnabled returns true if a render service is configured
func (c *RenderConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Load builds the config from the environment with local-dev defaults
func Load() *Config {
	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "casepilot"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:3000"),
		IntakeFormSlug: getEnv("INTAKE_FORM", "default"),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "*"),

		ConsultantEmail:    getEnv("CONSULTANT_EMAIL", "admin@casepilot.local"),
		ConsultantPassword: getEnv("CONSULTANT_PASSWORD", "password123"),
		JWTSecret:          getEnv("JWT_SECRET", "super-secret-key-change-in-production"),

		AI: AIConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
			Models: GeminiModels{
				Eval: getEnv("GEMINI_MODEL_EVAL", "gemini-2.5-flash-preview-05-20"),
				Case: getEnv("GEMINI_MODEL_CASE", "gemini-2.0-flash"),
			},
			TimeoutMS: 10000,
		},
		Mail: MailConfig{
			APIKey:    os.Getenv("RESEND_API_KEY"),
			BaseURL:   getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			From:      getEnv("MAIL_FROM", "CasePilot <hello@casepilot.local>"),
			TimeoutMS: 10000,
		},
		Render: RenderConfig{
			BaseURL:   os.Getenv("RENDER_BASE_URL"),
			TimeoutMS: 30000,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

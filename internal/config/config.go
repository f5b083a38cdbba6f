package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port          int
	AppEnv        string
	LogLevel      string
	JWTSecret     string
	DatabaseURL   string
	EncryptionKey string
	CORSOrigins   []string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	PaymentLocation    *time.Location
	PaymentWindowStart int
	PaymentWindowEnd   int
	MobileLocation     *time.Location
	MobileWindowStart  int
	MobileWindowEnd    int

	OTPTTL        time.Duration
	OTPStore      string // memory | postgres
	OTPExposeCode bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadDir           string
}

// IsDevelopment reports whether internal error detail may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// SMTPConfigured reports whether outbound mail can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// CloudinaryConfigured reports whether uploads go to Cloudinary instead of disk.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads a .env file when present, then configuration from environment
// variables with sensible defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encKey := getEnv("ENCRYPTION_KEY", "")
	if encKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required (must be exactly 32 bytes)")
	}
	if len(encKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(encKey))
	}

	paymentLoc, err := getLocation("PAYMENT_TIMEZONE", "Asia/Kolkata")
	if err != nil {
		return nil, err
	}
	mobileLoc, err := getLocation("MOBILE_TIMEZONE", "Local")
	if err != nil {
		return nil, err
	}

	otpTTL, err := time.ParseDuration(getEnv("OTP_TTL", "10m"))
	if err != nil || otpTTL <= 0 {
		return nil, fmt.Errorf("OTP_TTL must be a positive duration")
	}

	otpStore := getEnv("OTP_STORE", "memory")
	if otpStore != "memory" && otpStore != "postgres" {
		return nil, fmt.Errorf("OTP_STORE must be memory or postgres, got %q", otpStore)
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	appEnv := getEnv("APP_ENV", "development")

	return &Config{
		Port:          getInt("PORT", 5000),
		AppEnv:        appEnv,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     jwtSecret,
		DatabaseURL:   dbURL,
		EncryptionKey: encKey,
		CORSOrigins:   origins,

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", ""),

		PaymentLocation:    paymentLoc,
		PaymentWindowStart: getInt("PAYMENT_WINDOW_START", 10),
		PaymentWindowEnd:   getInt("PAYMENT_WINDOW_END", 11),
		MobileLocation:     mobileLoc,
		MobileWindowStart:  getInt("MOBILE_WINDOW_START", 10),
		MobileWindowEnd:    getInt("MOBILE_WINDOW_END", 13),

		OTPTTL:        otpTTL,
		OTPStore:      otpStore,
		OTPExposeCode: getBool("OTP_EXPOSE_CODE", appEnv == "development"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getLocation(key, fallback string) (*time.Location, error) {
	name := getEnv(key, fallback)
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s: unknown time zone %q: %w", key, name, err)
	}
	return loc, nil
}

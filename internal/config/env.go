package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// MpesaEnv groups gateway settings. Driver selects the live client
// ("daraja") or the deterministic simulator ("simulator").
type MpesaEnv struct {
	Driver         string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

type Env struct {
	AppAddr   string
	GinMode   string
	DBUser    string
	DBPass    string
	DBHost    string
	DBName    string
	JWTSecret string
	Mpesa     MpesaEnv
}

func LoadEnv() Env {
	return Env{
		AppAddr:   getEnv("APP_ADDR", ":8080"),
		GinMode:   getEnv("GIN_MODE", ""),
		DBUser:    getEnv("DB_USER", "root"),
		DBPass:    getEnv("DB_PASS", ""),
		DBHost:    getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:    getEnv("DB_NAME", "jamii"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		Mpesa: MpesaEnv{
			Driver:         getEnv("MPESA_DRIVER", "simulator"),
			BaseURL:        getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
			ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", ""),
			ShortCode:      getEnv("MPESA_SHORTCODE", "174379"),
			Passkey:        getEnv("MPESA_PASSKEY", ""),
			CallbackURL:    getEnv("MPESA_CALLBACK_URL", "http://localhost:8080/api/payments/mpesa/callback"),
			Timeout:        getSeconds("MPESA_TIMEOUT_SECONDS", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getSeconds(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

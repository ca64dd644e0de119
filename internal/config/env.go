package config

import (
	"log"
	"os"
	"strings"
)

// Env is the process configuration, read once at startup. DBDSN and JWTSecret
// are required; missing them is a fatal startup error. TranslateAPIKey is
// optional: without it error messages are shown untranslated.
type Env struct {
	AppAddr         string
	GinMode         string
	DBDSN           string
	JWTSecret       string
	TranslateAPIKey string
	TranslateURL    string
	CORSOrigins     []string
}

func LoadEnv() Env {
	env := Env{
		AppAddr:         getenv("APP_ADDR", ":8080"),
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:           strings.TrimSpace(os.Getenv("DB_DSN")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TranslateAPIKey: strings.TrimSpace(os.Getenv("TRANSLATE_API_KEY")),
		TranslateURL:    getenv("TRANSLATE_URL", "https://api-free.deepl.com/v2/translate"),
	}

	if env.DBDSN == "" {
		log.Fatal("DB_DSN não definido: configure a conexão com o banco antes de iniciar")
	}
	if env.JWTSecret == "" {
		log.Fatal("JWT_SECRET não definido: configure a chave de assinatura antes de iniciar")
	}

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	} else {
		env.CORSOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}

	return env
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

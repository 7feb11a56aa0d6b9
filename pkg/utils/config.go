package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type AuthConfig struct {
	JWTSecret   string        `toml:"jwt_secret"`
	JWTIssuer   string        `toml:"jwt_issuer"`
	JWTDuration time.Duration `toml:"-"`
	JWTTTLHours int           `toml:"jwt_ttl_hours"`
}

type AniListConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AppName      string `toml:"app_name"`
}

type Config struct {
	Addr    string        `toml:"addr"`
	Auth    AuthConfig    `toml:"auth"`
	AniList AniListConfig `toml:"anilist"`
}

func LoadConfig() Config {
	cfg := Config{
		Addr: envOr("ANIMETRACK_ADDR", ":8080"),
		Auth: AuthConfig{
			// dev default (change for demo / production)
			JWTSecret:   envOr("ANIMETRACK_JWT_SECRET", "dev-secret-change-me"),
			JWTIssuer:   envOr("ANIMETRACK_JWT_ISSUER", "animetrack"),
			JWTTTLHours: 24,
		},
		AniList: AniListConfig{
			ClientID:     envOr("ANILIST_CLIENT_ID", ""),
			ClientSecret: envOr("ANILIST_CLIENT_SECRET", ""),
			RedirectURI:  envOr("ANILIST_REDIRECT_URI", "http://127.0.0.1:8080/api/anilist/callback"),
			AppName:      envOr("ANILIST_APP_NAME", "animetrack/0.1"),
		},
	}

	if ttl := os.Getenv("ANIMETRACK_JWT_TTL_HOURS"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n > 0 {
			cfg.Auth.JWTTTLHours = n
		}
	}

	// optional TOML file override, values in the file win over env
	if path := os.Getenv("ANIMETRACK_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Printf("[config] %v, using env/defaults", err)
		}
	}

	cfg.Auth.JWTDuration = time.Duration(cfg.Auth.JWTTTLHours) * time.Hour
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

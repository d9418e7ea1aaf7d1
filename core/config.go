package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		APIHost         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	StorageConfig struct {
		Backend     string // inmem | file | redis | postgres
		DataDir     string
		RedisAddr   string
		RedisDB     int
		PostgresDSN string
	}

	SheetsConfig struct {
		WebhookURL    string
		APIKey        string
		SpreadsheetID string
		Timeout       time.Duration
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		Build    string

		AppName    string
		ClassName  string
		Department string

		DefaultFromEmail mail.Address
		ReportRecipients []string
		SendgridApiKey   string
		RollbarToken     string

		Server  ServerConfig
		Storage StorageConfig
		Sheets  SheetsConfig
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Rollcall")
	conf.SetDefault("className", "III-I CSE-B")
	conf.SetDefault("department", "Department of Computer Science & Engineering")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("reportRecipients", []string{})
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.apiHost", "0.0.0.0:8000")
	conf.SetDefault("server.debugHost", "0.0.0.0:4000")
	conf.SetDefault("server.readTimeout", 5*time.Second)
	conf.SetDefault("server.writeTimeout", 5*time.Second)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("storage.backend", "file")
	conf.SetDefault("storage.dataDir", filepath.Join(Getwd(), "data"))
	conf.SetDefault("storage.redisAddr", "localhost:6379")
	conf.SetDefault("storage.redisDB", 0)
	conf.SetDefault("storage.postgresDSN", "")
	conf.SetDefault("sheets.webhookURL", "")
	conf.SetDefault("sheets.apiKey", "")
	conf.SetDefault("sheets.spreadsheetID", "")
	conf.SetDefault("sheets.timeout", 10*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetDefault("env", env)
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:              conf.GetString("env"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		ClassName:        conf.GetString("className"),
		Department:       conf.GetString("department"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		ReportRecipients: conf.GetStringSlice("reportRecipients"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            conf.GetString("server.host"),
			APIHost:         conf.GetString("server.apiHost"),
			DebugHost:       conf.GetString("server.debugHost"),
			ReadTimeout:     conf.GetDuration("server.readTimeout"),
			WriteTimeout:    conf.GetDuration("server.writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
		},
		Storage: StorageConfig{
			Backend:     conf.GetString("storage.backend"),
			DataDir:     conf.GetString("storage.dataDir"),
			RedisAddr:   conf.GetString("storage.redisAddr"),
			RedisDB:     conf.GetInt("storage.redisDB"),
			PostgresDSN: conf.GetString("storage.postgresDSN"),
		},
		Sheets: SheetsConfig{
			WebhookURL:    conf.GetString("sheets.webhookURL"),
			APIKey:        conf.GetString("sheets.apiKey"),
			SpreadsheetID: conf.GetString("sheets.spreadsheetID"),
			Timeout:       conf.GetDuration("sheets.timeout"),
		},
	}
}

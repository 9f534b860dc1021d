package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Grading  GradingConfig
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Storage       string // postgres | memory
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	GradingConfig struct {
		DefaultDailyWeight   decimal.Decimal
		DefaultMidtermWeight decimal.Decimal
		DefaultFinalWeight   decimal.Decimal
		// ImportPassword is given to parent and student accounts created by a student import.
		ImportPassword string
	}
)

func (dbc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

// NewConfig reads the configuration from the environment, optionally seeded by config/.env.<env>.
// Variables are prefixed by the environment name, e.g. DEV_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Presensi Nilai")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("secretKey", "9v#k2m!q0z$w-lf3&x7h(p)r8+e4n=tc@b1d6ya5s^ug")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.storage", StoragePostgres)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "presensi_nilai")
	v.SetDefault("database.user", "presensi")
	v.SetDefault("database.password", "presensi")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("grading.defaultDailyWeight", "40")
	v.SetDefault("grading.defaultMidtermWeight", "30")
	v.SetDefault("grading.defaultFinalWeight", "30")
	v.SetDefault("grading.importPassword", "temp123")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Storage:       strings.ToLower(v.GetString("database.storage")),
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Grading: GradingConfig{
			DefaultDailyWeight:   mustDecimal(v, "grading.defaultDailyWeight"),
			DefaultMidtermWeight: mustDecimal(v, "grading.defaultMidtermWeight"),
			DefaultFinalWeight:   mustDecimal(v, "grading.defaultFinalWeight"),
			ImportPassword:       v.GetString("grading.importPassword"),
		},
	}
}

func mustDecimal(v *viper.Viper, key string) decimal.Decimal {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		log.Fatalf("config.%s: %v", key, err)
	}
	return d
}

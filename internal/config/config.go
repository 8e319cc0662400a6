// Package config loads the service settings: secrets and addresses from the
// environment (optionally a .env file), solver and channel defaults from an
// ini file.
package config

import (
	"errors"
	"os"
	"runtime"

	film "Annular/internal/calc/film"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const DefaultPath = "conf/annular.ini"

type Config struct {
	Addr     string
	TLSCert  string
	TLSKey   string
	LogLevel string

	TokenKey    string
	DatabaseURL string

	Channel film.Channel
	Options film.Options
}

// Load reads .env (if present), then the ini file named by ANNULAR_CONFIG or
// path. A missing ini file leaves every setting at its default.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if p := os.Getenv("ANNULAR_CONFIG"); p != "" {
		path = p
	}

	file := ini.Empty()
	if path != "" {
		f, err := ini.Load(path)
		switch {
		case err == nil:
			file = f
		case errors.Is(err, os.ErrNotExist):
			log.WithField("path", path).Info("config file not found, using defaults")
		default:
			return Config{}, err
		}
	}

	cfg, err := parse(file)
	if err != nil {
		return Config{}, err
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.TokenKey = os.Getenv("TOKEN_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if v := os.Getenv("TLS_CERT"); v != "" {
		cfg.TLSCert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		cfg.TLSKey = v
	}
	return cfg, nil
}

func parse(file *ini.File) (Config, error) {
	server := file.Section("server")
	channel := file.Section("channel")
	solver := file.Section("solver")

	friction, err := film.ParseCorrelation(solver.Key("Friction").MustString(string(film.Blasius)))
	if err != nil {
		return Config{}, err
	}
	policy, err := film.ParsePolicy(solver.Key("Policy").MustString(string(film.PolicyAbort)))
	if err != nil {
		return Config{}, err
	}

	gravity := channel.Key("Gravity").MustFloat64(film.DefaultGravity)

	return Config{
		Addr:     server.Key("Addr").MustString(":8080"),
		TLSCert:  server.Key("TLSCert").String(),
		TLSKey:   server.Key("TLSKey").String(),
		LogLevel: server.Key("LogLevel").MustString("info"),
		Channel: film.Channel{
			Diameter: channel.Key("Diameter").MustFloat64(0.01),
			Gravity:  &gravity,
			Friction: friction,
		},
		Options: film.Options{
			Epsilon: solver.Key("Epsilon").MustFloat64(film.DefaultEpsilon),
			Tolerance: film.Tolerance{
				XTol:    solver.Key("XTol").MustFloat64(film.DefaultTolerance.XTol),
				RTol:    solver.Key("RTol").MustFloat64(film.DefaultTolerance.RTol),
				MaxIter: solver.Key("MaxIter").MustInt(film.DefaultTolerance.MaxIter),
			},
			Policy:  policy,
			Workers: solver.Key("Workers").MustInt(runtime.NumCPU()),
		},
	}, nil
}

// SetupLogging applies the configured logrus level.
func (c Config) SetupLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

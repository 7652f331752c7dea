package config

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/small-engineer/go-todo-serv/internal/infra/mail"
)

const (
	DevEnvFile = ".env.dev"

	defaultPort     = "4000"
	defaultDriver   = "mysql"
	defaultLogLevel = "info"
)

// DriverMemory keeps users and todos in process memory; it needs no DSN.
const DriverMemory = "memory"

type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	JWTSecret     string
	RedisURL      string
	LogLevel      string
	StatusMapping bool
	Mail          mail.Config
}

// LoadDevEnv copies KEY=VALUE lines from path into the environment. Variables
// already set win. A missing file is not an error.
func LoadDevEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := envLine(sc.Text())
		if !ok || os.Getenv(k) != "" {
			continue
		}
		os.Setenv(k, v)
	}
}

// envLine parses one dotenv line, skipping blanks, comments and lines
// without a key.
func envLine(ln string) (string, string, bool) {
	ln = strings.TrimSpace(ln)
	if ln == "" || ln[0] == '#' {
		return "", "", false
	}
	ln = strings.TrimPrefix(ln, "export ")
	k, v, ok := strings.Cut(ln, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", false
	}
	return k, unquote(strings.TrimSpace(v)), true
}

// unquote drops one pair of matching single or double quotes around v.
func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	if q := v[0]; (q == '"' || q == '\'') && v[len(v)-1] == q {
		return v[1 : len(v)-1]
	}
	return v
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	c := Config{
		Port:     getenv("PORT", defaultPort),
		DBDriver: getenv("DB_DRIVER", defaultDriver),
		RedisURL: os.Getenv("REDIS_URL"),
		LogLevel: getenv("LOG_LEVEL", defaultLogLevel),
		Mail: mail.Config{
			Host: os.Getenv("SMTP_HOST"),
			Port: os.Getenv("SMTP_PORT"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: os.Getenv("SMTP_FROM"),
		},
	}

	c.JWTSecret = getenv("JWT_SECRET", os.Getenv("PRIVATE_KEY"))
	if c.JWTSecret == "" {
		return Config{}, errors.New("env JWT_SECRET is not set")
	}

	if v := os.Getenv("STATUS_MAPPING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("env STATUS_MAPPING: %w", err)
		}
		c.StatusMapping = b
	}

	dsn, err := dbDSN(c.DBDriver)
	if err != nil {
		return Config{}, err
	}
	c.DBDSN = dsn
	return c, nil
}

// dbDSN resolves the data source for driver. Every MySQL source, whether
// given whole in DB_DSN or built from the DB_HOST family, has
// clientFoundRows set so RowsAffected counts matched rows.
func dbDSN(driver string) (string, error) {
	if driver == DriverMemory {
		return "", nil
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		if driver != defaultDriver {
			return v, nil
		}
		mc, err := mysql.ParseDSN(v)
		if err != nil {
			return "", fmt.Errorf("env DB_DSN: %w", err)
		}
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil
	}
	if driver != defaultDriver {
		return "", fmt.Errorf("env DB_DSN is required for driver %s", driver)
	}

	var missing []string
	need := func(k string) string {
		v := os.Getenv(k)
		if v == "" {
			missing = append(missing, k)
		}
		return v
	}
	host := need("DB_HOST")
	port := getenv("DB_PORT", "3306")
	user := need("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := need("DB_NAME")
	if len(missing) > 0 {
		return "", fmt.Errorf("env %s is not set", strings.Join(missing, ", "))
	}

	mc := mysql.NewConfig()
	mc.User = user
	mc.Passwd = pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, port)
	mc.DBName = name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Collation = "utf8mb4_unicode_ci"
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN(), nil
}

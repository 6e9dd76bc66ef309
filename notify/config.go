package notify

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment keys holding the delivery settings. All six are required.
const (
	EnvFrom     = "EMAIL_FROM"
	EnvTo       = "EMAIL_TO"
	EnvHost     = "SMTP_HOST"
	EnvPort     = "SMTP_PORT"
	EnvUser     = "SMTP_USER"
	EnvPassword = "SMTP_PASSWORD"
)

// RequiredKeys lists the delivery keys in the order they are reported when missing.
var RequiredKeys = []string{EnvFrom, EnvTo, EnvHost, EnvPort, EnvUser, EnvPassword}

// Config holds the delivery parameters. It is usable only as a whole.
type Config struct {
	From     string
	To       string // comma-separated
	Host     string
	Port     string
	User     string
	Password string
}

// ConfigFromEnv reads the delivery parameters from the process environment.
func ConfigFromEnv() Config {
	return ConfigFromLookup(os.Getenv)
}

// ConfigFromLookup reads the delivery parameters through get.
func ConfigFromLookup(get func(string) string) Config {
	return Config{
		From:     get(EnvFrom),
		To:       get(EnvTo),
		Host:     get(EnvHost),
		Port:     get(EnvPort),
		User:     get(EnvUser),
		Password: get(EnvPassword),
	}
}

// Missing returns the names of required keys that are empty.
func (c Config) Missing() []string {
	values := map[string]string{
		EnvFrom:     c.From,
		EnvTo:       c.To,
		EnvHost:     c.Host,
		EnvPort:     c.Port,
		EnvUser:     c.User,
		EnvPassword: c.Password,
	}
	var missing []string
	for _, key := range RequiredKeys {
		if strings.TrimSpace(values[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// PortNumber parses Port.
func (c Config) PortNumber() (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid %s %q", EnvPort, c.Port)
	}
	return port, nil
}

// Recipients splits To on commas, trimming blanks and dropping empty entries.
func (c Config) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(c.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

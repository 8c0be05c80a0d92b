package support

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const EnvPrefix = "COUNTER_"

type TraceExporter string

const (
	NoTracing      TraceExporter = "none"
	ConsoleTracing TraceExporter = "console"
	OTLPTracing    TraceExporter = "otlp"
	JaegerTracing  TraceExporter = "jaeger"
)

type Config struct {
	Address    string
	LogLevel   string
	ConsoleLog bool

	TraceExporter  TraceExporter
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	OTLPInsecure   bool
	JaegerEndpoint string

	// RateLimit is commands per second per client. Zero disables throttling.
	RateLimit float64
	RateBurst int

	WriteTimeout    time.Duration
	ExecuteAttempts uint
}

func DefaultConfig() Config {
	return Config{
		Address:         ":9080",
		LogLevel:        "info",
		TraceExporter:   NoTracing,
		OTLPEndpoint:    "localhost:4317",
		JaegerEndpoint:  "http://localhost:14268/api/traces",
		RateLimit:       0,
		RateBurst:       20,
		WriteTimeout:    10 * time.Second,
		ExecuteAttempts: 10,
	}
}

// Load reads the configuration from COUNTER_ prefixed environment variables.
// Variables in files (".env" when none are given) fill in anything not already
// set in the environment; a missing file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "failed to read %s", file)
		}
	}

	cfg := DefaultConfig()
	env := environment{}

	env.string("ADDRESS", &cfg.Address)
	env.string("LOG_LEVEL", &cfg.LogLevel)
	env.bool("CONSOLE_LOG", &cfg.ConsoleLog)

	var exporter string
	if env.string("TRACE_EXPORTER", &exporter) {
		cfg.TraceExporter = TraceExporter(strings.ToLower(exporter))
	}
	env.string("OTLP_ENDPOINT", &cfg.OTLPEndpoint)
	env.bool("OTLP_INSECURE", &cfg.OTLPInsecure)
	env.string("JAEGER_ENDPOINT", &cfg.JaegerEndpoint)

	var headers string
	if env.string("OTLP_HEADERS", &headers) {
		parsed, err := ParseHeaders(headers)
		if err != nil {
			env.fail("OTLP_HEADERS", err)
		}
		cfg.OTLPHeaders = parsed
	}

	env.float("RATE_LIMIT", &cfg.RateLimit)
	env.int("RATE_BURST", &cfg.RateBurst)
	env.duration("WRITE_TIMEOUT", &cfg.WriteTimeout)
	env.uint("EXECUTE_ATTEMPTS", &cfg.ExecuteAttempts)

	if env.err != nil {
		return Config{}, env.err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.TraceExporter {
	case NoTracing, ConsoleTracing, OTLPTracing, JaegerTracing:
	default:
		return errors.Errorf("unknown trace exporter %q", c.TraceExporter)
	}

	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return errors.New("rate burst must be positive when rate limiting")
	}
	if c.ExecuteAttempts == 0 {
		return errors.New("execute attempts must be positive")
	}

	return nil
}

// ParseHeaders reads "key=value,key=value" pairs.
func ParseHeaders(value string) (map[string]string, error) {
	headers := map[string]string{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		key, val, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Errorf("malformed header %q", pair)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}

	return headers, nil
}

// environment records the first malformed variable it sees.
type environment struct {
	err error
}

func (e *environment) lookup(name string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (e *environment) fail(name string, err error) {
	if e.err == nil {
		e.err = errors.Wrapf(err, "invalid %s%s", EnvPrefix, name)
	}
}

func (e *environment) string(name string, target *string) bool {
	value, ok := e.lookup(name)
	if ok {
		*target = value
	}
	return ok
}

func (e *environment) bool(name string, target *bool) {
	if value, ok := e.lookup(name); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			e.fail(name, err)
			return
		}
		*target = parsed
	}
}

func (e *environment) int(name string, target *int) {
	if value, ok := e.lookup(name); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			e.fail(name, err)
			return
		}
		*target = parsed
	}
}

func (e *environment) uint(name string, target *uint) {
	if value, ok := e.lookup(name); ok {
		parsed, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			e.fail(name, err)
			return
		}
		*target = uint(parsed)
	}
}

func (e *environment) float(name string, target *float64) {
	if value, ok := e.lookup(name); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			e.fail(name, err)
			return
		}
		*target = parsed
	}
}

func (e *environment) duration(name string, target *time.Duration) {
	if value, ok := e.lookup(name); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			e.fail(name, err)
			return
		}
		*target = parsed
	}
}

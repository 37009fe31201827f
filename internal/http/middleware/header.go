package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultHeaderName  = "x-wasm-custom"
	DefaultHeaderValue = "istio-plugin-example"
)

// ParseHeaderConfig splits a "name:value" setting at the first colon.
// ok is false when raw is empty or malformed, in which case the defaults are returned.
func ParseHeaderConfig(raw string) (name, value string, ok bool) {
	if i := strings.IndexByte(raw, ':'); i > 0 {
		return raw[:i], raw[i+1:], true
	}
	return DefaultHeaderName, DefaultHeaderValue, false
}

// InjectHeader adds the configured header to every inbound request before the
// rest of the chain sees it.
func InjectHeader(raw string, log zerolog.Logger) fiber.Handler {
	name, value, ok := ParseHeaderConfig(raw)
	if !ok && raw != "" {
		log.Warn().Str("config", raw).Msg("invalid header config, expected name:value")
	}
	log.Info().Str("header_name", name).Str("header_value", value).Msg("header_injection_configured")

	return func(c *fiber.Ctx) error {
		c.Request().Header.Add(name, value)
		return c.Next()
	}
}

package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// BirthDateKey is the attribute key under which birth dates are logged.
// Values under this key are always masked; reference dates are not.
const BirthDateKey = "birth_date"

// DefaultRedactOptions returns the masq options applied to every handler
// built by this package. Credentials and birth dates are masked.
//
// Extra rules can be appended:
//
//	opts := append(logging.DefaultRedactOptions(), masq.WithFieldName("ssn"))
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(credentialFields)+len(birthDateFields)+5)

	for _, name := range credentialFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range birthDateFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	)
}

var credentialFields = []string{
	"password",
	"secret",
	"token",
	"apiKey",
	"apikey",
	"api_key",
	"accessToken",
	"access_token",
	"refreshToken",
	"refresh_token",
	"credential",
	"credentials",
	"authorization",
	"auth",
	"bearer",
	"cookie",
	"session",
	"privateKey",
	"private_key",
	"secretKey",
	"secret_key",
}

var birthDateFields = []string{
	BirthDateKey,
	"birthDate",
	"dob",
}

// NewReplaceAttr builds an slog ReplaceAttr func from DefaultRedactOptions
// plus any extra options.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}

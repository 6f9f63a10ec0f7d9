package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var ownFlags = []string{"-a", "-l", "-d", "-s", "-m", "-t", "-r", "-b", "-mail"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-l string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-m string   mode: development or production
//	-t int      access token validity, minutes (0 = mode preset)
//	-r int      refresh token validity, minutes (0 = mode preset)
//	-b string   storage backend: postgres, mongo or memory
//	-mail string mail transport: log, smtp or kafka
//
// Other arguments are filtered out first so -c/-config can coexist.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Mode, "m", config.Mode, "mode (development|production)")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (postgres|mongo|memory)")
	fs.StringVar(&config.MailTransport, "mail", config.MailTransport, "mail transport (log|smtp|kafka)")

	access := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refresh := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	// durations only change when given, so sub-minute file values survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*access) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refresh) * time.Minute
		}
	})
	return nil
}

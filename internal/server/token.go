package server

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/metakeeper/internal/server/auth"
	"github.com/dmitrijs2005/metakeeper/internal/server/config"
)

// IssueToken handles the "token" subcommand: it signs an access token for
// -user with the configured secret and prints it to w.
func IssueToken(w io.Writer, args []string, c *config.Config) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	userID := fs.String("user", "", "user id to embed in the token")
	ttl := fs.Duration("ttl", c.AccessTokenValidityDuration, "token lifetime")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if *userID == "" {
		return fmt.Errorf("token: -user is required")
	}
	if *ttl <= 0 {
		return fmt.Errorf("token: -ttl must be positive")
	}

	token, err := auth.GenerateToken(*userID, []byte(c.SecretKey), *ttl)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n# expires %s\n", token, time.Now().Add(*ttl).UTC().Format(time.RFC3339))
	return err
}

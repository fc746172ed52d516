package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/course"
	"github.com/vyomadl/vyoma-dl/database"
	"github.com/vyomadl/vyoma-dl/logger"
	"github.com/vyomadl/vyoma-dl/session"
)

// app is a logged-in session plus what the commands build on it.
type app struct {
	session  *session.Session
	resolver *course.Resolver
	logger   logger.Logger
}

// login resolves credentials, signs in, and offers to save prompted
// credentials once they are known to work.
func login(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	l := logger.FromContext(ctx)
	cfg := config.C()

	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	credsFile := config.CredentialsFile()
	creds, prompted, err := resolveCredentials(p, credsFile)
	if err != nil {
		return nil, err
	}

	client, err := session.NewHTTPClient(session.TransportOptions{
		Proxy:     cfg.HTTP.Proxy,
		RateLimit: cfg.HTTP.RateLimit,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.TimeoutDuration(),
	})
	if err != nil {
		return nil, err
	}
	s, err := session.New(creds,
		session.WithBaseURL(cfg.Site.BaseURL),
		session.WithClient(client),
		session.WithLogger(l),
	)
	if err != nil {
		return nil, err
	}
	if ok, err := s.Login(ctx); !ok {
		return nil, fmt.Errorf("could not sign in: %w", err)
	}
	if prompted {
		if err := offerToSave(p, credsFile, creds); err != nil {
			l.Warn("Failed to save credentials", "error", err)
		}
	}

	r, err := course.NewResolver(s, s.HomeURL(), cfg.DownloadRoot(creds.Username), l)
	if err != nil {
		return nil, err
	}
	return &app{session: s, resolver: r, logger: l}, nil
}

// openHistory opens the run history database. ok is false when history
// is disabled or unavailable; the failure is only logged.
func openHistory(ctx context.Context) (ok bool) {
	path := config.C().DB.Path
	if path == "" {
		return false
	}
	if err := database.Init(ctx, path); err != nil {
		log.FromContext(ctx).Warn("Run history unavailable", "error", err)
		return false
	}
	return true
}

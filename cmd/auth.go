package cmd

import (
	"context"
	"fmt"

	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/youtube"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize YouTube (and Gmail) access ahead of a run",
	Long: `Run the OAuth consent flow and cache the tokens, so that a later
'conference-clipper run' starts uploading without waiting on a browser.

A cached token that is still valid, or can be refreshed, is reused.
The Gmail grant is requested only when notification.enabled is set.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

// TokenSource obtains a token for one OAuth configuration
type TokenSource func(ctx context.Context, cfg youtube.OAuthConfig) (*oauth2.Token, error)

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunAuthWithDependencies(cmd.Context(), cfg, youtube.Token, DefaultOutput)
}

// RunAuthWithDependencies runs the auth command with an injected token source
func RunAuthWithDependencies(ctx context.Context, cfg *config.Config, token TokenSource, out OutputWriter) error {
	type grant struct {
		name   string
		config youtube.OAuthConfig
	}

	grants := []grant{{"YouTube", youtubeOAuthConfig(cfg)}}
	if cfg.Notification.Enabled {
		grants = append(grants, grant{"Gmail", gmailOAuthConfig(cfg)})
	}

	for _, g := range grants {
		tok, err := token(ctx, g.config)
		if err != nil {
			return fmt.Errorf("%s authorization failed: %w", g.name, err)
		}
		fmt.Fprintf(out, "%s authorized, token cached in %s", g.name, g.config.TokenFile)
		if !tok.Expiry.IsZero() {
			fmt.Fprintf(out, " (expires %s)", tok.Expiry.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out)
	}

	return nil
}

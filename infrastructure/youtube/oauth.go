package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

const callbackPath = "/oauth2callback"

// ErrStateMismatch is returned when the OAuth callback carries a state we did not issue
var ErrStateMismatch = errors.New("oauth state mismatch")

// OAuthConfig holds the configuration for OAuth 2.0 authentication
type OAuthConfig struct {
	CredentialsFile string   // Path to OAuth client credentials JSON
	TokenFile       string   // Path to store/load token
	CallbackPort    int      // Local port receiving the redirect; 0 picks a free one
	Scopes          []string // Defaults to the YouTube upload scope

	// OpenBrowser shows the consent page. Defaults to the system browser.
	OpenBrowser func(url string)
	// Out receives the instructions printed for the user. Defaults to stdout.
	Out    io.Writer
	Logger zerolog.Logger
}

func (cfg *OAuthConfig) applyDefaults() {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{youtube.YoutubeUploadScope}
	}
	if cfg.OpenBrowser == nil {
		cfg.OpenBrowser = openBrowser
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
}

// Authorize returns an HTTP client authorized for cfg.Scopes, reusing the cached
// token when it is still valid or refreshable and running the browser flow otherwise
func Authorize(ctx context.Context, cfg OAuthConfig) (*http.Client, error) {
	config, token, err := authorize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return config.Client(ctx, token), nil
}

// Token runs the same steps as Authorize and returns the token itself
func Token(ctx context.Context, cfg OAuthConfig) (*oauth2.Token, error) {
	_, token, err := authorize(ctx, cfg)
	return token, err
}

func authorize(ctx context.Context, cfg OAuthConfig) (*oauth2.Config, *oauth2.Token, error) {
	cfg.applyDefaults()

	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}

	// Parse the OAuth client credentials
	config, err := google.ConfigFromJSON(b, cfg.Scopes...)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	token, err := getToken(ctx, config, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	return config, token, nil
}

// getToken retrieves a token from file or initiates the OAuth flow
func getToken(ctx context.Context, config *oauth2.Config, cfg OAuthConfig) (*oauth2.Token, error) {
	token, err := loadToken(cfg.TokenFile)
	if err == nil {
		// Check if token is still valid or can be refreshed
		newToken, err := config.TokenSource(ctx, token).Token()
		if err == nil {
			if newToken.AccessToken != token.AccessToken {
				if err := saveToken(cfg.TokenFile, newToken); err != nil {
					cfg.Logger.Warn().Err(err).Str("file", cfg.TokenFile).Msg("couldn't save refreshed token")
				}
			}
			return newToken, nil
		}
		cfg.Logger.Info().Err(err).Msg("cached token can't be refreshed, re-authenticating")
	}

	return getTokenFromWeb(ctx, config, cfg)
}

// loadToken loads a token from a file
func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken saves a token to a file readable only by its owner
func saveToken(file string, token *oauth2.Token) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// getTokenFromWeb initiates the OAuth flow via browser
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, cfg OAuthConfig) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("unable to listen for the OAuth callback: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	config.RedirectURL = fmt.Sprintf("http://localhost:%d%s", port, callbackPath)
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			sendErr(errChan, ErrStateMismatch)
			http.Error(w, "Error: unexpected state", http.StatusBadRequest)
		case q.Get("error") != "":
			sendErr(errChan, fmt.Errorf("authorization denied: %s", q.Get("error")))
			fmt.Fprintf(w, "Error: %s", q.Get("error"))
		case q.Get("code") == "":
			sendErr(errChan, fmt.Errorf("no code in callback"))
			fmt.Fprintf(w, "Error: No authorization code received")
		default:
			select {
			case codeChan <- q.Get("code"):
			default:
			}
			fmt.Fprintf(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>")
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			sendErr(errChan, err)
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(cfg.Out)
	fmt.Fprintln(cfg.Out, "Opening browser for Google authentication...")
	fmt.Fprintln(cfg.Out, "If the browser doesn't open, please visit this URL:")
	fmt.Fprintln(cfg.Out)
	fmt.Fprintln(cfg.Out, authURL)
	fmt.Fprintln(cfg.Out)

	cfg.OpenBrowser(authURL)

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		cfg.Logger.Warn().Err(err).Str("file", cfg.TokenFile).Msg("couldn't save token")
	}

	fmt.Fprintln(cfg.Out, "Authentication successful!")
	return token, nil
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.Command("xdg-open", url)
		} else if _, err := exec.LookPath("wslview"); err == nil {
			// WSL
			cmd = exec.Command("wslview", url)
		}
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}

	if cmd != nil {
		cmd.Start()
	}
}

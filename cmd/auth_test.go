package cmd

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/gmail"
	"conference-clipper/infrastructure/youtube"

	"golang.org/x/oauth2"
)

func TestRunAuthWithDependencies(t *testing.T) {
	cfg := config.Default()
	cfg.Notification.Enabled = true
	cfg.Notification.TokenFile = "mail.json"

	var seen []youtube.OAuthConfig
	token := func(ctx context.Context, oc youtube.OAuthConfig) (*oauth2.Token, error) {
		seen = append(seen, oc)
		return &oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)}, nil
	}
	var out bytes.Buffer

	if err := RunAuthWithDependencies(context.Background(), cfg, token, &out); err != nil {
		t.Fatalf("RunAuthWithDependencies() error = %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("token requests = %d, want 2", len(seen))
	}
	if seen[0].TokenFile != config.DefaultTokenFile || seen[0].Scopes != nil {
		t.Errorf("youtube grant = %+v", seen[0])
	}
	if seen[1].TokenFile != "mail.json" || !reflect.DeepEqual(seen[1].Scopes, []string{gmail.SendScope}) {
		t.Errorf("gmail grant = %+v", seen[1])
	}
	for _, want := range []string{"YouTube authorized", "Gmail authorized", "expires"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %q", want, out.String())
		}
	}
}

func TestRunAuthWithDependencies_Failure(t *testing.T) {
	cfg := config.Default()
	denied := errors.New("access_denied")
	token := func(ctx context.Context, oc youtube.OAuthConfig) (*oauth2.Token, error) {
		return nil, denied
	}

	err := RunAuthWithDependencies(context.Background(), cfg, token, &bytes.Buffer{})
	if !errors.Is(err, denied) {
		t.Errorf("error = %v, want access_denied", err)
	}
	if err == nil || !strings.HasPrefix(err.Error(), "YouTube authorization failed") {
		t.Errorf("error = %v, want YouTube prefix", err)
	}
}

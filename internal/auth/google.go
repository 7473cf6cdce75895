package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes are requested for every Google credential: events on the
// business calendar and rows in the customer sheet.
var Scopes = []string{gcal.CalendarScope, sheets.SpreadsheetsScope}

// ErrNoGoogleCredentials means neither a credentials file nor a stored
// OAuth token is available.
var ErrNoGoogleCredentials = errors.New("google backends need google.credentials_file or `apptagent auth google`")

// openBrowser is replaced in tests.
var openBrowser = func(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
	}
}

// RunGoogleOAuth performs the OAuth2 browser flow for Google Calendar and
// Sheets access. It starts a local HTTP server, opens the browser for user
// consent, and exchanges the authorization code for tokens.
func RunGoogleOAuth(ctx context.Context, clientID, clientSecret string) (*GoogleCredentials, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting local server: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	conf := oauthConfig(clientID, clientSecret, fmt.Sprintf("http://localhost:%d/callback", port))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errMsg := r.URL.Query().Get("error")
			if errMsg == "" {
				errMsg = "no authorization code received"
			}
			fmt.Fprintf(w, "<html><body><h2>Authorization failed</h2><p>%s</p><p>You can close this tab.</p></body></html>", errMsg)
			select {
			case errCh <- fmt.Errorf("OAuth callback error: %s", errMsg):
			default:
			}
			return
		}
		fmt.Fprint(w, "<html><body><h2>Authorization successful!</h2><p>You can close this tab and return to the terminal.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- fmt.Errorf("local server error: %w", err):
			default:
			}
		}
	}()
	defer server.Close()

	authURL := conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(os.Stderr, "\nOpening browser for Google authorization...\n")
	fmt.Fprintf(os.Stderr, "If the browser doesn't open, visit this URL:\n%s\n\n", authURL)
	openBrowser(authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out after 5 minutes")
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return &GoogleCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry.Format(time.RFC3339),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, nil
}

// NewGoogleTokenSource creates an auto-refreshing OAuth2 token source from stored credentials.
func NewGoogleTokenSource(ctx context.Context, creds *GoogleCredentials) oauth2.TokenSource {
	expiry, _ := time.Parse(time.RFC3339, creds.TokenExpiry)
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       expiry,
		TokenType:    "Bearer",
	}
	return oauthConfig(creds.ClientID, creds.ClientSecret, "").TokenSource(ctx, token)
}

// ClientOptions authenticates the Google API clients. A credentials file
// (service account or authorized user JSON) wins over a stored OAuth token.
func ClientOptions(ctx context.Context, credentialsFile string, stored *GoogleCredentials) ([]option.ClientOption, error) {
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading google credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("parsing google credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentials(creds)}, nil
	}
	if stored != nil && stored.RefreshToken != "" {
		return []option.ClientOption{option.WithTokenSource(NewGoogleTokenSource(ctx, stored))}, nil
	}
	return nil, ErrNoGoogleCredentials
}

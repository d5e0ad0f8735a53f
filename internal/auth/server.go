package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultCallbackPort serves the OAuth redirect on localhost
	DefaultCallbackPort = 8089
	// LoginTimeout is how long to wait for the user to approve access
	LoginTimeout = 5 * time.Minute
)

// CallbackURL is the redirect URL for a callback server on port
func CallbackURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

// Login runs the authorization code flow with a local callback server on
// port. The authorization URL is written to out for the user to open.
func Login(ctx context.Context, cfg *oauth2.Config, port int, out io.Writer) (*Result, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	codes := make(chan callback, 1)
	errs := make(chan error, 2)
	server := &http.Server{Handler: callbackHandler(state, codes, errs)}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			report(errs, fmt.Errorf("callback server: %w", err))
		}
	}()
	defer shutdownServer(server)

	fmt.Fprintf(out, "Open this URL to authorize ridelog with Strava:\n\n  %s\n\nWaiting for authorization...\n",
		AuthCodeURL(cfg, state))

	var cb callback
	select {
	case cb = <-codes:
	case err := <-errs:
		return nil, err
	case <-time.After(LoginTimeout):
		return nil, fmt.Errorf("no authorization after %v", LoginTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return &Result{Token: token, AthleteID: ExtractAthleteID(token), Scope: cb.scope}, nil
}

// callback is an accepted redirect
type callback struct {
	code  string
	scope string
}

// callbackHandler accepts one redirect carrying state, an auth code and
// the granted scopes
func callbackHandler(state string, codes chan<- callback, errs chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "State mismatch", http.StatusBadRequest)
			report(errs, errors.New("oauth state mismatch"))
		case q.Get("error") != "":
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			report(errs, fmt.Errorf("authorization denied: %s", q.Get("error")))
		case q.Get("code") == "":
			http.Error(w, "No authorization code", http.StatusBadRequest)
			report(errs, errors.New("no code in callback"))
		default:
			if err := CheckGrantedScope(q.Get("scope")); err != nil {
				http.Error(w, "Private activity access is required", http.StatusForbidden)
				report(errs, err)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "ridelog is authorized. You can close this window.")
			select {
			case codes <- callback{code: q.Get("code"), scope: q.Get("scope")}:
			default:
			}
		}
	})
	return mux
}

// report delivers err unless one is already pending
func report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

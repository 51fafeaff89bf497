package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	// CallbackPort is the port of the local OAuth redirect listener
	CallbackPort = 8089
	// LoginTimeout bounds how long the user has to approve access
	LoginTimeout = 5 * time.Minute
)

const successPage = `<!DOCTYPE html>
<html><head><title>loadwatch</title></head>
<body style="font-family: system-ui; text-align: center; margin-top: 20vh;">
<h1>Connected to Strava</h1><p>You can close this window.</p>
</body></html>`

// Login runs the authorization code flow with a local redirect listener.
// prompt receives the URL the user must open.
func Login(ctx context.Context, cfg *oauth2.Config, prompt func(authURL string)) (*Result, error) {
	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	codes := make(chan string, 1)
	errs := make(chan error, 2)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, codes, errs))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			trySend(errs, fmt.Errorf("callback server: %w", err))
		}
	}()
	defer shutdown(server)

	prompt(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-time.After(LoginTimeout):
		return nil, fmt.Errorf("no authorization received within %v", LoginTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &Result{Token: token, AthleteID: AthleteID(token)}, nil
}

func callbackHandler(state string, codes chan<- string, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			trySend(errs, errors.New("state mismatch in OAuth callback"))
			http.Error(w, "State mismatch", http.StatusBadRequest)
		case q.Get("error") != "":
			trySend(errs, fmt.Errorf("authorization denied: %s", q.Get("error")))
			http.Error(w, "Authorization failed", http.StatusBadRequest)
		case q.Get("code") == "":
			trySend(errs, errors.New("no code in OAuth callback"))
			http.Error(w, "No authorization code", http.StatusBadRequest)
		default:
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, successPage)
			trySend(codes, q.Get("code"))
		}
	}
}

// trySend drops v when nobody is waiting any more
func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutting down callback server")
	}
}

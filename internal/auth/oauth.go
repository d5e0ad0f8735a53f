// Package auth obtains and refreshes Strava OAuth tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const (
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"

	// ScopeActivityReadAll covers private rides and their streams
	ScopeActivityReadAll = "activity:read_all"
)

// Scopes requested at login. Strava expects them comma separated in a
// single value.
var Scopes = []string{"read," + ScopeActivityReadAll}

var (
	// ErrNoRefreshToken is returned when no login has been completed yet
	ErrNoRefreshToken = errors.New("no strava refresh token configured, run `ridelog strava login`")
	// ErrScopeDenied is returned when the athlete unticked private activity
	// access on the Strava consent page
	ErrScopeDenied = errors.New("strava access to private activities was not granted")
)

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewOAuthConfig creates an oauth2.Config for Strava. Strava reads the
// client credentials from the form body, not basic auth.
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthCodeURL is the Strava consent page for state. approval_prompt=force
// shows the scope checkboxes again for an athlete who authorized before,
// so a login after a declined scope can still grant it.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// CheckGrantedScope verifies the comma separated scope list Strava sends
// to the callback includes private activity access.
func CheckGrantedScope(granted string) error {
	for _, s := range strings.Split(granted, ",") {
		if strings.TrimSpace(s) == ScopeActivityReadAll {
			return nil
		}
	}
	if granted == "" {
		granted = "none"
	}
	return fmt.Errorf("%w (granted: %s); log in again and keep %q ticked",
		ErrScopeDenied, granted, "View data about your private activities")
}

// Result is the outcome of an interactive login
type Result struct {
	Token     *oauth2.Token
	AthleteID int64
	Scope     string
}

// ExtractAthleteID reads the athlete id Strava embeds in token responses
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

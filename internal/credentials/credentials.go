package credentials

import (
	"fmt"
	"strings"

	"github.com/teemow/assistant-tools/internal/logging"
)

// Environment variable names.
const (
	EnvUsername        = "FASTMAIL_USERNAME"
	EnvCalDAVPassword  = "FASTMAIL_CALDAV_PASSWORD"
	EnvAppPassword     = "FASTMAIL_APP_PASSWORD"
	EnvCardDAVPassword = "FASTMAIL_CARDDAV_PASSWORD"
)

// Credentials is a username/app-password pair for HTTP basic auth.
type Credentials struct {
	Username string
	Password string
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s (password %s)", c.Username, logging.SanitizeSecret(c.Password))
}

// MissingError reports which required variables were empty.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return strings.Join(e.Vars, " and ") + " must be set"
}

// ResolveCalDAV reads the CalDAV credentials. The CalDAV password falls back
// to FASTMAIL_APP_PASSWORD.
func ResolveCalDAV(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		Username: getenv(EnvUsername),
		Password: getenv(EnvCalDAVPassword),
	}
	if creds.Password == "" {
		creds.Password = getenv(EnvAppPassword)
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, &MissingError{Vars: []string{EnvUsername, EnvCalDAVPassword}}
	}
	return creds, nil
}

// ResolveCardDAV reads the CardDAV credentials. Each missing variable is
// reported on its own, username first.
func ResolveCardDAV(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		Username: getenv(EnvUsername),
		Password: getenv(EnvCardDAVPassword),
	}
	if creds.Username == "" {
		return Credentials{}, &MissingError{Vars: []string{EnvUsername}}
	}
	if creds.Password == "" {
		return Credentials{}, &MissingError{Vars: []string{EnvCardDAVPassword}}
	}
	return creds, nil
}

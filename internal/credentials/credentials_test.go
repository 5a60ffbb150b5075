package credentials

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestResolveCalDAV(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantPass string
		wantErr  string
	}{
		{
			name:     "caldav password",
			env:      map[string]string{EnvUsername: "jane@fastmail.com", EnvCalDAVPassword: "cal", EnvAppPassword: "app"},
			wantPass: "cal",
		},
		{
			name:     "app password fallback",
			env:      map[string]string{EnvUsername: "jane@fastmail.com", EnvAppPassword: "app"},
			wantPass: "app",
		},
		{
			name:    "missing username",
			env:     map[string]string{EnvCalDAVPassword: "cal"},
			wantErr: "FASTMAIL_USERNAME and FASTMAIL_CALDAV_PASSWORD must be set",
		},
		{
			name:    "missing password",
			env:     map[string]string{EnvUsername: "jane@fastmail.com"},
			wantErr: "FASTMAIL_USERNAME and FASTMAIL_CALDAV_PASSWORD must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ResolveCalDAV(envFunc(tt.env))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
				var missing *MissingError
				assert.True(t, errors.As(err, &missing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jane@fastmail.com", creds.Username)
			assert.Equal(t, tt.wantPass, creds.Password)
		})
	}
}

func TestResolveCardDAV(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name: "complete",
			env:  map[string]string{EnvUsername: "jane@fastmail.com", EnvCardDAVPassword: "card"},
		},
		{
			name:    "missing username",
			env:     map[string]string{EnvCardDAVPassword: "card"},
			wantErr: "FASTMAIL_USERNAME must be set",
		},
		{
			name:    "app password is not a fallback",
			env:     map[string]string{EnvUsername: "jane@fastmail.com", EnvAppPassword: "app"},
			wantErr: "FASTMAIL_CARDDAV_PASSWORD must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ResolveCardDAV(envFunc(tt.env))
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "card", creds.Password)
		})
	}
}

func TestCredentialsString(t *testing.T) {
	creds := Credentials{Username: "jane@fastmail.com", Password: "hunter2hunter2"}
	s := creds.String()
	assert.Contains(t, s, "jane@fastmail.com")
	assert.NotContains(t, s, "hunter2")
}

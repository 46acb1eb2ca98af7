package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("RAFFLE_API_URL", "https://api.example.com")
	t.Setenv("RAFFLE_CDN_URL", "https://cdn.example.com")
	t.Setenv("COGNITO_REGION", "us-east-1")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_abc123")
	t.Setenv("COGNITO_CLIENT_ID", "client123")
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: Config{
				APIURL:            "https://api.example.com",
				CDNURL:            "https://cdn.example.com",
				CognitoRegion:     "us-east-1",
				CognitoUserPoolID: "us-east-1_abc123",
				CognitoClientID:   "client123",
				RunAddress:        "localhost:8080",
				AdminGroup:        "Admin",
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"RUN_ADDRESS":        "localhost:9999",
				"RAFFLE_TOKEN_FILE":  "/tmp/tokens.json",
				"RAFFLE_ADMIN_GROUP": "Staff",
			},
			want: Config{
				APIURL:            "https://api.example.com",
				CDNURL:            "https://cdn.example.com",
				CognitoRegion:     "us-east-1",
				CognitoUserPoolID: "us-east-1_abc123",
				CognitoClientID:   "client123",
				RunAddress:        "localhost:9999",
				TokenFile:         "/tmp/tokens.json",
				AdminGroup:        "Staff",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.APIURL, cfg.APIURL)
			assert.Equal(t, tt.want.CDNURL, cfg.CDNURL)
			assert.Equal(t, tt.want.CognitoRegion, cfg.CognitoRegion)
			assert.Equal(t, tt.want.CognitoUserPoolID, cfg.CognitoUserPoolID)
			assert.Equal(t, tt.want.CognitoClientID, cfg.CognitoClientID)
			assert.Equal(t, tt.want.RunAddress, cfg.RunAddress)
			assert.Equal(t, tt.want.AdminGroup, cfg.AdminGroup)
			if tt.want.TokenFile != "" {
				assert.Equal(t, tt.want.TokenFile, cfg.TokenFile)
			} else {
				assert.NotEmpty(t, cfg.TokenFile)
			}
		})
	}
}

func TestParseConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv регистрирует восстановление, после чего переменную можно снять.
	os.Unsetenv("RAFFLE_API_URL")

	_, err := Parse()
	require.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	settings, err := FromEnv(map[string]string{
		"API_KEY":       "secret",
		"SQS_QUEUE_URL": "https://sqs.us-east-1.amazonaws.com/123/comments",
	})
	require.NoError(t, err)
	require.NoError(t, settings.checkIntake())

	assert.Equal(t, SinkQueue, settings.SinkMode)
	assert.Equal(t, 3*time.Second, settings.SpamTimeout)
	assert.Equal(t, 5*time.Second, settings.CommitTimeout)
	assert.Equal(t, "https://rest.akismet.com", settings.AkismetEndpoint)
	assert.Equal(t, "comments/", settings.S3Prefix)
}

func TestCheckIntake(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"SQS_QUEUE_URL": "q"},
			wantErr: "missing API_KEY",
		},
		{
			name:    "queue without url",
			env:     map[string]string{"API_KEY": "k"},
			wantErr: "missing SQS_QUEUE_URL",
		},
		{
			name:    "direct without table",
			env:     map[string]string{"API_KEY": "k", "SINK_MODE": "direct"},
			wantErr: "missing DYNAMODB_TABLE_NAME",
		},
		{
			name:    "unknown mode",
			env:     map[string]string{"API_KEY": "k", "SINK_MODE": "carrier-pigeon"},
			wantErr: `unknown SINK_MODE "carrier-pigeon"`,
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"API_KEY": "k", "SINK_MODE": "memory", "SPAM_TIMEOUT": "0s"},
			wantErr: "must be positive",
		},
		{
			name: "memory mode",
			env:  map[string]string{"API_KEY": "k", "SINK_MODE": "memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := FromEnv(tt.env)
			require.NoError(t, err)

			err = settings.checkIntake()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnv_BadDuration(t *testing.T) {
	_, err := FromEnv(map[string]string{"COMMIT_TIMEOUT": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

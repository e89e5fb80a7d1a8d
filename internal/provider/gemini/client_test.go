package gemini

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seremi5/expense-management/internal/provider"
)

func pollClient(getFile func(context.Context, string) (*genai.File, error)) *Client {
	return &Client{
		cfg: Config{
			Model:        "test-model",
			UploadPoll:   time.Millisecond,
			UploadExpiry: time.Second,
		},
		logger:  slog.Default(),
		getFile: getFile,
	}
}

func TestWaitActiveKeepsFileWhenPollFails(t *testing.T) {
	c := pollClient(func(context.Context, string) (*genai.File, error) {
		return nil, errors.New("connection refused")
	})
	orig := &genai.File{
		Name:  "files/abc123",
		URI:   "https://provider.test/files/abc123",
		State: genai.FileStateProcessing,
	}

	f, err := c.waitActive(context.Background(), orig)

	require.Error(t, err)
	require.NotNil(t, f, "a failed poll must not discard the uploaded file")
	assert.Equal(t, "files/abc123", f.Name)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Retryable, "transient poll faults stay retryable")
}

func TestWaitActivePollsUntilActive(t *testing.T) {
	polls := 0
	c := pollClient(func(_ context.Context, name string) (*genai.File, error) {
		polls++
		state := genai.FileStateProcessing
		if polls >= 2 {
			state = genai.FileStateActive
		}
		return &genai.File{Name: name, URI: "https://provider.test/" + name, State: state}, nil
	})

	f, err := c.waitActive(context.Background(), &genai.File{
		Name:  "files/slow",
		State: genai.FileStateProcessing,
	})

	require.NoError(t, err)
	assert.Equal(t, genai.FileStateActive, f.State)
	assert.Equal(t, 2, polls)
}

func TestWaitActiveRejectsFailedFiles(t *testing.T) {
	c := pollClient(func(_ context.Context, name string) (*genai.File, error) {
		return &genai.File{Name: name, State: genai.FileStateFailed}, nil
	})

	f, err := c.waitActive(context.Background(), &genai.File{
		Name:  "files/broken",
		State: genai.FileStateProcessing,
	})

	require.Error(t, err)
	require.NotNil(t, f)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.False(t, perr.Retryable, "a FAILED file will not recover on retry")
}

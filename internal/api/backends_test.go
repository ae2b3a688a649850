package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/errors"
)

func TestConnectUsesTheRegisteredFactory(t *testing.T) {
	var got Credentials
	RegisterBackend("test_backend", func(_ context.Context, creds Credentials) (*Client, error) {
		got = creds
		return &Client{}, nil
	})

	client, err := Connect(context.Background(), "test_backend", Credentials{
		Cloud:    "us-2",
		ClientID: "abc",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "us-2", got.Cloud)
	assert.Contains(t, Backends(), "test_backend")
}

func TestConnectUnknownBackend(t *testing.T) {
	_, err := Connect(context.Background(), "no_such_backend", Credentials{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestRegisterBackendRejectsDuplicates(t *testing.T) {
	RegisterBackend("dup_backend", func(context.Context, Credentials) (*Client, error) {
		return &Client{}, nil
	})
	assert.Panics(t, func() {
		RegisterBackend("dup_backend", func(context.Context, Credentials) (*Client, error) {
			return &Client{}, nil
		})
	})
}

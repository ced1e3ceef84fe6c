package postgres

import (
	"testing"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Unreachable(t *testing.T) {
	_, err := New(config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "flythrough",
	}, Options{})
	require.Error(t, err)
}

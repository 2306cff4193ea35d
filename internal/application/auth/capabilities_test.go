package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/domain"
)

func TestCapabilities_TablaEmbebida(t *testing.T) {
	table, err := auth.LoadCapabilities("")
	require.NoError(t, err)

	assert.True(t, table.Allows("admin", "staff:delete"), "admin tiene comodín total")
	assert.True(t, table.Allows("moderator", "products:delete"), "comodín por recurso")
	assert.False(t, table.Allows("moderator", "staff:create"))
	assert.True(t, table.Allows("member", "orders:update"))
	assert.False(t, table.Allows("member", "orders:delete"))
	assert.False(t, table.Allows("customer", "orders:read"))
	assert.False(t, table.Allows("desconocido", "products:read"))
}

func TestCapabilities_DocumentoInvalido(t *testing.T) {
	_, err := auth.ParseCapabilities([]byte("roles: ["))
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = auth.ParseCapabilities([]byte("otra: cosa"))
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = auth.LoadCapabilities("/no/existe.yaml")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestCapabilities_Personalizada(t *testing.T) {
	table, err := auth.ParseCapabilities([]byte("roles:\n  member: [\"orders:*\"]\n"))
	require.NoError(t, err)
	assert.True(t, table.Allows("member", "orders:delete"))
	assert.Equal(t, []string{"orders:*"}, table.Actions("member"))
}

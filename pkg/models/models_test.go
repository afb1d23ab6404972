package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerStatus(t *testing.T) {
	p := &Player{Activated: 1700000000}
	assert.True(t, p.IsActive())
	assert.False(t, p.IsBanned())
	assert.False(t, p.CanEditMap())

	p.Activated = -1
	p.Permissions = PermissionEditMap
	assert.False(t, p.IsActive())
	assert.True(t, p.IsBanned())
	assert.True(t, p.CanEditMap())
}

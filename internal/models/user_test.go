package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	u := &User{Username: "admin", Role: RoleAdmin}

	require.NoError(t, u.SetPassword("structeye"))
	assert.NotEqual(t, "structeye", u.Password)

	assert.True(t, u.CheckPassword("structeye"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestAlertLevelRank(t *testing.T) {
	assert.Greater(t, AlertLevelCritical.Rank(), AlertLevelWarning.Rank())
	assert.Greater(t, AlertLevelWarning.Rank(), AlertLevelNormal.Rank())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminPassword(t *testing.T) {
	admin := &Admin{Email: "owner@agency.test"}
	require.NoError(t, admin.SetPassword("correct horse"))

	assert.NotEqual(t, "correct horse", admin.PasswordHash)
	assert.True(t, admin.CheckPassword("correct horse"))
	assert.False(t, admin.CheckPassword("battery staple"))
}

func TestRejectUnknownAdmin(t *testing.T) {
	assert.False(t, RejectUnknownAdmin("no admin has this password"))
	assert.False(t, RejectUnknownAdmin(""))

	// The comparison must cost as much as a real one.
	cost, err := bcrypt.Cost(unknownAdminHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "owner@agency.test", NormalizeEmail("  Owner@Agency.TEST "))
}

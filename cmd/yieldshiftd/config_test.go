package main

import (
	"path/filepath"
	"testing"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/yieldtest/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	conf := defaultConfig("/var/lib/yieldshift")
	conf.Roles = map[string][]string{
		"governance": {"seed:gov"},
		"user_pool":  {"seed:user", "seed:user2"},
	}
	assert.Nil(t, writeConfig(path, conf))

	t.Setenv("YIELDSHIFT_LISTEN", "127.0.0.1:9000")
	loaded, err := loadConfig(path)
	assert.Nil(t, err)
	assert.Equal(t, "127.0.0.1:9000", loaded.Listen)
	assert.Equal(t, "/var/lib/yieldshift", loaded.Home)
	assert.Equal(t, "@every 1m", loaded.Heartbeat)

	auth, err := loaded.Authorizer()
	assert.Nil(t, err)
	gov, _ := yieldshift.ParseAddress("seed:gov")
	user2, _ := yieldshift.ParseAddress("seed:user2")
	require.True(t, auth.HasRole(gov, yieldshift.RoleGovernance))
	require.True(t, auth.HasRole(user2, yieldshift.RoleUserPool))
	require.False(t, auth.HasRole(gov, yieldshift.RoleEmergency))
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		change    func(*Config)
		wantField string
		wantErr   *errors.Error
	}{
		"missing listen": {
			change:    func(c *Config) { c.Listen = "" },
			wantField: "Listen",
			wantErr:   errors.ErrEmpty,
		},
		"invalid heartbeat": {
			change:    func(c *Config) { c.Heartbeat = "every now and then" },
			wantField: "Heartbeat",
			wantErr:   errors.ErrInput,
		},
		"unknown role": {
			change:    func(c *Config) { c.Roles = map[string][]string{"admin": {"seed:a"}} },
			wantField: "Roles",
			wantErr:   errors.ErrInput,
		},
		"invalid role address": {
			change:    func(c *Config) { c.Roles = map[string][]string{"emergency": {"xyz"}} },
			wantField: "Roles",
			wantErr:   errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := defaultConfig("/tmp/yieldshift")
			tc.change(&c)
			assert.FieldError(t, c.Validate(), tc.wantField, tc.wantErr)
		})
	}
}

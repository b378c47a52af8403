package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/artstock/console/testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPasswordFromArgument(t *testing.T) {
	out, err := run(t, "", "hash-password", "--cost", "4", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := run(t, "from-stdin\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = run(t, "", "hash-password")
	assert.Error(t, err)
}

func TestAccountsListFromFile(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	doc := "accounts:\n" +
		"  - {email: ops@artstock.demo, name: Ops, role: admin, password_hash: '" + string(hash) + "', active: true}\n" +
		"  - {email: old@artstock.demo, name: Old, role: user, password_hash: '" + string(hash) + "', active: false}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("PG_DSN", "")
	t.Setenv("ACCOUNTS_FILE", path)

	out, err := run(t, "", "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@artstock.demo")
	assert.Contains(t, out, "inactive")
	assert.NotContains(t, out, string(hash))
}

func TestAccountsImportNeedsPostgres(t *testing.T) {
	t.Setenv("PG_DSN", "")
	_, err := run(t, "", "accounts", "import", "--file", "accounts.yaml")
	assert.ErrorContains(t, err, "PG_DSN")
}

func TestJobsTriggerRejectsUnknownTask(t *testing.T) {
	_, err := run(t, "", "jobs", "trigger", "mail:send")
	assert.Error(t, err)
}

func TestFixturesSummary(t *testing.T) {
	out, err := run(t, "", "fixtures", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Subscriptions")
	assert.Contains(t, out, "Pending invoices")
}

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type runFixture struct {
	dir      string
	config   string
	template string
	contacts string
}

func newRunFixture(t *testing.T, contacts string) runFixture {
	t.Helper()
	dir := t.TempDir()

	f := runFixture{
		dir:      dir,
		config:   filepath.Join(dir, "config.json"),
		template: filepath.Join(dir, "email_template.html"),
		contacts: filepath.Join(dir, "contacts.csv"),
	}
	require.NoError(t, NewCredentialStore(f.config).Save(Credential{User: "sender@example.com", Password: "secret"}))
	writeAt(t, f.template, "<p>Dear {name}</p>")
	writeAt(t, f.contacts, contacts)
	return f
}

func writeAt(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f runFixture) args(extra ...string) []string {
	return append([]string{
		"-config", f.config,
		"-settings", filepath.Join(f.dir, "mailmerge.yml"),
		"-crypto", "none",
	}, extra...)
}

func (f runFixture) answers(host string, port int) string {
	return strings.Join([]string{"Welcome", f.template, f.contacts, host, strconv.Itoa(port)}, "\n") + "\n"
}

func TestRun_EndToEnd(t *testing.T) {
	be := newTestBackend()
	host, port := startTestServer(t, be)
	f := newRunFixture(t, "Name,Email\nAna,ana@example.com\nA,bad@invalid\nBob,bob@example.com\n")

	var stdout, stderr strings.Builder
	err := run(f.args("-cc", "boss@example.com"), strings.NewReader(f.answers(host, port)), &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	require.Contains(t, out, "Config file read successfully!")
	require.Contains(t, out, "Logged in successfully!")
	require.Contains(t, out, "Sending emails to 3 recipients...")
	require.Contains(t, out, "[1/3] Email successfully sent to Ana (ana@example.com)")
	require.Contains(t, out, "Error sending email to A (bad@invalid)")
	require.Contains(t, out, "[3/3] Email successfully sent to Bob (bob@example.com)")
	require.Contains(t, out, "Done: 2 delivered, 1 failed")

	received := be.Received()
	require.Len(t, received, 2)
	require.Equal(t, []string{"ana@example.com", "boss@example.com"}, received[0].To)
	require.Contains(t, received[0].Data, "<p>Dear Ana</p>")
	require.Contains(t, received[0].Data, "Subject: Welcome")
	require.Contains(t, received[0].Data, "Cc: boss@example.com")
	require.Contains(t, received[1].Data, "<p>Dear Bob</p>")

	// the session is closed after the failed recipient
	require.Eventually(t, func() bool { return be.Logouts() == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 1, be.Sessions())
}

func TestRun_SchemaErrorBeforeSession(t *testing.T) {
	be := newTestBackend()
	host, port := startTestServer(t, be)
	f := newRunFixture(t, "Name,Mail\nAna,ana@example.com\n")

	var stdout, stderr strings.Builder
	err := run(f.args(), strings.NewReader(f.answers(host, port)), &stdout, &stderr)
	require.ErrorIs(t, err, ErrContactsSchema)

	require.Zero(t, be.Sessions())
	require.NotContains(t, stdout.String(), "Setting up the SMTP server...")
}

func TestRun_TemplateNotFound(t *testing.T) {
	f := newRunFixture(t, "Name,Email\nAna,ana@example.com\n")
	answers := strings.Join([]string{"Welcome", filepath.Join(f.dir, "missing.html"), f.contacts, "127.0.0.1", "25"}, "\n") + "\n"

	err := run(f.args(), strings.NewReader(answers), &strings.Builder{}, &strings.Builder{})
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRun_AuthenticationFailure(t *testing.T) {
	be := newTestBackend()
	be.pass = "other"
	host, port := startTestServer(t, be)
	f := newRunFixture(t, "Name,Email\nAna,ana@example.com\n")

	var stdout strings.Builder
	err := run(f.args(), strings.NewReader(f.answers(host, port)), &stdout, &strings.Builder{})
	require.ErrorIs(t, err, ErrAuthentication)
	require.Empty(t, be.Received())
	require.NotContains(t, stdout.String(), "Sending emails")
}

func TestRun_FirstRunWithoutInput(t *testing.T) {
	dir := t.TempDir()
	args := []string{"-config", filepath.Join(dir, "config.json"), "-settings", filepath.Join(dir, "mailmerge.yml")}

	err := run(args, strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	require.ErrorIs(t, err, ErrInvalidParams)
	require.NoFileExists(t, filepath.Join(dir, "config.json"))
}

func TestRun_CorruptConfig(t *testing.T) {
	f := newRunFixture(t, "Name,Email\n")
	writeAt(t, f.config, `{"gmail_user": "sender@example.com"}`)

	err := run(f.args(), strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	require.ErrorIs(t, err, ErrConfigCorrupt)
}

func TestRun_InvalidFlags(t *testing.T) {
	err := run([]string{"-log-level", "loud"}, strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	require.ErrorIs(t, err, ErrInvalidParams)

	err = run([]string{"-no-such-flag"}, strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	require.Error(t, err)
}

func TestRun_SettingsFileAndDefaults(t *testing.T) {
	be := newTestBackend()
	host, port := startTestServer(t, be)
	f := newRunFixture(t, "Name,Email\nAna,ana@example.com\n")

	writeAt(t, filepath.Join(f.dir, "mailmerge.yml"), strings.Join([]string{
		"subject: From settings",
		"template: " + f.template,
		"contacts: " + f.contacts,
		"smtp_host: " + host,
		"smtp_port: " + strconv.Itoa(port),
		"smtp_crypto: none",
	}, "\n"))

	args := []string{"-config", f.config, "-settings", filepath.Join(f.dir, "mailmerge.yml"), "-y"}
	err := run(args, strings.NewReader(""), &strings.Builder{}, &strings.Builder{})
	require.NoError(t, err)

	received := be.Received()
	require.Len(t, received, 1)
	require.Contains(t, received[0].Data, "Subject: From settings")
}

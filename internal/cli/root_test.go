package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...))
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ODINCAL_DATA_PATH", filepath.Join(dir, "odincal.db"))
	t.Setenv("ODINCAL_TIMEZONE", "UTC")
	return dir
}

func TestAgendaCommand_ShowsSeededGlobals(t *testing.T) {
	dir := testDir(t)

	out := runCLI(t, dir, "agenda")

	assert.Contains(t, out, "Field Boss")
	assert.Contains(t, out, "Valhalla War")
	assert.Contains(t, out, "22:00")
}

func TestAgendaCommand_RejectsBadDate(t *testing.T) {
	dir := testDir(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yaml"), "agenda", "--date", "tomorrow"})
	assert.Error(t, cmd.Execute())
}

func TestExportAndImportICS(t *testing.T) {
	dir := testDir(t)
	ics := filepath.Join(dir, "out.ics")

	runCLI(t, dir, "export-ics", "--out", ics)
	body, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "BEGIN:VCALENDAR"))

	out := runCLI(t, dir, "reset-global")
	assert.Contains(t, out, "global events reset")

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yaml"), "import-ics", ics, "--character", "nobody"})
	assert.Error(t, cmd.Execute(), "unknown character is rejected")
}

func TestHelpAndCompletion_LeaveDiskUntouched(t *testing.T) {
	for _, args := range [][]string{
		{"help"},
		{"help", "agenda"},
		{"completion", "bash"},
		{"__complete", "ag"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			dir := testDir(t)
			out := runCLI(t, dir, args...)
			assert.NotEmpty(t, out)

			_, err := os.Stat(filepath.Join(dir, "config.yaml"))
			assert.True(t, os.IsNotExist(err), "config file written")
			_, err = os.Stat(filepath.Join(dir, "odincal.db"))
			assert.True(t, os.IsNotExist(err), "database created")
		})
	}
}

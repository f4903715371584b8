package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-sifter/internal/config"
	"github.com/jonathan/resume-sifter/internal/server"
)

func TestDatesCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "dates", "--json", "Janvier 2021 - Présent", "rien")
	require.NoError(t, err)

	var out []datesOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out, 2)

	require.NotEmpty(t, out[0].Dates)
	best := out[0].Dates[0]
	assert.True(t, best.IsCurrent)
	require.NotNil(t, best.StartYear)
	assert.Equal(t, 2021, *best.StartYear)

	assert.Equal(t, "rien", out[1].Input)
	assert.Empty(t, out[1].Dates)
}

func TestDatesCommand_Table(t *testing.T) {
	stdout, _, err := execute(t, "dates", "Janvier 2021 - Présent", "rien")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2021-01")
	assert.Contains(t, stdout, "present")
	assert.Contains(t, stdout, "(no date)")
}

func TestDatesCommand_NoArgs(t *testing.T) {
	_, _, err := execute(t, "dates")
	assert.Error(t, err)
}

func TestRouteCommand(t *testing.T) {
	in := writeResume(t, "cv.txt", textResume)

	stdout, _, err := execute(t, "route", "--in", in, "--json")
	require.NoError(t, err)

	var out []routeOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "experience", out[0].Section)
	assert.Equal(t, "education", out[1].Section)
	assert.Less(t, out[0].LineIndex, out[1].LineIndex)
	for _, o := range out {
		assert.NotEmpty(t, o.Reason)
	}

	stdout, _, err = execute(t, "route", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Routing")
	assert.Contains(t, stdout, "Master informatique")
}

func TestValidateOutputCommand_Invalid(t *testing.T) {
	in := writeResume(t, "result.json", `{"run_id": 42}`)

	_, _, err := execute(t, "validate-output", "--in", in)
	assert.Error(t, err)
}

func TestValidateOutputCommand_Document(t *testing.T) {
	in := writeResume(t, "doc.json", `{"lines": ["Formation"], "candidates": []}`)

	stdout, _, err := execute(t, "validate-output", "--in", in, "--document")
	require.NoError(t, err)
	assert.Contains(t, stdout, "document.schema.json")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-of-32-characters!!")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	stdout, _, err := execute(t, "token", "--subject", "ats-importer")
	require.NoError(t, err)

	jwtCfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	subject, err := server.NewJWTService(jwtCfg).ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "ats-importer", subject)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, _, err := execute(t, "token", "--subject", "cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestRunsCommand_NoDatabase(t *testing.T) {
	_, _, err := execute(t, "runs", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")

	_, _, err = execute(t, "runs", "show", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run ID")
}

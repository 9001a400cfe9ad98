package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogo2464/LIEF/internal/healthcheck"
	"github.com/gogo2464/LIEF/pefmt"
)

func TestNewRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["parse"])
	assert.True(t, names["inspect"])
}

func TestParseCommandFlags(t *testing.T) {
	cmd := newParseCmd()

	formatFlag := cmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
	assert.Equal(t, "f", formatFlag.Shorthand)

	queryFlag := cmd.Flags().Lookup("query")
	require.NotNil(t, queryFlag)
	assert.Equal(t, "q", queryFlag.Shorthand)

	require.NotNil(t, cmd.Flags().Lookup("sbom"))
	require.NotNil(t, cmd.Flags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("verbose"))
}

func sampleReport() *healthcheck.Report {
	return healthcheck.NewRunner(healthcheck.Default()).RunAll(&pefmt.Binary{})
}

func TestWriteReportDispatchesOnFormat(t *testing.T) {
	report := sampleReport()

	var jsonBuf, yamlBuf, textBuf, mdBuf bytes.Buffer
	require.NoError(t, writeReport(report, "json", &jsonBuf))
	require.NoError(t, writeReport(report, "yaml", &yamlBuf))
	require.NoError(t, writeReport(report, "", &textBuf))
	require.NoError(t, writeReport(report, "markdown", &mdBuf))

	assert.True(t, strings.Contains(jsonBuf.String(), "\"summary\""))
	assert.True(t, strings.Contains(yamlBuf.String(), "summary:"))
	assert.True(t, strings.Contains(textBuf.String(), "Parse Health Report"))
	assert.True(t, strings.Contains(mdBuf.String(), "# Parse Health Report"))

	err := writeReport(report, "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunQueryFiltersReportJSON(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, runQuery(&buf, report, ".summary.total"))
	assert.True(t, strings.Contains(buf.String(), "5"))
}

func TestRunQueryRejectsInvalidExpression(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer
	err := runQuery(&buf, report, "{{{not jq")
	assert.Error(t, err)
}

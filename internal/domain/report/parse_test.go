package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSwingReportWithoutEnvelope(t *testing.T) {
	report, err := parseSwingReport(`{"playerName":"Ana","summary":["Good rotation"]}`)
	require.NoError(t, err)
	require.Equal(t, "Ana", report.PlayerName)
	require.Equal(t, []string{"Good rotation"}, report.Summary)
}

func TestParseSwingReportStripsMarkdownFences(t *testing.T) {
	report, err := parseSwingReport("```json\n{\"report\":{\"playerName\":\"Ana\",\"summary\":[\"ok\"]}}\n```")
	require.NoError(t, err)
	require.Equal(t, "Ana", report.PlayerName)
}

func TestParseSwingReportCoercesStringToArray(t *testing.T) {
	report, err := parseSwingReport(`{"playerName":"Ana","summary":"One line only","strengths":"Balance"}`)
	require.NoError(t, err)
	require.Equal(t, []string{"One line only"}, report.Summary)
	require.Equal(t, []string{"Balance"}, report.Strengths)
}

func TestParseSwingReportCoercesNumericHandicap(t *testing.T) {
	report, err := parseSwingReport(`{"playerName":"Ana","handicap":14,"summary":["x"]}`)
	require.NoError(t, err)
	require.Equal(t, "14", report.Handicap)
}

func TestParseSwingReportUppercasesStatus(t *testing.T) {
	report, err := parseSwingReport(`{"playerName":"Ana","checkpoints":[{"label":"P4","status":"yellow"}]}`)
	require.NoError(t, err)
	require.Equal(t, StatusYellow, report.Checkpoints[0].Status)
}

func TestParseSwingReportPassesUnknownStatusThrough(t *testing.T) {
	report, err := parseSwingReport(`{"playerName":"Ana","checkpoints":[{"label":"P4","status":"amber"}]}`)
	require.NoError(t, err)
	require.Equal(t, CheckpointStatus("AMBER"), report.Checkpoints[0].Status)
	require.False(t, report.Checkpoints[0].Status.Known())
}

func TestParseSwingReportRejectsProse(t *testing.T) {
	_, err := parseSwingReport("Here is my analysis of your swing...")
	require.Error(t, err)
}

func TestParseSwingReportRejectsEmptyObject(t *testing.T) {
	_, err := parseSwingReport(`{}`)
	require.Error(t, err)
}

func TestParseSwingReportNullEnvelopeFallsBackToBody(t *testing.T) {
	report, err := parseSwingReport(`{"report":null,"playerName":"Ana","summary":["x"]}`)
	require.NoError(t, err)
	require.Equal(t, "Ana", report.PlayerName)
}

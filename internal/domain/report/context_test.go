package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPlayerContextIsDeterministic(t *testing.T) {
	profile := PlayerProfile{
		Name:       "Jordan",
		Handicap:   "12",
		Hand:       "Right",
		Eye:        "Left",
		Club:       "Driver",
		Notes:      "Working on a draw",
		BallFlight: "Push fade under pressure",
	}

	first := BuildPlayerContext(profile, noClipEvidence)
	second := BuildPlayerContext(profile, noClipEvidence)
	require.Equal(t, first, second)

	require.Contains(t, first, "- Name: Jordan")
	require.Contains(t, first, "- Club used: Driver")
	require.Contains(t, first, "- Notes / goals: Working on a draw")
	require.Contains(t, first, "- Push fade under pressure")
}

func TestBuildPlayerContextDefaultsEvidence(t *testing.T) {
	got := BuildPlayerContext(PlayerProfile{}.ApplyDefaults(), "")
	require.Contains(t, got, noClipEvidence)
}

func TestClipEvidenceFormatsSize(t *testing.T) {
	got := clipEvidence(&ClipUpload{Filename: "swing.mov", Content: make([]byte, 3072)})
	require.Equal(t, "Swing video uploaded: swing.mov, approx 3 KB. Treat this as a single-swing clip matching the description.", got)
}

func TestClipEvidenceNilClip(t *testing.T) {
	require.Equal(t, noClipEvidence, clipEvidence(nil))
}

func TestApplyDefaultsFillsEveryBlank(t *testing.T) {
	got := PlayerProfile{}.ApplyDefaults()
	require.Equal(t, "Player", got.Name)
	require.Equal(t, "N/A", got.Handicap)
	require.Equal(t, "Right", got.Hand)
	require.Equal(t, "Unknown", got.Eye)
	require.Equal(t, "N/A", got.Club)
	require.Equal(t, "N/A", got.Notes)
	require.Equal(t, "N/A", got.BallFlight)
}

func TestApplyDefaultsKeepsProvidedValues(t *testing.T) {
	got := PlayerProfile{Name: "Ana", Hand: "Left"}.ApplyDefaults()
	require.Equal(t, "Ana", got.Name)
	require.Equal(t, "Left", got.Hand)
	require.Equal(t, "N/A", got.Handicap)
}

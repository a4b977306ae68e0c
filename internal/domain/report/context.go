package report

import (
	"fmt"
	"strings"
)

// Evidence lines forwarded to the generation step in place of decoding the
// clip itself.
const noClipEvidence = "No video file attached; treat description as main source."

func clipEvidence(clip *ClipUpload) string {
	if clip == nil || len(clip.Content) == 0 {
		return noClipEvidence
	}
	name := strings.TrimSpace(clip.Filename)
	if name == "" {
		name = "swing clip"
	}
	kb := (len(clip.Content) + 512) / 1024
	return fmt.Sprintf("Swing video uploaded: %s, approx %d KB. Treat this as a single-swing clip matching the description.", name, kb)
}

// BuildPlayerContext composes the context message sent alongside the
// synthesis instruction. The profile must already carry its defaults, so the
// composition is deterministic: identical profiles always produce identical
// context.
func BuildPlayerContext(profile PlayerProfile, evidence string) string {
	if strings.TrimSpace(evidence) == "" {
		evidence = noClipEvidence
	}
	var b strings.Builder
	b.WriteString("Player info:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Handicap / level: %s\n", profile.Handicap)
	fmt.Fprintf(&b, "- Handedness: %s\n", profile.Hand)
	fmt.Fprintf(&b, "- Dominant eye: %s\n", profile.Eye)
	fmt.Fprintf(&b, "- Club used: %s\n", profile.Club)
	b.WriteString("\nSwing context:\n")
	fmt.Fprintf(&b, "- Swing video: %s\n", evidence)
	b.WriteString("\nCoach focus:\n")
	fmt.Fprintf(&b, "- Notes / goals: %s\n", profile.Notes)
	b.WriteString("\nBall flight description:\n")
	fmt.Fprintf(&b, "- %s", profile.BallFlight)
	return b.String()
}

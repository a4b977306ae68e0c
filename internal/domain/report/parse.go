package report

import (
	"encoding/json"
	"errors"
	"strings"
)

// parseSwingReport is the fallible conversion from raw generated text to the
// declared report shape. It tolerates markdown fences, a missing envelope,
// string-or-array fields, and numeric handicaps; anything else is a parse
// failure the caller turns into a null report.
func parseSwingReport(raw string) (*SwingReport, error) {
	sanitized := stripFences(raw)
	if sanitized == "" {
		return nil, errors.New("empty generation result")
	}

	var envelope struct {
		Report json.RawMessage `json:"report"`
	}
	body := json.RawMessage(sanitized)
	if err := json.Unmarshal([]byte(sanitized), &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Report) > 0 && string(envelope.Report) != "null" {
		body = envelope.Report
	}

	report, err := decodeReportWire(body)
	if err != nil {
		return nil, err
	}
	if report.PlayerName == "" && len(report.Summary) == 0 && len(report.Checkpoints) == 0 {
		return nil, errors.New("result carries no report fields")
	}
	return report, nil
}

func stripFences(raw string) string {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	return strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
}

type checkpointWire struct {
	Label       string `json:"label"`
	Phase       string `json:"phase"`
	Status      string `json:"status"`
	Note        string `json:"note"`
	Short       string `json:"short"`
	Long        string `json:"long"`
	SearchQuery string `json:"youtubeQuery"`
}

type planBlockWire struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func decodeReportWire(data []byte) (*SwingReport, error) {
	var raw struct {
		PlayerName    string           `json:"playerName"`
		Hand          string           `json:"hand"`
		Eye           string           `json:"eye"`
		Handicap      json.RawMessage  `json:"handicap"`
		Summary       json.RawMessage  `json:"summary"`
		Strengths     json.RawMessage  `json:"strengths"`
		PriorityFixes json.RawMessage  `json:"priorityFixes"`
		PowerLeaks    json.RawMessage  `json:"powerLeaks"`
		Checkpoints   []checkpointWire `json:"checkpoints"`
		PlanBlocks    []planBlockWire  `json:"planBlocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	summary, err := coerceStringArray(raw.Summary)
	if err != nil {
		return nil, err
	}
	strengths, err := coerceStringArray(raw.Strengths)
	if err != nil {
		return nil, err
	}
	fixes, err := coerceStringArray(raw.PriorityFixes)
	if err != nil {
		return nil, err
	}
	leaks, err := coerceStringArray(raw.PowerLeaks)
	if err != nil {
		return nil, err
	}
	handicap, err := coerceScalar(raw.Handicap)
	if err != nil {
		return nil, err
	}

	checkpoints := make([]Checkpoint, 0, len(raw.Checkpoints))
	for _, cp := range raw.Checkpoints {
		checkpoints = append(checkpoints, Checkpoint{
			Label:       strings.TrimSpace(cp.Label),
			Phase:       strings.TrimSpace(cp.Phase),
			Status:      CheckpointStatus(strings.ToUpper(strings.TrimSpace(cp.Status))),
			Note:        strings.TrimSpace(cp.Note),
			Short:       strings.TrimSpace(cp.Short),
			Long:        strings.TrimSpace(cp.Long),
			SearchQuery: strings.TrimSpace(cp.SearchQuery),
		})
	}

	blocks := make([]PlanBlock, 0, len(raw.PlanBlocks))
	for _, block := range raw.PlanBlocks {
		blocks = append(blocks, PlanBlock{
			Title: strings.TrimSpace(block.Title),
			Text:  strings.TrimSpace(block.Text),
		})
	}

	return &SwingReport{
		PlayerName:    strings.TrimSpace(raw.PlayerName),
		Hand:          strings.TrimSpace(raw.Hand),
		Eye:           strings.TrimSpace(raw.Eye),
		Handicap:      handicap,
		Summary:       summary,
		Strengths:     strengths,
		PriorityFixes: fixes,
		PowerLeaks:    leaks,
		Checkpoints:   checkpoints,
		PlanBlocks:    blocks,
	}, nil
}

// coerceStringArray accepts an array of strings or a bare string.
func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(many))
		for _, item := range many {
			if clean := strings.TrimSpace(item); clean != "" {
				out = append(out, clean)
			}
		}
		return out, nil
	default:
		return nil, errors.New("unsupported array format")
	}
}

// coerceScalar accepts a string or a number and renders it as text.
func coerceScalar(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return "", err
		}
		return strings.TrimSpace(value), nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", err
	}
	return number.String(), nil
}

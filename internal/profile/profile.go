package profile

import (
	"strconv"
	"strings"
)

// Summary is the parsed view of an uploaded resume. It is produced by an
// external ingestion step; the engine only reads it.
type Summary struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	TargetRoles     []string `json:"target_roles"`
	// Raw keeps the full extracted resume text for prompts that want more
	// context than the structured fields carry.
	Raw string `json:"raw,omitempty"`
}

// Empty reports whether the summary carries no usable signal. Agents fall
// back to generic output in that case instead of failing the turn.
func (s *Summary) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Skills) == 0 && len(s.TargetRoles) == 0 && strings.TrimSpace(s.Raw) == ""
}

// PromptContext renders the summary as a compact block for inclusion in
// reasoning prompts.
func (s *Summary) PromptContext() string {
	if s.Empty() {
		return "No candidate profile provided."
	}

	var b strings.Builder
	if len(s.Skills) > 0 {
		b.WriteString("Skills: ")
		b.WriteString(strings.Join(s.Skills, ", "))
		b.WriteString("\n")
	}
	if s.ExperienceYears > 0 {
		b.WriteString("Experience (years): ")
		b.WriteString(strconv.FormatFloat(s.ExperienceYears, 'f', -1, 64))
		b.WriteString("\n")
	}
	if len(s.TargetRoles) > 0 {
		b.WriteString("Target roles: ")
		b.WriteString(strings.Join(s.TargetRoles, ", "))
		b.WriteString("\n")
	}
	if raw := strings.TrimSpace(s.Raw); raw != "" {
		b.WriteString("Resume text:\n")
		b.WriteString(raw)
	}

	return strings.TrimSpace(b.String())
}

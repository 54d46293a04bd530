package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/ai"

	"go.uber.org/zap"
)

const coverLetterPrompt = `You are a professional career writer drafting a cover letter.

CANDIDATE PROFILE:
%s

TARGET JOB:
%s

INSTRUCTIONS:
1. Write a complete, ready-to-send cover letter tailored to the job.
2. Work the candidate's concrete skills and experience into the letter; do not list them mechanically.
3. Keep it to 3-4 paragraphs, professional but not stiff.
4. Write in the language of the target job text.`

const genericCoverLetterPrompt = `You are a professional career writer drafting a cover letter.

TARGET JOB:
%s

The candidate has not shared a profile, so write a strong generic cover letter
for this job with clearly marked placeholders like [YOUR NAME] and
[RELEVANT EXPERIENCE] where personal details belong. Start with one short
note telling the candidate that sharing a CV would let you personalize it.
Write in the language of the target job text.`

// CoverLetterAgent drafts cover letters from the stored profile and a
// target job. Without a profile it degrades to a placeholder letter rather
// than refusing.
type CoverLetterAgent struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewCoverLetterAgent creates the cover-letter agent.
func NewCoverLetterAgent(generator ai.Generator, logger *zap.Logger) *CoverLetterAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverLetterAgent{generator: generator, logger: logger}
}

func (a *CoverLetterAgent) Kind() Kind { return KindCoverLetter }

func (a *CoverLetterAgent) Describe() string {
	return "Writes a tailored cover letter for a specific job using the user's profile. Pick this when the user asks for a cover or application letter."
}

func (a *CoverLetterAgent) Step(ctx context.Context, turn *Turn) (*Action, error) {
	personalized := !turn.Profile.Empty()

	var prompt string
	if personalized {
		prompt = fmt.Sprintf(coverLetterPrompt, turn.Profile.PromptContext(), turn.Input)
	} else {
		a.logger.Debug("no profile on session, drafting generic letter")
		prompt = fmt.Sprintf(genericCoverLetterPrompt, turn.Input)
	}

	letter, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("cover letter generation: %w", err)
	}

	return &Action{
		Final:   true,
		Content: strings.TrimSpace(letter),
		Payload: map[string]any{"personalized": personalized},
	}, nil
}

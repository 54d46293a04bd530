package interview

import (
	"fmt"
	"math"
	"strings"
)

// CompetencyScore is one competency's line in the final report.
type CompetencyScore struct {
	Competency string  `json:"competency"`
	Score      float64 `json:"score"` // 0..100
	Questions  int     `json:"questions"`
	Assessed   bool    `json:"assessed"`
}

// Report is the final evaluation produced once per interview.
type Report struct {
	OverallScore float64           `json:"overall_score"` // 0..100
	Competencies []CompetencyScore `json:"competencies"`
	Strengths    []string          `json:"strengths"`
	Improvements []string          `json:"improvements"`
	Questions    int               `json:"questions"`
}

// aggregate folds recorded evaluations into the final report. Competencies
// never asked about, or asked but never answered, are carried as not
// assessed rather than scored zero.
func aggregate(st *State, cfg Config) *Report {
	report := &Report{Questions: len(st.Exchanges)}

	var total, assessed float64
	for _, competency := range st.Competencies {
		score := CompetencyScore{
			Competency: competency,
			Questions:  questionsOn(st, competency),
		}

		if best := bestScore(st, competency); best >= 0 {
			score.Assessed = true
			score.Score = math.Round(best * 100)
			total += score.Score
			assessed++
		}

		report.Competencies = append(report.Competencies, score)
	}

	if assessed > 0 {
		report.OverallScore = math.Round(total / assessed)
	}

	for _, ex := range st.Exchanges {
		if ex.Evaluation == nil || ex.Evaluation.Feedback == "" {
			continue
		}
		point := fmt.Sprintf("%s: %s", ex.Competency, ex.Evaluation.Feedback)
		switch ex.Evaluation.Depth {
		case DepthStrong:
			report.Strengths = appendUnique(report.Strengths, point)
		case DepthWeak:
			report.Improvements = appendUnique(report.Improvements, point)
		}
	}

	for _, cs := range report.Competencies {
		if cs.Assessed && cs.Score < cfg.CoverageThreshold*100 {
			report.Improvements = appendUnique(report.Improvements,
				fmt.Sprintf("%s: needs more depth, best answer scored %.0f/100", cs.Competency, cs.Score))
		}
	}

	return report
}

// Render formats the report for the candidate. Repeated reads of a concluded
// interview return this same text.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Interview Evaluation\n\n")
	fmt.Fprintf(&b, "**Overall score: %.0f/100** across %d questions.\n\n", r.OverallScore, r.Questions)

	b.WriteString("### Competency breakdown\n")
	for _, cs := range r.Competencies {
		if cs.Assessed {
			fmt.Fprintf(&b, "- %s: %.0f/100 (%d question(s))\n", cs.Competency, cs.Score, cs.Questions)
		} else {
			fmt.Fprintf(&b, "- %s: not assessed\n", cs.Competency)
		}
	}

	if len(r.Strengths) > 0 {
		b.WriteString("\n### Strengths\n")
		for _, s := range r.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	if len(r.Improvements) > 0 {
		b.WriteString("\n### Areas for improvement\n")
		for _, s := range r.Improvements {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	return strings.TrimSpace(b.String())
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

package jobs

import (
	"fmt"
	"strings"
)

// Job is one posting from the job/salary dataset.
type Job struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Area           string   `json:"area"`
	SalaryFrom     int      `json:"salary_from,omitempty"`
	SalaryTo       int      `json:"salary_to,omitempty"`
	SalaryCurrency string   `json:"salary_currency,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills,omitempty"`
}

// Snippet renders the posting as an indexable text block for the semantic
// retriever. The job ID travels separately as the snippet tag.
func (j *Job) Snippet() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s (%s)\n", j.Title, j.Company, j.Area)
	if j.Experience != "" {
		fmt.Fprintf(&b, "Experience: %s\n", j.Experience)
	}
	if len(j.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(j.Skills, ", "))
	}
	if j.SalaryFrom > 0 || j.SalaryTo > 0 {
		fmt.Fprintf(&b, "Salary: %d-%d %s\n", j.SalaryFrom, j.SalaryTo, j.SalaryCurrency)
	}
	b.WriteString(j.Description)
	return strings.TrimSpace(b.String())
}

// Jobs is a collection of postings.
type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	if j == nil {
		return nil
	}
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

package jobsearch

import (
	"fmt"
	"strings"
)

const (
	maxJobs           = 5
	maxSkills         = 5
	descriptionLength = 200
	summaryResumeLen  = 500

	defaultMatchScore = 85
	defaultMatchLevel = "high"
)

// Job is the shape the front end renders.
type Job struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	MatchScore     int      `json:"matchScore"`
	MatchLevel     string   `json:"matchLevel"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	URL            string   `json:"url"`
}

// Reshape keeps the first five records and maps them to Job.
func Reshape(records []Record) []Job {
	if len(records) > maxJobs {
		records = records[:maxJobs]
	}

	jobs := make([]Job, 0, len(records))
	for _, r := range records {
		skills := r.JobRequiredSkills
		if len(skills) > maxSkills {
			skills = skills[:maxSkills]
		}
		if skills == nil {
			skills = []string{}
		}

		jobs = append(jobs, Job{
			Title:          r.JobTitle,
			Company:        r.EmployerName,
			Location:       joinNonEmpty(", ", r.JobCity, r.JobCountry),
			MatchScore:     defaultMatchScore,
			MatchLevel:     defaultMatchLevel,
			Description:    firstRunes(r.JobDescription, descriptionLength) + "...",
			RequiredSkills: skills,
			URL:            r.JobApplyLink,
		})
	}
	return jobs
}

// SummaryPrompt asks for a short encouragement based on the resume and the
// found openings.
func SummaryPrompt(resume string, jobs []Job) string {
	titles := make([]string, 0, len(jobs))
	for _, j := range jobs {
		titles = append(titles, fmt.Sprintf("%s at %s", j.Title, j.Company))
	}
	return fmt.Sprintf(`Based on this user's resume: %s...
And these real job openings: %s
Provide a 2-sentence encouragement summary about which roles fit them best.`,
		firstRunes(resume, summaryResumeLen), strings.Join(titles, ", "))
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

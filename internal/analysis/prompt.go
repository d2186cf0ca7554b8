package analysis

import "fmt"

func matchPrompt(in Inputs) string {
	return fmt.Sprintf(`You are an expert resume analyzer. Analyze this resume against the job description and provide a detailed match analysis.

RESUME:
%s

JOB DESCRIPTION:
%s

Provide a comprehensive analysis of how well the resume matches the job description. Calculate a match score based on:
1. Skills alignment (technical and soft skills)
2. Experience relevance
3. Qualifications match
4. Keywords presence
5. Overall suitability

Return ONLY a valid JSON object (no markdown, no explanation) with this exact structure:
{
  "score": 85,
  "verdict": "Strong Match" / "Good Match" / "Moderate Match" / "Weak Match",
  "summary": "2-3 sentence summary explaining the match quality, key strengths, and main gaps",
  "matchedSkills": ["Python", "Flask", "AWS"],
  "missingSkills": ["Kubernetes", "React"],
  "suggestions": [
    {"type": "green", "title": "Strong Technical Foundation", "description": "What already aligns with the role and why it matters."},
    {"type": "amber", "title": "Expand DevOps Toolkit", "description": "What would strengthen the application and how to get there."},
    {"type": "red", "title": "Frontend Skills Gap", "description": "A critical requirement that is missing and a concrete way to close it."}
  ]
}

Ensure suggestions are actionable, specific, and helpful. Use green for strengths, amber for improvements, and red for critical gaps.`,
		in.Resume, in.JobDescription)
}

func resumePrompt(in Inputs) string {
	return fmt.Sprintf(`You are a professional resume coach with 15+ years of experience. Review this resume comprehensively and provide actionable feedback.

RESUME:
%s

Analyze the resume for:
1. Overall structure and formatting
2. Content quality and achievements
3. Skills presentation
4. Experience descriptions
5. ATS compatibility
6. Impact and measurability

Return ONLY a valid JSON object (no markdown, no explanation) with this exact structure:
{
  "rating": 8,
  "strengths": "Paragraph (100-150 words) on the strongest aspects of the resume, citing specific examples from it.",
  "improvements": "Paragraph (100-150 words) on areas needing improvement, with a specific suggestion for each issue.",
  "skills": ["Python", "JavaScript", "SQL", "Git", "Docker"],
  "suggestions": [
    {"type": "green", "title": "Strong Technical Depth", "description": "A strength worth keeping."},
    {"type": "amber", "title": "Add Quantifiable Metrics", "description": "An improvement with a concrete example."},
    {"type": "red", "title": "Missing Leadership Examples", "description": "A critical gap and how to address it."}
  ]
}

Rate out of 10 based on content quality, impact, and presentation. Provide 3-5 specific, actionable suggestions.`,
		in.Resume)
}

func jobDescriptionPrompt(in Inputs) string {
	return fmt.Sprintf(`You are a career analyst specializing in job market trends. Analyze this job description thoroughly to help candidates understand what's really being asked.

JOB DESCRIPTION:
%s

Decode the job description by:
1. Identifying explicit and implicit requirements
2. Distinguishing must-have vs nice-to-have skills
3. Understanding key responsibilities
4. Recognizing company culture indicators
5. Highlighting preparation areas

Return ONLY a valid JSON object (no markdown, no explanation) with this exact structure:
{
  "overview": "2-3 sentence overview of the role's core purpose, seniority level, and what success looks like.",
  "mustHaveSkills": ["Python", "Flask", "SQL"],
  "niceToHaveSkills": ["Docker", "AWS"],
  "responsibilities": [
    {"emoji": "💻", "title": "Backend Development", "desc": "What the candidate will own day to day."}
  ],
  "preparationTips": [
    {"type": "green", "title": "Master the Core Tech Stack", "description": "A specific, actionable preparation step."}
  ]
}

Extract 3-7 responsibilities and 4-6 preparation tips. Be specific and actionable.`,
		in.JobDescription)
}

// Instruction is the system instruction for the queued-analysis agent. The
// category prompt is sent as the user message.
func Instruction() string {
	return `
You are an expert AI career assistant that reviews resumes and job descriptions.
Follow the task in each message exactly.
Base all reasoning only on the provided text. Do not make up data or assume experience not explicitly mentioned.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.
Your response must be a single JSON object.
`
}

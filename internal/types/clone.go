package types

import "slices"

// Clone returns a deep copy of the resume. The pipeline edits only copies;
// the caller-owned input is never mutated.
func (r ResumeContent) Clone() ResumeContent {
	out := r
	out.Experience = make([]Experience, len(r.Experience))
	for i, exp := range r.Experience {
		out.Experience[i] = exp
		out.Experience[i].Bullets = slices.Clone(exp.Bullets)
	}
	out.Education = slices.Clone(r.Education)
	out.Projects = make([]Project, len(r.Projects))
	for i, proj := range r.Projects {
		out.Projects[i] = proj
		out.Projects[i].Technologies = slices.Clone(proj.Technologies)
	}
	out.Skills = Skills{
		Technical:      slices.Clone(r.Skills.Technical),
		Soft:           slices.Clone(r.Skills.Soft),
		Languages:      slices.Clone(r.Skills.Languages),
		Certifications: slices.Clone(r.Skills.Certifications),
	}
	return out
}

package pipeline

import (
	"tailorpipe/internal/rules"
	"tailorpipe/internal/types"
)

// diffChanges compares the original resume with the final draft and reports
// what the run touched. Bullets are matched by id so reordering alone does
// not count as a modification.
func diffChanges(original, final types.ResumeContent, out *rules.Output) types.TailoringChanges {
	originalBullets := make(map[string]string)
	for _, exp := range original.Experience {
		for _, b := range exp.Bullets {
			originalBullets[b.ID] = b.Text
		}
	}

	modified := 0
	for _, exp := range final.Experience {
		for _, b := range exp.Bullets {
			if before, ok := originalBullets[b.ID]; ok && before != b.Text {
				modified++
			}
		}
	}

	// no rule moves whole sections yet, so SectionsReordered stays false
	return types.TailoringChanges{
		SummaryModified:  original.Summary != final.Summary,
		BulletsModified:  modified,
		BulletsReordered: out.BulletsReordered,
		SkillsReordered:  out.SkillsReordered,
	}
}

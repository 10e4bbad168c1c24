package mission

import "github.com/1970jjh/saudi/internal/domain/dataset"

// AssignedCards splits the 108-card information deck evenly across teams
// and returns the slice belonging to teamID (1-based). The floor
// arithmetic matches the reference app, so uneven divisions leave the
// remainder with the later teams.
func AssignedCards(teamID, maxTeams int) []string {
	if teamID < 1 || maxTeams < 1 || teamID > maxTeams {
		return nil
	}
	labels := dataset.InfoCardLabels()
	total := len(labels)
	start := (teamID - 1) * total / maxTeams
	end := teamID * total / maxTeams
	return labels[start:end]
}

// Cards returns the info cards assigned to the flow's selected team.
func (f *Flow) Cards() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return AssignedCards(f.selectedTeam, f.maxTeams)
}

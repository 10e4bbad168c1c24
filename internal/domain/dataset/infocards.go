package dataset

import "fmt"

// Info-card deck layout: four sections of 27 cards each.
const (
	infoCardSections       = 4
	infoCardRowsPerSection = 27
)

// InfoCardLabels returns the 108 information card labels (A-1 .. D-27)
// handed out to teams during the records step.
func InfoCardLabels() []string {
	labels := make([]string, 0, infoCardSections*infoCardRowsPerSection)
	for s := 0; s < infoCardSections; s++ {
		section := string(rune('A' + s))
		for row := 1; row <= infoCardRowsPerSection; row++ {
			labels = append(labels, fmt.Sprintf("%s-%d", section, row))
		}
	}
	return labels
}

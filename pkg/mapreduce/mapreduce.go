package mapreduce

import "github.com/dtnitsch/pickpocket/models"

// Map counts the tags of one section's records.
func Map(records []models.LinkRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, tag := range rec.Tags {
			counts[tag]++
		}
	}
	return counts
}

// Reduce aggregates a slice of tag count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for tag, count := range counts {
			finalResults[tag] += count
		}
	}

	return finalResults
}

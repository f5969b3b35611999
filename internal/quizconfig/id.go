package quizconfig

import "fmt"

// nextID returns "q<N>" where N starts at len(questions)+1 and increments
// until it does not collide with an existing id.
func nextID(questions []Question) string {
	taken := make(map[string]bool, len(questions))
	for _, q := range questions {
		taken[q.ID] = true
	}
	for n := len(questions) + 1; ; n++ {
		id := fmt.Sprintf("q%d", n)
		if !taken[id] {
			return id
		}
	}
}

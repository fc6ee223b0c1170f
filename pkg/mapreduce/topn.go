package mapreduce

import (
	"fmt"
	"sort"
)

// TopTags returns the n most used tags formatted as "tag:count" (e.g. "golang:12").
// Ties are broken alphabetically.
func TopTags(counts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	var ss []kv
	for k, v := range counts {
		if k != "" {
			ss = append(ss, kv{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	tags := make([]string, limit)
	for i := 0; i < limit; i++ {
		tags[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return tags
}

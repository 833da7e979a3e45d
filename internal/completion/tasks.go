// ABOUTME: Markdown task-list parser for tasks.md completion validation
// ABOUTME: Recognizes checkbox lines with optional T-prefixed task identifiers

package completion

import (
	"bufio"
	"regexp"
	"strings"
)

// Task is one parsed entry from a tasks.md checklist.
type Task struct {
	ID          string
	Description string
	Done        bool
}

// taskLine matches "- [ ] T001 description" and "- [x] description" forms.
var taskLine = regexp.MustCompile(`^\s*[-*]\s+\[([ xX])\]\s+(.+)$`)

var taskIDPrefix = regexp.MustCompile(`^(T\d+)\b[:.]?\s*`)

// ParseTasks extracts checklist tasks from markdown content. Lines that do
// not look like checklist entries are ignored; an empty result is valid
// output, the caller decides whether it means "not yet complete".
func ParseTasks(content string) []Task {
	var tasks []Task
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		m := taskLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		task := Task{Done: m[1] != " "}
		rest := strings.TrimSpace(m[2])
		if idm := taskIDPrefix.FindStringSubmatch(rest); idm != nil {
			task.ID = idm[1]
			rest = strings.TrimSpace(rest[len(idm[0]):])
		}
		task.Description = rest
		if task.Description == "" && task.ID == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

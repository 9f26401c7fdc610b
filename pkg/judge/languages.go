package judge

import "strings"

// LanguageTable is an immutable id to display-name mapping.
type LanguageTable struct {
	names map[int]string
	ids   map[string]int
}

// NewLanguageTable copies the given entries into a read-only table. Aliases map short editor
// names such as "python" onto an id and never shadow a full display name.
func NewLanguageTable(entries map[int]string, aliases map[string]int) *LanguageTable {
	table := &LanguageTable{
		names: make(map[int]string, len(entries)),
		ids:   make(map[string]int, len(entries)),
	}
	for id, name := range entries {
		name = strings.TrimSpace(name)
		if id <= 0 || name == "" {
			continue
		}
		table.names[id] = name
		table.ids[strings.ToLower(name)] = id
	}
	for alias, id := range aliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		if _, known := table.names[id]; !known || key == "" {
			continue
		}
		if _, taken := table.ids[key]; !taken {
			table.ids[key] = id
		}
	}
	return table
}

// Name returns the display name registered for id.
func (t *LanguageTable) Name(id int) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.names[id]
	return name, ok
}

// ID returns the identifier registered for a display name or alias, case-insensitively.
func (t *LanguageTable) ID(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.ids[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Len returns the number of entries.
func (t *LanguageTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// DefaultLanguages lists the Judge0 CE languages offered in the editor.
func DefaultLanguages() map[int]string {
	return map[int]string{
		45: "Assembly (NASM 2.14.02)",
		46: "Bash (5.0.0)",
		48: "C (GCC 7.4.0)",
		49: "C (GCC 8.3.0)",
		50: "C (GCC 9.2.0)",
		51: "C# (Mono 6.6.0.161)",
		52: "C++ (GCC 7.4.0)",
		53: "C++ (GCC 8.3.0)",
		54: "C++ (GCC 9.2.0)",
		60: "Go (1.13.5)",
		62: "Java (OpenJDK 13.0.1)",
		63: "JavaScript (Node.js 12.14.0)",
		68: "PHP (7.4.1)",
		70: "Python (2.7.17)",
		71: "Python (3.8.1)",
		72: "Ruby (2.7.0)",
		73: "Rust (1.40.0)",
		74: "TypeScript (3.7.4)",
		78: "Kotlin (1.3.70)",
		80: "R (4.0.0)",
		81: "Scala (2.13.2)",
		82: "SQL (SQLite 3.27.2)",
		83: "Swift (5.2.3)",
	}
}

// DefaultAliases maps the short names the editor sends onto the current default versions.
func DefaultAliases() map[string]int {
	return map[string]int{
		"bash":       46,
		"c":          50,
		"csharp":     51,
		"c#":         51,
		"cpp":        54,
		"c++":        54,
		"go":         60,
		"golang":     60,
		"java":       62,
		"javascript": 63,
		"js":         63,
		"php":        68,
		"python":     71,
		"python3":    71,
		"ruby":       72,
		"rust":       73,
		"typescript": 74,
		"ts":         74,
		"kotlin":     78,
		"scala":      81,
		"sql":        82,
		"swift":      83,
	}
}

package curation

import (
	"fmt"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

type pathwayStop struct {
	key        string
	title      string
	summary    string
	topics     []string
	difficulty learning.Difficulty
	hours      int
}

// pathwayStops is the fixed route every learner walks; only the wording is templated per language pair.
var pathwayStops = []pathwayStop{
	{"syntax", "%s Syntax Essentials", "Map the %s syntax you know onto %s.", []string{"Variables", "Operators", "Control flow"}, learning.Beginner, 3},
	{"types", "Types and Data Structures", "How %s types and collections differ from %s.", []string{"Primitive types", "Collections", "Strings"}, learning.Beginner, 4},
	{"functions", "Functions and Modules", "Organizing %s code coming from %s.", []string{"Functions", "Modules and packages", "Error handling"}, learning.Beginner, 4},
	{"memory", "Memory and Pointers", "Ownership, references and lifetimes in %s compared to %s.", []string{"Pointers", "References", "Memory management"}, learning.Intermediate, 6},
	{"oop", "Abstraction and Composition", "Classes, interfaces and composition in %s versus %s.", []string{"Types and methods", "Interfaces", "Generics"}, learning.Intermediate, 5},
	{"concurrency", "Concurrency", "Concurrent programming in %s for %s developers.", []string{"Threads and tasks", "Synchronization", "Async patterns"}, learning.Advanced, 6},
	{"ecosystem", "Tooling and Ecosystem", "Building, testing and shipping %s projects with a %s mindset.", []string{"Build tools", "Testing", "Package management"}, learning.Advanced, 3},
}

// Pathway returns the ordered module list drawn as the learner's map.
func Pathway(req learning.CurationRequest) ([]learning.PathwayModule, error) {
	req = req.Normalized()
	if err := validateLanguages(req.CurrentLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}

	out := make([]learning.PathwayModule, 0, len(pathwayStops))
	for i, s := range pathwayStops {
		title := s.title
		desc := fmt.Sprintf(s.summary, req.TargetLanguage, req.CurrentLanguage)
		if s.key == "syntax" {
			title = fmt.Sprintf(s.title, req.TargetLanguage)
			desc = fmt.Sprintf(s.summary, req.CurrentLanguage, req.TargetLanguage)
		}
		out = append(out, learning.PathwayModule{
			ID:             learning.Slug(hostLabel(req.TargetLanguage) + " " + s.key),
			Order:          i + 1,
			Title:          title,
			Description:    desc,
			Topics:         append([]string(nil), s.topics...),
			Difficulty:     s.difficulty,
			EstimatedHours: scaleHours(s.hours, req.Difficulty()),
		})
	}
	return out, nil
}

// scaleHours shortens estimates for learners who start further along. Unknown levels keep the base estimate.
func scaleHours(h int, level learning.Difficulty) int {
	switch level {
	case learning.Intermediate:
		h = h * 3 / 4
	case learning.Advanced:
		h = h / 2
	}
	if h < 1 {
		h = 1
	}
	return h
}

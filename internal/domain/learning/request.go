package learning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CurationRequest drives prompt construction. It is immutable for the lifetime of a request.
type CurationRequest struct {
	CurrentLanguage   string `json:"currentLanguage"`
	TargetLanguage    string `json:"targetLanguage"`
	SkillLevel        string `json:"skillLevel"`
	ModuleTitle       string `json:"moduleTitle,omitempty"`
	ModuleDescription string `json:"moduleDescription,omitempty"`
	UserGoals         Goals  `json:"userGoals,omitempty"`
}

// Normalized trims every field and defaults the skill level to beginner.
func (r CurationRequest) Normalized() CurationRequest {
	out := CurationRequest{
		CurrentLanguage:   strings.TrimSpace(r.CurrentLanguage),
		TargetLanguage:    strings.TrimSpace(r.TargetLanguage),
		SkillLevel:        strings.TrimSpace(r.SkillLevel),
		ModuleTitle:       strings.TrimSpace(r.ModuleTitle),
		ModuleDescription: strings.TrimSpace(r.ModuleDescription),
		UserGoals:         r.UserGoals.Compact(),
	}
	if out.SkillLevel == "" {
		out.SkillLevel = string(Beginner)
	}
	return out
}

// Topic is the subject the request is about: the module title, then its description, then the target language.
func (r CurationRequest) Topic() string {
	switch {
	case strings.TrimSpace(r.ModuleTitle) != "":
		return strings.TrimSpace(r.ModuleTitle)
	case strings.TrimSpace(r.ModuleDescription) != "":
		return strings.TrimSpace(r.ModuleDescription)
	default:
		return strings.TrimSpace(r.TargetLanguage) + " fundamentals"
	}
}

// Difficulty maps the opaque skill level onto the enum, passing unknown levels through unchanged.
func (r CurationRequest) Difficulty() Difficulty {
	if d, ok := ParseDifficulty(r.SkillLevel); ok {
		return d
	}
	if s := strings.TrimSpace(r.SkillLevel); s != "" {
		return Difficulty(s)
	}
	return Beginner
}

// Goals accepts either a JSON string or an array of strings.
type Goals []string

func (g *Goals) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*g = nil
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*g = Goals{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("userGoals must be a string or an array of strings: %w", err)
	}
	*g = many
	return nil
}

func (g Goals) Compact() Goals {
	var out Goals
	for _, s := range g {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (g Goals) String() string {
	return strings.Join(g.Compact(), "; ")
}

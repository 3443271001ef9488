package curation

import (
	"fmt"
	"strings"

	"github.com/yungbote/langbridge-backend/internal/domain/learning"
)

const curatorSystemPrompt = `You are an expert curator of programming-language learning resources.
You help experienced developers transfer what they already know into a new language.
Answer with JSON only, exactly in the shape you are given. Do not add commentary.`

const curationShape = `{
  "resources": [
    {
      "type": "video | documentation | interactive | article | exercise",
      "title": "string",
      "url": "https://...",
      "duration": "string",
      "difficulty": "beginner | intermediate | advanced",
      "description": "string",
      "qualityScore": 0.0,
      "communityRating": 0.0,
      "whyRecommended": "string",
      "lastUpdated": "YYYY-MM-DD"
    }
  ]
}`

const optimizationShape = `{
  "sliced_content": {
    "title": "string",
    "key_concepts": ["string"],
    "difficulty_level": "beginner | intermediate | advanced",
    "estimated_time": "string",
    "time_segments": [{"start": "00:00", "end": "00:00", "topic": "string"}],
    "optimal_sections": ["string"],
    "learning_objectives": ["string"],
    "prerequisites": ["string"]
  },
  "ai_analysis": {
    "relevance_score": 0.0,
    "quality_score": 0.0,
    "transition_fit": "string",
    "community_rating": 0.0,
    "last_updated": "YYYY-MM-DD",
    "pros": ["string"],
    "cons": ["string"]
  }
}`

// CurationPrompt asks for a short list of resources for one pathway module.
func CurationPrompt(req learning.CurationRequest) (system, user string) {
	req = req.Normalized()
	var b strings.Builder
	fmt.Fprintf(&b, "Find the best learning resources for a %s developer learning %s.\n", req.CurrentLanguage, req.TargetLanguage)
	fmt.Fprintf(&b, "Skill level: %s\n", req.SkillLevel)
	fmt.Fprintf(&b, "Module: %s\n", req.Topic())
	if req.ModuleDescription != "" && req.ModuleDescription != req.Topic() {
		fmt.Fprintf(&b, "Module description: %s\n", req.ModuleDescription)
	}
	if goals := req.UserGoals.String(); goals != "" {
		fmt.Fprintf(&b, "Learner goals: %s\n", goals)
	}
	b.WriteString("\nReturn 4 to 6 resources mixing videos, official documentation, interactive tutorials and exercises. ")
	fmt.Fprintf(&b, "Prefer material that contrasts %s with %s.\n", req.CurrentLanguage, req.TargetLanguage)
	b.WriteString("Respond with JSON in this exact format:\n")
	b.WriteString(curationShape)
	return curatorSystemPrompt, b.String()
}

// OptimizationPrompt asks the model to slice one existing resource down to what matters for the transition.
func OptimizationPrompt(req learning.CurationRequest, ref learning.ResourceRef) (system, user string) {
	req = req.Normalized()
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this learning resource for a %s developer learning %s at the %s level.\n",
		req.CurrentLanguage, req.TargetLanguage, req.SkillLevel)
	if ref.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", ref.Title)
	}
	if ref.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", ref.URL)
	}
	if ref.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", ref.Type)
	}
	if ref.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", ref.Description)
	}
	b.WriteString("\nIdentify the sections worth studying, the key concepts, and how well it fits the transition.\n")
	b.WriteString("Respond with JSON in this exact format:\n")
	b.WriteString(optimizationShape)
	return curatorSystemPrompt, b.String()
}

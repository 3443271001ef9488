package learning

type DiscoveryRequest struct {
	URL             string `json:"url"`
	CurrentLanguage string `json:"currentLanguage"`
	TargetLanguage  string `json:"targetLanguage"`
	SkillLevel      string `json:"skillLevel"`
}

type DiscoveredContent struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Content       string       `json:"content"`
	Type          ResourceType `json:"type"`
	Difficulty    Difficulty   `json:"difficulty"`
	EstimatedTime string       `json:"estimatedTime"`
}

type DiscoveryMetadata struct {
	TotalResources int      `json:"total_resources"`
	Sources        []string `json:"sources"`
	ScrapingTime   string   `json:"scraping_time"`
}

type Discovery struct {
	Content   DiscoveredContent `json:"content"`
	Resources []Resource        `json:"resources"`
	Metadata  DiscoveryMetadata `json:"metadata"`
}

type SearchRequest struct {
	SearchQueries   []string `json:"searchQueries"`
	CurrentLanguage string   `json:"currentLanguage"`
	TargetLanguage  string   `json:"targetLanguage"`
	SkillLevel      string   `json:"skillLevel"`
}

package learning

// PathwayModule is one stop on the learning pathway the front-end draws as a map.
type PathwayModule struct {
	ID             string     `json:"id"`
	Order          int        `json:"order"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Topics         []string   `json:"topics"`
	Difficulty     Difficulty `json:"difficulty"`
	EstimatedHours int        `json:"estimatedHours"`
}

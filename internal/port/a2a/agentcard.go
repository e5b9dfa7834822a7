package a2a

// BuildAgentCard returns the AgentCard advertising the coordinator's skills.
// The skill list mirrors the capabilities the delegation loop can route to.
func BuildAgentCard(baseURL string) AgentCard {
	return AgentCard{
		Name:        "AgentRelay",
		Description: "Research coordinator that decomposes queries and delegates to specialist workers",
		URL:         baseURL,
		Version:     "0.1.0",
		Skills: []Skill{
			{
				ID:          "research",
				Name:        "Research",
				Description: "Gather findings for a free-text query",
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
			{
				ID:          "summarize",
				Name:        "Summarize",
				Description: "Condense research findings into a summary",
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
		Capabilities: struct {
			Streaming bool `json:"streaming"`
		}{Streaming: true},
	}
}

package entity

// Wire types for the generative text service (generateContent API shape).

type GenAIPart struct {
	Text string `json:"text"`
}

type GenAIContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []GenAIPart `json:"parts"`
}

type GenAIGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type GenAIGenerateRequest struct {
	Contents         []GenAIContent         `json:"contents"`
	GenerationConfig *GenAIGenerationConfig `json:"generationConfig,omitempty"`
}

type GenAICandidate struct {
	Content      GenAIContent `json:"content"`
	FinishReason string       `json:"finishReason,omitempty"`
}

type GenAIGenerateResponse struct {
	Candidates []GenAICandidate `json:"candidates"`
}

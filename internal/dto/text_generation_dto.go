package dto

// TextGenerationRequest is the inference wire body:
// {model, inputs, parameters{max_new_tokens, temperature, top_p, repetition_penalty, return_full_text}}.
type TextGenerationRequest struct {
	Model      string               `json:"model"`
	Inputs     string               `json:"inputs"`
	Parameters GenerationParameters `json:"parameters"`
}

type GenerationParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
	TopP              float64 `json:"top_p,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
	ReturnFullText    *bool   `json:"return_full_text,omitempty"`
	DoSample          bool    `json:"do_sample,omitempty"`
}

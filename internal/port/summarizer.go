package port

import "context"

// Summarizer condenses extracted text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// InstructedSummarizer summarizes text following a caller-supplied
// instruction. An empty instruction behaves like Summarizer.
type InstructedSummarizer interface {
	SummarizeWithInstruction(ctx context.Context, text, instruction string) (string, error)
}

// CompletionRequest is a single prompt sent to an LLM provider.
type CompletionRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Completer is the provider-specific half of summarization.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

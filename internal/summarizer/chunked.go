// Package summarizer condenses extracted document text with a language model.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"docworker/internal/domain"
	"docworker/internal/port"
)

// ChunkedSummarizer implements port.Summarizer and port.InstructedSummarizer. Text that fits in one chunk
// is summarized with a single completion; longer text is summarized chunk by
// chunk and the partial summaries are consolidated in a final completion.
type ChunkedSummarizer struct {
	completer port.Completer
	splitter  Splitter
	maxTokens int
	logger    zerolog.Logger
}

// NewChunkedSummarizer creates a ChunkedSummarizer.
func NewChunkedSummarizer(completer port.Completer, splitter Splitter, maxTokens int, logger zerolog.Logger) *ChunkedSummarizer {
	return &ChunkedSummarizer{
		completer: completer,
		splitter:  splitter,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

func (s *ChunkedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.SummarizeWithInstruction(ctx, text, "")
}

// SummarizeWithInstruction summarizes text following instruction in place of
// the default summary instructions. Section summaries of long text are
// unaffected; the instruction applies to the final summary.
func (s *ChunkedSummarizer) SummarizeWithInstruction(ctx context.Context, text, instruction string) (string, error) {
	instruction = strings.TrimSpace(instruction)
	chunks := s.splitter.Split(text)
	switch len(chunks) {
	case 0:
		return "", fmt.Errorf("summarizer.Summarize: %w", domain.ErrNoTextExtracted)
	case 1:
		return s.complete(ctx, BuildSummaryPrompt(chunks[0], instruction))
	}

	s.logger.Debug().Int("chunks", len(chunks)).Msg("summarizing in sections")

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := s.complete(ctx, BuildChunkPrompt(chunk, i+1, len(chunks)))
		if err != nil {
			return "", fmt.Errorf("section %d/%d: %w", i+1, len(chunks), err)
		}
		partials = append(partials, partial)
	}

	summary, err := s.complete(ctx, BuildConsolidatePrompt(strings.Join(partials, "\n\n"), instruction))
	if err != nil {
		return "", fmt.Errorf("consolidating sections: %w", err)
	}
	return summary, nil
}

func (s *ChunkedSummarizer) complete(ctx context.Context, prompt string) (string, error) {
	out, err := s.completer.Complete(ctx, port.CompletionRequest{
		System:    SystemPrompt,
		Prompt:    prompt,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", domain.ErrEmptySummary
	}
	return out, nil
}

package summarizer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docworker/internal/domain"
	"docworker/internal/port"
	"docworker/internal/summarizer"
	"docworker/mocks"
)

func promptContains(s string) interface{} {
	return mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Prompt, s)
	})
}

func TestChunkedSummarizer_SingleChunk(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.System == summarizer.SystemPrompt &&
			req.MaxTokens == 512 &&
			strings.Contains(req.Prompt, "<document>\nQuarterly report\n</document>")
	})).Return("  A quarterly report.  \n", nil).Once()

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(1000, 0), 512, zerolog.Nop())
	out, err := s.Summarize(context.Background(), "Quarterly report")

	require.NoError(t, err)
	assert.Equal(t, "A quarterly report.", out)
	completer.AssertExpectations(t)
}

func TestChunkedSummarizer_MapReduce(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, promptContains("section 1 of 2")).Return("first part", nil).Once()
	completer.On("Complete", mock.Anything, promptContains("section 2 of 2")).Return("second part", nil).Once()
	completer.On("Complete", mock.Anything, promptContains("<sections>\nfirst part\n\nsecond part\n</sections>")).
		Return("whole document", nil).Once()

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(10, 0), 256, zerolog.Nop())
	out, err := s.Summarize(context.Background(), "alpha beta\n\ngamma")

	require.NoError(t, err)
	assert.Equal(t, "whole document", out)
	completer.AssertExpectations(t)
	completer.AssertNumberOfCalls(t, "Complete", 3)
}

func TestChunkedSummarizer_SectionFailureStops(t *testing.T) {
	boom := errors.New("provider down")
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, promptContains("section 1 of 2")).Return("", boom).Once()

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(10, 0), 256, zerolog.Nop())
	_, err := s.Summarize(context.Background(), "alpha beta\n\ngamma")

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "section 1/2")
	completer.AssertNumberOfCalls(t, "Complete", 1)
}

func TestChunkedSummarizer_EmptyCompletion(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return(" \n ", nil)

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(1000, 0), 256, zerolog.Nop())
	_, err := s.Summarize(context.Background(), "some text")

	assert.ErrorIs(t, err, domain.ErrEmptySummary)
}

func TestChunkedSummarizer_BlankInput(t *testing.T) {
	completer := new(mocks.MockCompleter)

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(1000, 0), 256, zerolog.Nop())
	_, err := s.Summarize(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrNoTextExtracted)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestChunkedSummarizer_InstructionReplacesDefault(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Prompt, "<instructions>\nList every deadline as a bullet.\n</instructions>") &&
			!strings.Contains(req.Prompt, "at most three short paragraphs") &&
			strings.Contains(req.Prompt, "<document>\nPay by June 1.\n</document>")
	})).Return("- June 1", nil).Once()

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(1000, 0), 256, zerolog.Nop())
	out, err := s.SummarizeWithInstruction(context.Background(), "Pay by June 1.", "  List every deadline as a bullet.\n")

	require.NoError(t, err)
	assert.Equal(t, "- June 1", out)
	completer.AssertExpectations(t)
}

func TestChunkedSummarizer_InstructionAppliesToConsolidation(t *testing.T) {
	completer := new(mocks.MockCompleter)
	completer.On("Complete", mock.Anything, promptContains("section 1 of 2")).Return("first part", nil).Once()
	completer.On("Complete", mock.Anything, promptContains("section 2 of 2")).Return("second part", nil).Once()
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Prompt, "<sections>") && strings.Contains(req.Prompt, "One sentence only.")
	})).Return("one sentence", nil).Once()

	s := summarizer.NewChunkedSummarizer(completer, summarizer.NewSplitter(10, 0), 256, zerolog.Nop())
	out, err := s.SummarizeWithInstruction(context.Background(), "alpha beta\n\ngamma", "One sentence only.")

	require.NoError(t, err)
	assert.Equal(t, "one sentence", out)
	completer.AssertExpectations(t)
}

package summarizer

import "fmt"

// SystemPrompt frames every summarization call.
const SystemPrompt = `You summarize documents for an archive. Write in the document's language.
Be faithful to the source: no speculation, no information that is not in the text.
Respond with the summary only, without preamble or headings.`

const (
	defaultSummaryInstruction = `Write a concise summary of the following document in at most three short paragraphs.
Cover its purpose, the key facts and figures, and any conclusions or required actions.`

	defaultConsolidateInstruction = `Distill them into a single consolidated summary of at most three short paragraphs.`
)

// BuildSummaryPrompt asks for a summary of a document that fits in one
// request. A non-empty instruction replaces the default summary instructions.
func BuildSummaryPrompt(text, instruction string) string {
	if instruction == "" {
		instruction = defaultSummaryInstruction
	} else {
		instruction = operatorInstruction(instruction)
	}
	return fmt.Sprintf(`%s

<document>
%s
</document>`, instruction, text)
}

// BuildChunkPrompt asks for a summary of one section of a longer document.
func BuildChunkPrompt(text string, index, total int) string {
	return fmt.Sprintf(`The following is section %d of %d of a longer document.
Summarize this section in a few sentences, keeping names, dates, and figures.

<section>
%s
</section>`, index, total, text)
}

// BuildConsolidatePrompt asks for one summary built from per-section
// summaries. A non-empty instruction replaces the default instructions.
func BuildConsolidatePrompt(sections, instruction string) string {
	if instruction == "" {
		instruction = defaultConsolidateInstruction
	} else {
		instruction = operatorInstruction(instruction)
	}
	return fmt.Sprintf(`The following are summaries of consecutive sections of one document.
%s

<sections>
%s
</sections>`, instruction, sections)
}

func operatorInstruction(instruction string) string {
	return fmt.Sprintf(`Summarize the document following these instructions:

<instructions>
%s
</instructions>`, instruction)
}

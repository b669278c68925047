package domain

import "fmt"

// PromptLineage decides what the prompt of a new revision is built from.
type PromptLineage string

const (
	// LineageOriginal appends the revision to the project's original prompt.
	LineageOriginal PromptLineage = "original"
	// LineageChained appends the revision to the base version's prompt, so
	// every earlier revision stays in the text.
	LineageChained PromptLineage = "chained"
)

// ParseLineage maps a config value to a lineage, defaulting to LineageOriginal.
func ParseLineage(s string) PromptLineage {
	if PromptLineage(s) == LineageChained {
		return LineageChained
	}
	return LineageOriginal
}

// ComposeRevisionPrompt builds the stored prompt of a revision.
func ComposeRevisionPrompt(base, revision string) string {
	return fmt.Sprintf("%s\n\nRevision: %s", base, revision)
}

// RevisionPrompt picks the base text according to l and composes the prompt.
func (l PromptLineage) RevisionPrompt(p Project, baseVersion ProjectVersion, revision string) string {
	if l == LineageChained {
		return ComposeRevisionPrompt(baseVersion.Prompt, revision)
	}
	return ComposeRevisionPrompt(p.OriginalPrompt, revision)
}

package generation

import (
	"fmt"
	"strings"
)

// OutcomeKind tells whether the model produced a document or a fragment.
type OutcomeKind int

const (
	OutcomeWellFormed OutcomeKind = iota
	OutcomeWrappedFallback
)

func (k OutcomeKind) String() string {
	if k == OutcomeWrappedFallback {
		return "wrapped_fallback"
	}
	return "well_formed"
}

// Outcome is the HTML that gets stored plus how it was obtained.
type Outcome struct {
	Kind OutcomeKind
	HTML string
}

const (
	TitleGenerated = "Generated Website"
	TitleRevised   = "Revised Website"
)

const fallbackSkeleton = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; }
    </style>
</head>
<body>
    <div class="container">
        %s
    </div>
</body>
</html>`

// StripFences removes every markdown code fence marker and trims the result.
func StripFences(raw string) string {
	out := strings.ReplaceAll(raw, "```html", "")
	out = strings.ReplaceAll(out, "```", "")
	return strings.TrimSpace(out)
}

// Finalize cleans raw model output. Output with neither a doctype nor an
// opening html tag is wrapped in a minimal page titled title. No other
// validation is done.
func Finalize(raw, title string) Outcome {
	cleaned := StripFences(raw)
	if strings.Contains(cleaned, "<!DOCTYPE html>") || strings.Contains(cleaned, "<html") {
		return Outcome{Kind: OutcomeWellFormed, HTML: cleaned}
	}
	return Outcome{Kind: OutcomeWrappedFallback, HTML: fmt.Sprintf(fallbackSkeleton, title, cleaned)}
}

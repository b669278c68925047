package generation

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultInitialTemplate = `Create a complete, responsive HTML website based on this description: "{{.Prompt}}"

Requirements:
- Generate a complete HTML document with DOCTYPE, head, and body
- Include responsive CSS using Tailwind CSS classes or inline styles
- Make it mobile-friendly and visually appealing
- Include semantic HTML structure
- Add appropriate meta tags and title
- Use modern CSS Grid/Flexbox for layouts
- Include hover effects and smooth transitions
- Make it production-ready
- Ensure accessibility with proper alt tags, ARIA labels, and semantic elements
- Use professional color schemes and typography
- Include a favicon link (use a generic one)

Generate ONLY the complete HTML code, no explanations or markdown formatting.`

const defaultRevisionTemplate = `You are revising an existing website. Here's the current HTML:

{{.BaseHTML}}

User feedback for revision: "{{.RevisionPrompt}}"

Requirements:
- Modify the existing HTML based on the user's feedback
- Keep the same overall structure but implement the requested changes
- Maintain responsive design and modern styling
- Ensure the changes are well-integrated with the existing design
- Generate ONLY the complete updated HTML code, no explanations or markdown formatting
- Make sure to preserve any good elements while implementing the requested changes

Generate the complete updated HTML document:`

// Templates renders the instructions sent to the model.
type Templates struct {
	initial  *template.Template
	revision *template.Template
}

type InitialInput struct {
	Prompt string
}

type RevisionInput struct {
	BaseHTML       string
	RevisionPrompt string
}

// templateFile is the YAML shape accepted by LoadTemplates. Empty keys keep the defaults.
type templateFile struct {
	Initial  string `yaml:"initial"`
	Revision string `yaml:"revision"`
}

func DefaultTemplates() *Templates {
	t, err := NewTemplates(defaultInitialTemplate, defaultRevisionTemplate)
	if err != nil {
		panic(err)
	}
	return t
}

func NewTemplates(initial, revision string) (*Templates, error) {
	it, err := template.New("initial").Parse(initial)
	if err != nil {
		return nil, fmt.Errorf("parse initial template: %w", err)
	}
	rt, err := template.New("revision").Parse(revision)
	if err != nil {
		return nil, fmt.Errorf("parse revision template: %w", err)
	}
	return &Templates{initial: it, revision: rt}, nil
}

// LoadTemplates reads overrides from a YAML file. An empty path returns the defaults.
func LoadTemplates(path string) (*Templates, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode templates file: %w", err)
	}
	if f.Initial == "" {
		f.Initial = defaultInitialTemplate
	}
	if f.Revision == "" {
		f.Revision = defaultRevisionTemplate
	}
	return NewTemplates(f.Initial, f.Revision)
}

func (t *Templates) Initial(in InitialInput) (string, error) {
	return render(t.initial, in)
}

func (t *Templates) Revision(in RevisionInput) (string, error) {
	return render(t.revision, in)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Package prompt renders the question asked for each field. The
// Prompter is an external collaborator from the engine's point of view:
// a turn commits no session state until the prompt for the next field
// has been produced.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"onboard/internal/onboarding/registry"
)

// Prompt is one rendered question.
type Prompt struct {
	Field          string   `json:"field_name"`
	Text           string   `json:"prompt"`
	ExpectedFormat string   `json:"expected_format"`
	ValidationHint string   `json:"validation_hint,omitempty"`
	FollowUps      []string `json:"follow_up_questions,omitempty"`
}

// Prompter produces the question for the next field. Implementations
// may call out to an external generation service; errors are retryable
// and must not advance the session.
type Prompter interface {
	PromptFor(ctx context.Context, spec registry.FieldSpec, collected map[string]string, attempts int) (Prompt, error)
}

// TemplatePrompter renders questions from static templates,
// personalized with the business name (or the contact name derived from
// a collected email). It never fails.
type TemplatePrompter struct{}

func NewTemplatePrompter() *TemplatePrompter {
	return &TemplatePrompter{}
}

var questions = map[string]string{
	registry.FieldBusinessName: "What is the name of your business?",
	registry.FieldEmail:        "What email address should we use to reach %s?",
	registry.FieldPhone:        "What is the best mobile number to reach %s?",
	registry.FieldBusinessType: "What type of business is %s? For example food manufacturing, trading, or services.",
	registry.FieldAddress:      "What is the registered address of %s?",
	registry.FieldPincode:      "What is the PIN code of that address?",
	registry.FieldState:        "Which state is %s registered in?",
	registry.FieldGST:          "Could you please provide the GST number of %s?",
	registry.FieldPAN:          "Could you please provide the PAN of %s?",
	registry.FieldFSSAI:        "Since %s handles food, could you please provide its FSSAI license number?",
	registry.FieldDrugLicense:  "Since %s deals in pharmaceuticals, could you please provide its drug license number?",
}

var followUps = map[string][]string{
	registry.FieldBusinessType: {
		"Does your business manufacture products or trade them?",
		"Do you handle food or pharmaceutical products?",
	},
	registry.FieldGST: {
		"You can find the GST number on your registration certificate.",
	},
}

func (p *TemplatePrompter) PromptFor(_ context.Context, spec registry.FieldSpec, collected map[string]string, attempts int) (Prompt, error) {
	subject := addressee(collected)

	text, ok := questions[spec.Name]
	if !ok {
		text = fmt.Sprintf("Could you please provide your %s?", strings.ReplaceAll(spec.Name, "_", " "))
	} else if strings.Contains(text, "%s") {
		text = fmt.Sprintf(text, subject)
	}

	out := Prompt{
		Field:          spec.Name,
		Text:           text,
		ExpectedFormat: spec.Kind.ExpectedFormat(),
		FollowUps:      followUps[spec.Name],
	}
	if attempts > 0 {
		out.ValidationHint = fmt.Sprintf("The previous answer did not match the expected format (%s). Please check and try again.", out.ExpectedFormat)
	}
	return out, nil
}

// addressee picks how to refer to the producer: business name if
// collected, else a name derived from the email, else a neutral phrase.
func addressee(collected map[string]string) string {
	if name := collected[registry.FieldBusinessName]; name != "" {
		return name
	}
	if derived := DeriveNameFromEmail(collected[registry.FieldEmail]); derived != "" {
		return derived
	}
	return "your business"
}

// DeriveNameFromEmail turns the local part of an email into a display
// name: dots and underscores become spaces, digits are dropped, words
// are title-cased. Returns "" when nothing usable remains.
func DeriveNameFromEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	local := email[:at]
	local = strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '_' || r == '-' || r == '+':
			return ' '
		case r >= '0' && r <= '9':
			return -1
		default:
			return r
		}
	}, local)

	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/onboarding/registry"
)

func TestPromptFor_PersonalizesWithBusinessName(t *testing.T) {
	p := NewTemplatePrompter()
	reg := registry.Default()

	spec, ok := reg.Lookup(registry.FieldGST)
	require.True(t, ok)

	got, err := p.PromptFor(context.Background(), spec, map[string]string{
		registry.FieldBusinessName: "ABC Foods",
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, registry.FieldGST, got.Field)
	assert.Contains(t, got.Text, "ABC Foods")
	assert.NotEmpty(t, got.ExpectedFormat)
	assert.Empty(t, got.ValidationHint)
}

func TestPromptFor_FallsBackToEmailName(t *testing.T) {
	p := NewTemplatePrompter()
	reg := registry.Default()

	spec, ok := reg.Lookup(registry.FieldPhone)
	require.True(t, ok)

	got, err := p.PromptFor(context.Background(), spec, map[string]string{
		registry.FieldEmail: "ramesh.kumar@abcfoods.in",
	}, 0)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Ramesh Kumar")
}

func TestPromptFor_RetryCarriesHint(t *testing.T) {
	p := NewTemplatePrompter()
	reg := registry.Default()

	spec, ok := reg.Lookup(registry.FieldPAN)
	require.True(t, ok)

	got, err := p.PromptFor(context.Background(), spec, map[string]string{}, 2)
	require.NoError(t, err)
	assert.Contains(t, got.ValidationHint, got.ExpectedFormat)
}

func TestPromptFor_UnknownFieldGetsGenericQuestion(t *testing.T) {
	p := NewTemplatePrompter()

	got, err := p.PromptFor(context.Background(), registry.FieldSpec{Name: "warehouse_capacity"}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "Could you please provide your warehouse capacity?", got.Text)
}

func TestDeriveNameFromEmail(t *testing.T) {
	cases := map[string]string{
		"ramesh.kumar@abcfoods.in": "Ramesh Kumar",
		"priya_sharma@x.com":       "Priya Sharma",
		"dev42@x.com":              "Dev",
		"12345@x.com":              "",
		"@x.com":                   "",
		"not-an-email":             "",
	}
	for email, want := range cases {
		assert.Equal(t, want, DeriveNameFromEmail(email), "email %q", email)
	}
}

package llm

import "strings"

// Placeholders recognised in prompt templates. Everything else in a
// template, role-delimiter tokens included, is passed through verbatim.
const (
	PlaceholderContext = "{context}"
	PlaceholderQuery   = "{query}"
)

// Render substitutes the two placeholders in a template. Substituted text
// is not rescanned, so placeholder-like sequences inside context or query
// stay literal.
func Render(template, context, query string) string {
	return strings.NewReplacer(
		PlaceholderContext, context,
		PlaceholderQuery, query,
	).Replace(template)
}

// Package prompt renders the review instructions sent to the model.
package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

type Template string

const (
	// TemplateProtocol walks the model through an explicit four step review.
	TemplateProtocol Template = "protocol"
	// TemplateConcise carries the same guidance without the step breakdown.
	TemplateConcise Template = "concise"
)

const documentLabel = "Document: "

const criteriaPlaceholder = "{criteria_list}"

const protocolTemplate = `
You are a specialized report validator that analyzes report for compliance with predefined criteria. You will receive report in markdown format and evaluate them against relevant criteria from this list:

{criteria_list}

Analyse the report in the following steps:
1. First check the entire document before evaluating them.
2. Break down the document into sections using the markdown headers.
3. Evaluate each sections using criterias from the criteria list and state all non-compliant found in the section.
4. Suggest corrections from each non-compliant found in the section.

Important guidelines:
- Do not flag missing criteria checks when the section does not contain relevant content to evaluate.
- Provide specific examples and locations when flagging non-compliance.
- Identify all the non-compliant cases.
- If a criterion requires cross-referencing with other sections (e.g., table calculations), note that validation is pending until all relevant sections are available
- Focus on constructive feedback and suggest corrections when possible
- You must check the entire report

For each validation, respond with:
1. The section that was checked, not the criteria
2. Only Specific details for any failures
3. Suggestions for corrections
`

const conciseTemplate = `
You are a specialized report validator that analyzes report for compliance with predefined criteria. You will receive report in markdown format and evaluate them against relevant criteria from this list:

{criteria_list}

Important guidelines:
- Do not flag missing criteria checks when the section does not contain relevant content to evaluate
- Provide specific examples and locations when flagging non-compliance
- If a criterion requires cross-referencing with other sections (e.g., table calculations), note that validation is pending until all relevant sections are available
- Focus on constructive feedback and suggest corrections when possible
- You must check the entire report

For each validation, respond with:
1. The section CHECKED, not the criteria
2. Only Specific details for any failures
3. Suggestions for corrections
`

func ParseTemplate(name string) (Template, error) {
	switch t := Template(name); t {
	case TemplateProtocol, TemplateConcise:
		return t, nil
	case "":
		return TemplateProtocol, nil
	default:
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
}

// FormatCriteria renders criteria as "1. first\n2. second", numbered from 1
// in input order.
func FormatCriteria(criteria []string) string {
	var b strings.Builder
	for i, c := range criteria {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(c)
	}
	return b.String()
}

// Build embeds the numbered criteria into the template. Unknown templates
// fall back to the protocol template.
func Build(t Template, criteria []string) string {
	body := protocolTemplate
	if t == TemplateConcise {
		body = conciseTemplate
	}
	return strings.Replace(body, criteriaPlaceholder, FormatCriteria(criteria), 1)
}

// UserContent labels the document text for the user role.
func UserContent(documentText string) string {
	return documentLabel + documentText
}

package prompt

import (
	"strconv"
	"strings"
	"testing"
)

func TestFormatCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria []string
		want     string
	}{
		{name: "single", criteria: []string{"Datetime Format MUST follow dd-mmm-yyyy"}, want: "1. Datetime Format MUST follow dd-mmm-yyyy"},
		{name: "ordered", criteria: []string{"A", "B", "C"}, want: "1. A\n2. B\n3. C"},
		{name: "duplicates and empties kept", criteria: []string{"A", "", "A"}, want: "1. A\n2. \n3. A"},
		{name: "none", criteria: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCriteria(tt.criteria); got != tt.want {
				t.Errorf("FormatCriteria() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildEmbedsEachCriterionOnce(t *testing.T) {
	criteria := []string{"Currency rounded", "Datetime format", "Tables labeled"}

	for _, tmpl := range []Template{TemplateProtocol, TemplateConcise} {
		t.Run(string(tmpl), func(t *testing.T) {
			out := Build(tmpl, criteria)
			if strings.Contains(out, criteriaPlaceholder) {
				t.Fatalf("placeholder left in output")
			}

			last := -1
			for i, c := range criteria {
				line := "\n" + strconv.Itoa(i+1) + ". " + c + "\n"
				if n := strings.Count(out, line); n != 1 {
					t.Fatalf("criterion %q appears %d times", line, n)
				}
				pos := strings.Index(out, line)
				if pos < last {
					t.Errorf("criterion %q out of order", c)
				}
				last = pos
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	criteria := []string{"A", "B"}
	if Build(TemplateProtocol, criteria) != Build(TemplateProtocol, criteria) {
		t.Fatal("Build should be stable for the same input")
	}
	if Build(TemplateProtocol, criteria) == Build(TemplateConcise, criteria) {
		t.Fatal("templates should differ")
	}
}

func TestProtocolTemplateHasSteps(t *testing.T) {
	out := Build(TemplateProtocol, []string{"A"})
	if !strings.Contains(out, "Analyse the report in the following steps:") {
		t.Errorf("protocol template should carry the step breakdown")
	}
	if strings.Contains(Build(TemplateConcise, []string{"A"}), "Analyse the report in the following steps:") {
		t.Errorf("concise template should not carry the step breakdown")
	}
}

func TestParseTemplate(t *testing.T) {
	if got, err := ParseTemplate(""); err != nil || got != TemplateProtocol {
		t.Errorf("ParseTemplate(\"\") = %q, %v", got, err)
	}
	if got, err := ParseTemplate("concise"); err != nil || got != TemplateConcise {
		t.Errorf("ParseTemplate(concise) = %q, %v", got, err)
	}
	if _, err := ParseTemplate("verbose"); err == nil {
		t.Errorf("expected error for unknown template")
	}
}

func TestUserContent(t *testing.T) {
	if got := UserContent("Report dated 2024-05-01"); got != "Document: Report dated 2024-05-01" {
		t.Errorf("UserContent() = %q", got)
	}
}

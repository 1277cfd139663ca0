package criteria

var defaultCriteria = []Criterion{
	{ID: "toc-annexes", Text: "Table of Contents includes annexes and section headers"},
	{ID: "headers-capitalized-bold", Text: "The headers should be capitalized and BOLDED"},
	{ID: "cost-whole-numbers", Text: "Decimal points are round off to whole number in Cost figures"},
	{ID: "non-cost-two-decimals", Text: "Non-cost related figures MUST BE rounded off to 2 decimal places"},
	{ID: "currency-whole-numbers", Text: "Currency found outside of tables should be rounded off to whole numbers", Default: true},
	{ID: "datetime-format", Text: "Datetime Format MUST follow dd-mmm-yyyy", Default: true},
	{ID: "grammar", Text: "Grammar check"},
	{ID: "sentence-structure", Text: "Sentence Structure check"},
	{ID: "relevant-sections", Text: "Relevant sections included based on Report Title (Include Basic AOR Information if Supplementary AOR Submission)"},
	{ID: "section-typography", Text: "Section Typography (Bold, Underline, Italic, Strikethrough, Size)"},
	{ID: "diagram-labels", Text: "Diagrams labeled correctly and chronologically (Figure 1.0, 1.2)"},
	{ID: "table-labels", Text: "Every table in the document should have a label or description directly before the table and the format of the table should look like the following: 'Table $Number: $Description', including the semicolon, where $Number and $Description are placeholders for actual numbers and descriptions respectively, an example would be 'Table 1: Project schedule'. Also check if there are missing labels or descriptions for each of the tables."},
	{ID: "list-order", Text: "Check every list in the document if the order is correct and in sequential order"},
	{ID: "acronyms", Text: "Check that for every acryonym in the document are spelt out in full the first time it is used"},
	{ID: "table-cost-decimals", Text: "For every table in the document that has cost, get every line item's cost as well as the total stated, check if these are in two decimal places", Default: true},
	{ID: "required-sections", Text: "The report should include the following section headers: 'Project Cashflow Phasing, AIM, Background, Business Case and Benefit of Project, Scope of Project, Total Cost of Project, Feasible Approaches and Preferred Approach, Key Performance Indicators, Implementation Approach, Project Team Structure, Project Schedule, Approval Sought, Annexes, Roles and Responsibilities, Key Metrics, Governance Structure, and Timeline', indicate the missing sections.", Default: true},
	{ID: "table-totals", Text: "For every table in the document regarding cost, get every line item's cost and check if the total amount stated for each table tallies with the total sum indicated as 'Total' in that table, do not take reference to values outside of the Table for this calculation.", Default: true},
	{ID: "cross-table-calculations", Text: "Spot check calculations for numbers across 2 different tables"},
}

// DefaultCatalog returns the built-in report review rules.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultCriteria)
	if err != nil {
		panic(err)
	}
	return c
}

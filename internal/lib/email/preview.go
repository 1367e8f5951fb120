package email

// PreviewData holds sample variables per template, for previews and template tests.
var PreviewData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserName": "Alice",
	},
}

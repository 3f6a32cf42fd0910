package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting string // Dynamic greeting based on recipient count
	Product  string
	Year     int
	RunID    string
	Status   string // "all rooms done" or "2 of 5 rooms failed"
	Rooms    []RoomReport
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// DefaultTemplate is the standard run summary email
var DefaultTemplate = EmailTemplate{
	SubjectFormat: "{{.Product}} {{.Year}}: talk uploads ({{.Status}})",
	PlainText: `{{.Greeting}}

The {{.Product}} {{.Year}} videos have been processed: {{.Status}}.
{{range .Rooms}}
{{.Room}}: {{.State}} ({{.Uploaded}}/{{.Total}} uploaded){{if .Error}}
  error: {{.Error}}{{end}}{{range .Videos}}
  - {{.Title}}: {{.URL}}{{end}}
{{end}}
Run {{.RunID}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
The {{.Product}} {{.Year}} videos have been processed: {{.Status}}.<br>
{{range .Rooms}}<h3>{{.Room}}: {{.State}} ({{.Uploaded}}/{{.Total}} uploaded)</h3>{{if .Error}}
<p style="color:#b00">{{.Error}}</p>{{end}}<ul>{{range .Videos}}
<li><a href="{{.URL}}">{{.Title}}</a></li>{{end}}</ul>
{{end}}<small>Run {{.RunID}}</small></div>`,
}

// FormatGreeting creates an appropriate greeting based on number of recipients
// 1 recipient: "Dear John,"
// 2 recipients: "Dear John & Jane,"
// 3+ recipients: "Hey Everyone!"
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		name := getFirstName(recipients[0].Name)
		return fmt.Sprintf("Dear %s,", name)
	case 2:
		name1 := getFirstName(recipients[0].Name)
		name2 := getFirstName(recipients[1].Name)
		return fmt.Sprintf("Dear %s & %s,", name1, name2)
	default:
		return "Hey Everyone!"
	}
}

// getFirstName extracts the first name from a full name
func getFirstName(fullName string) string {
	if fullName == "" {
		return "Friend"
	}
	for i, c := range fullName {
		if c == ' ' {
			return fullName[:i]
		}
	}
	return fullName
}

// FormatStatus describes the outcome of the run in a few words
func FormatStatus(total, failed int) string {
	switch {
	case failed == 0:
		return "all rooms done"
	case failed == total:
		return "every room failed"
	default:
		return fmt.Sprintf("%d of %d rooms failed", failed, total)
	}
}

// NewTemplateData builds the data for a summary request
func NewTemplateData(req *SummaryRequest) TemplateData {
	return TemplateData{
		Greeting: FormatGreeting(req.To),
		Product:  req.Product,
		Year:     req.Year,
		RunID:    req.RunID,
		Status:   FormatStatus(len(req.Rooms), req.Failed()),
		Rooms:    req.Rooms,
	}
}

// RenderSubject renders the email subject using the template
func (t *EmailTemplate) RenderSubject(data TemplateData) (string, error) {
	return renderTemplate("subject", t.SubjectFormat, data)
}

// RenderPlainText renders the plain text email body
func (t *EmailTemplate) RenderPlainText(data TemplateData) (string, error) {
	return renderTemplate("plaintext", t.PlainText, data)
}

// RenderHTML renders the HTML email body
func (t *EmailTemplate) RenderHTML(data TemplateData) (string, error) {
	return renderTemplate("html", t.HTML, data)
}

func renderTemplate(name, tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

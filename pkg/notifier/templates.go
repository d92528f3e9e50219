package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/mitchellh/go-wordwrap"
)

// Template names.
const (
	TemplateConfirmed    = "confirmed"
	TemplateUnsubscribed = "unsubscribed"
)

// BodyWidth is the column at which rendered bodies are wrapped.
const BodyWidth = 70

// SubscriptionData is the data passed to the subscription templates. Values
// are raw; templates escape them.
type SubscriptionData struct {
	Title           string
	Domain          string
	Email           string
	VisitorIP       string
	Date            string
	UnsubscribeLink string
}

//go:embed templates/*
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{ //nolint: gochecknoglobals
	"escape": html.EscapeString,
	"trim":   strings.TrimSpace,
}).ParseFS(templateFS, "templates/*.txt"))

type templateRenderer struct{}

// NewTemplateRenderer returns a Renderer over the embedded templates. A
// template "<name>" is made of "<name>_subject.txt" and "<name>.txt".
func NewTemplateRenderer() Renderer {
	return templateRenderer{}
}

// Render returns the single-line subject and the body wrapped at BodyWidth.
func (templateRenderer) Render(name string, data any) (string, string, error) {
	subject, err := execute(name+"_subject.txt", data)
	if err != nil {
		return "", "", err
	}

	body, err := execute(name+".txt", data)
	if err != nil {
		return "", "", err
	}

	return strings.Join(strings.Fields(subject), " "),
		wordwrap.WrapString(strings.TrimRight(body, "\n"), BodyWidth),
		nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("could not render template %s: %w", name, err)
	}

	return buf.String(), nil
}

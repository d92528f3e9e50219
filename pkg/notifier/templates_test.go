package notifier_test

import (
	"strings"
	"testing"

	"domainwatch/pkg/notifier"

	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_Confirmed(t *testing.T) {
	r := notifier.NewTemplateRenderer()

	subject, body, err := r.Render(notifier.TemplateConfirmed, notifier.SubscriptionData{
		Title:           "Certificate Expiry Monitor",
		Domain:          "example.com ",
		Email:           "a@example.com",
		VisitorIP:       "5.6.7.8",
		Date:            "2024-01-02 03:04:05 UTC",
		UnsubscribeLink: "https://certs.example.org/unsubscribe.php?id=abc123",
	})
	require.NoError(t, err)
	require.Equal(t, "Certificate Expiry Monitor subscription confirmed for example.com.", subject)
	require.Equal(t, "Hello,\n\n"+
		"Someone, hopefully you, has confirmed the subscription of their\n"+
		"website to the Certificate Expiry Monitor.\n\n"+
		"Domain: example.com\n"+
		"Email: a@example.com\n"+
		"IP subscription confirmed from: 5.6.7.8\n"+
		"Date subscribed confirmed: 2024-01-02 03:04:05 UTC\n\n"+
		"To unsubscribe, visit:\n"+
		"https://certs.example.org/unsubscribe.php?id=abc123", body)
}

func TestTemplateRenderer_EscapesValues(t *testing.T) {
	r := notifier.NewTemplateRenderer()

	subject, body, err := r.Render(notifier.TemplateUnsubscribed, notifier.SubscriptionData{
		Title:     "Monitor",
		Domain:    "<b>evil</b>.com",
		Email:     `"x"@example.com`,
		VisitorIP: "1.1.1.1",
		Date:      "2024-01-02 03:04:05 UTC",
	})
	require.NoError(t, err)
	require.Equal(t, "Monitor subscription removed for &lt;b&gt;evil&lt;/b&gt;.com.", subject)
	require.Contains(t, body, "Domain: &lt;b&gt;evil&lt;/b&gt;.com\n")
	require.Contains(t, body, "Email: &#34;x&#34;@example.com\n")
	require.NotContains(t, body, "<b>")

	for _, line := range strings.Split(body, "\n") {
		require.LessOrEqual(t, len(line), notifier.BodyWidth, line)
	}
}

func TestTemplateRenderer_SubjectIsSingleLine(t *testing.T) {
	r := notifier.NewTemplateRenderer()

	subject, _, err := r.Render(notifier.TemplateConfirmed, notifier.SubscriptionData{
		Title:  "Monitor\r\nBcc: victim@example.com",
		Domain: "example.com",
	})
	require.NoError(t, err)
	require.NotContains(t, subject, "\n")
	require.NotContains(t, subject, "\r")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, err := notifier.NewTemplateRenderer().Render("missing", notifier.SubscriptionData{})
	require.Error(t, err)
}

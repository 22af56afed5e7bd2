package notify

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/dex/internal/model"
	gomponents "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

const emailCSS = `
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8fafc; }
.container { background: white; border-radius: 12px; padding: 30px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1); }
.header { text-align: center; margin-bottom: 30px; }
.pokemon-image { width: 200px; height: 200px; object-fit: contain; border-radius: 12px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 20px; margin: 20px auto; display: block; }
.pokemon-name { font-size: 28px; font-weight: bold; color: #2d3748; margin: 20px 0; text-transform: capitalize; }
.cta-button { display: inline-block; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; text-decoration: none; padding: 15px 30px; border-radius: 8px; font-weight: bold; font-size: 16px; margin: 20px 0; }
.footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #e2e8f0; font-size: 14px; color: #718096; text-align: center; }
.unsubscribe { color: #a0aec0; text-decoration: none; font-size: 12px; }
`

// Email is a rendered notification ready to send.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// Subject returns the notification subject for an entry.
func Subject(entry model.Entry) string {
	return fmt.Sprintf("🎉 New Pokemon Added: %s!", entry.DisplayName())
}

// EntryURL returns the site page for an entry.
func EntryURL(siteURL string, entry model.Entry) string {
	return strings.TrimRight(siteURL, "/") + "/pokemon/" + entry.Name
}

// PreferencesURL returns the page where users turn notifications off.
func PreferencesURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/profile"
}

// RenderEmail builds the HTML and plain-text bodies for one recipient.
func RenderEmail(entry model.Entry, recipient model.Profile, siteURL string) (Email, error) {
	var b strings.Builder
	if err := emailPage(entry, recipient.Greeting(), siteURL).Render(&b); err != nil {
		return Email{}, fmt.Errorf("render email: %w", err)
	}

	text, err := PlainText(b.String())
	if err != nil {
		return Email{}, err
	}

	return Email{
		Subject: Subject(entry),
		HTML:    b.String(),
		Text:    text,
	}, nil
}

func emailPage(entry model.Entry, greeting, siteURL string) gomponents.Node {
	name := entry.DisplayName()
	entryURL := EntryURL(siteURL, entry)

	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("UTF-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1.0")),
			html.TitleEl(gomponents.Text("New Pokemon: "+name)),
			html.StyleEl(gomponents.Raw(emailCSS)),
		),
		html.Body(
			html.Div(
				html.Class("container"),
				html.Div(
					html.Class("header"),
					html.H1(html.Style("color: #667eea; margin: 0;"), gomponents.Text("🎉 New Pokemon Discovered!")),
					html.P(html.Style("color: #718096; margin: 10px 0;"), gomponents.Text("Hello "+greeting+"!")),
				),
				html.Div(
					html.Style("text-align: center;"),
					html.Img(html.Src(entry.ImageURL()), html.Alt(name), html.Class("pokemon-image")),
					html.H2(html.Class("pokemon-name"), gomponents.Text(name)),
					html.P(
						html.Style("color: #4a5568; font-size: 16px; margin: 20px 0;"),
						gomponents.Textf("A new Pokemon has been added to our database! Click the button below to learn more about %s and add it to your collection.", name),
					),
					html.A(html.Href(entryURL), html.Class("cta-button"), gomponents.Text("🔍 View "+name)),
				),
				html.Div(
					html.Style("background: #f7fafc; padding: 20px; border-radius: 8px; margin: 20px 0;"),
					html.H3(html.Style("color: #2d3748; margin-top: 0;"), gomponents.Text("What you can do:")),
					html.Ul(
						html.Style("color: #4a5568; padding-left: 20px;"),
						html.Li(gomponents.Text("View detailed stats and abilities")),
						html.Li(gomponents.Text("Add "+name+" to your personal library")),
						html.Li(gomponents.Text("Mark it as a favorite")),
						html.Li(gomponents.Text("Share with other trainers")),
					),
				),
				html.Div(
					html.Class("footer"),
					html.P(gomponents.Text("Happy Pokemon hunting! 🎯")),
					html.P(html.Style("margin: 10px 0;"), html.Strong(gomponents.Text("The PokéSearch Team"))),
					html.P(html.A(html.Href(PreferencesURL(siteURL)), html.Class("unsubscribe"), gomponents.Text("Manage email preferences"))),
				),
			),
		),
	))
}

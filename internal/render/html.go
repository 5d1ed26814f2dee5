package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/diogo/whiskerion/internal/chat"
	"github.com/diogo/whiskerion/internal/config"
)

// SubmitPath is where the widget form posts
const SubmitPath = "/submit"

// RefreshSeconds is the meta refresh interval while a reply is pending
const RefreshSeconds = 1

// WidgetView is everything the HTML widget is a projection of
type WidgetView struct {
	Snapshot chat.Snapshot
	Persona  config.Persona
	Theme    Theme
}

// Only angle brackets are escaped so message text shows markup literally
// without altering any other character.
var markupEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeMarkup(s string) template.HTML {
	return template.HTML(markupEscaper.Replace(s))
}

type messageView struct {
	Class string
	Text  template.HTML
}

type widgetData struct {
	Portrait    template.HTML
	Messages    []messageView
	Awaiting    bool
	Pending     string
	Placeholder string
	Disabled    bool
	Action      string
}

type pageData struct {
	Title   string
	CSS     template.CSS
	Refresh template.HTML
	Widget  template.HTML
}

var widgetTemplate = template.Must(template.New("widget").Parse(
	`{{.Portrait}}
<div class="chat-container">
{{- range .Messages}}
<div class="{{.Class}}" role="log" aria-live="polite">{{.Text}}</div>
{{- end}}
{{- if .Awaiting}}
<div class="message bot-message loading-message">{{.Pending}}</div>
{{- end}}
<a id="end"></a>
</div>
<div class="form-container">
<form class="chat-form" method="post" action="{{.Action}}">
<input type="text" name="message" class="chat-input" placeholder="{{.Placeholder}}" aria-label="Chat input" autocomplete="off"{{if .Disabled}} disabled{{else}} autofocus{{end}}>
<button type="submit" class="submit-button" aria-label="Send message"{{if .Disabled}} disabled{{end}}>Send</button>
</form>
</div>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .Refresh}}
{{.Refresh}}
{{- end}}
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<div id="root">
{{.Widget}}</div>
</body>
</html>
`))

// Widget renders the portrait, transcript and input form. It is a pure
// function of the view.
func Widget(view WidgetView) string {
	snap := view.Snapshot
	persona := view.Persona.WithDefaults()

	data := widgetData{
		Portrait:    PortraitSVG(),
		Messages:    make([]messageView, 0, len(snap.Messages)),
		Awaiting:    snap.Awaiting,
		Pending:     persona.Pending,
		Placeholder: persona.Placeholder,
		Disabled:    snap.InputDisabled(),
		Action:      SubmitPath,
	}
	for _, msg := range snap.Messages {
		data.Messages = append(data.Messages, messageView{
			Class: "message " + string(msg.Sender) + "-message",
			Text:  escapeMarkup(msg.Text),
		})
	}

	var buf bytes.Buffer
	// Inputs are fixed types, so execution cannot fail
	_ = widgetTemplate.Execute(&buf, data)
	return buf.String()
}

// Page wraps the widget in a complete HTML document with its stylesheet
func Page(view WidgetView) string {
	theme := view.Theme
	if theme.Name == "" {
		theme = CurrentTheme()
	}

	data := pageData{
		Title:  view.Persona.WithDefaults().Title,
		CSS:    template.CSS(theme.CSSVariables() + widgetCSS),
		Widget: template.HTML(Widget(view)),
	}
	// Refresh until the session settles and while a reply is pending
	if view.Snapshot.Awaiting || view.Snapshot.Phase == chat.PhaseInitializing {
		data.Refresh = template.HTML(fmt.Sprintf(`<meta http-equiv="refresh" content="%d;url=/#end">`, RefreshSeconds))
	}

	var buf bytes.Buffer
	_ = pageTemplate.Execute(&buf, data)
	return buf.String()
}

const widgetCSS = `
*{box-sizing:border-box}
html,body{margin:0;height:100%;background:var(--bg);color:var(--text);font-family:system-ui,sans-serif}
#root{position:relative;display:flex;flex-direction:column;height:100%;max-width:860px;margin:0 auto;overflow:hidden}
.epic-cat-portrait{position:absolute;inset:0;width:100%;height:100%;opacity:.35;z-index:0;pointer-events:none}
.cat-eye{fill:var(--accent);filter:drop-shadow(0 0 12px var(--accent))}
.chat-container{position:relative;z-index:1;flex:1;overflow-y:auto;padding:1.5rem;display:flex;flex-direction:column;gap:.75rem}
.message{max-width:80%;padding:.75rem 1rem;border-radius:12px;line-height:1.45;white-space:pre-wrap;word-wrap:break-word}
.user-message{align-self:flex-end;background:var(--primary);color:var(--bg)}
.bot-message{align-self:flex-start;background:var(--surface);border:1px solid var(--border)}
.loading-message{color:var(--text-dim);font-style:italic}
.form-container{position:relative;z-index:1;padding:1rem;border-top:1px solid var(--border);background:var(--surface)}
.chat-form{display:flex;gap:.5rem}
.chat-input{flex:1;padding:.75rem;border-radius:8px;border:1px solid var(--border);background:var(--bg);color:var(--text)}
.chat-input:disabled,.submit-button:disabled{opacity:.5;cursor:not-allowed}
.submit-button{padding:.75rem 1.25rem;border:0;border-radius:8px;background:var(--primary);color:var(--bg);font-weight:600;cursor:pointer}
`

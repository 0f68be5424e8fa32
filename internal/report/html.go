package report

import (
	"fmt"
	"html"
)

func bold(text string) string {
	return fmt.Sprintf("<b>%s</b>", html.EscapeString(text))
}

func italic(text string) string {
	return fmt.Sprintf("<i>%s</i>", html.EscapeString(text))
}

func code(text string) string {
	return fmt.Sprintf("<code>%s</code>", html.EscapeString(text))
}

func escape(text string) string {
	return html.EscapeString(text)
}

package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"

	"github.com/hitoshi/mailsign/internal/auth"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// signinEmailData はサインインメールテンプレートに渡すデータ。
type signinEmailData struct {
	Name      string
	SigninURL string
	TeamURL   string
}

// welcomeEmailData はウェルカムメールテンプレートに渡すデータ。
type welcomeEmailData struct {
	Name    string
	TeamURL string
}

// SigninCallbackURL はサインインメールに埋め込むコールバックURLを組み立てる。
func SigninCallbackURL(teamURL, token string) string {
	return teamURL + "/auth/email.callback?token=" + url.QueryEscape(token)
}

// renderSigninEmail はサインインメールのHTML本文とテキスト本文を生成する。
func renderSigninEmail(email auth.SigninEmail) (html, text string, err error) {
	data := signinEmailData{
		Name:      email.Name,
		SigninURL: SigninCallbackURL(email.TeamURL, email.Token),
		TeamURL:   email.TeamURL,
	}
	return renderPair("signin", data)
}

// renderWelcomeEmail はウェルカムメールのHTML本文とテキスト本文を生成する。
func renderWelcomeEmail(email auth.WelcomeEmail) (html, text string, err error) {
	data := welcomeEmailData{
		Name:    email.Name,
		TeamURL: email.TeamURL,
	}
	return renderPair("welcome", data)
}

func renderPair(name string, data any) (html, text string, err error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := htmlTemplates.ExecuteTemplate(&htmlBuf, name+".html.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s html template: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&textBuf, name+".txt.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s text template: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

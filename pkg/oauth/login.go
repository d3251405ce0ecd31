package oauth

import (
	_ "embed"
	"html/template"
)

// LoginTemplateName is the template name rendered for the consent page.
const LoginTemplateName = "login.html"

//go:embed login.html
var loginPage string

// LoginPage is passed to the consent template.
type LoginPage struct {
	Action      string
	ResponseURL string
}

// LoginTemplate parses the consent page. Values are HTML escaped by the
// template engine.
func LoginTemplate() *template.Template {
	return template.Must(template.New(LoginTemplateName).Parse(loginPage))
}

// NewLoginPage returns the template data for a consent form that posts
// responseURL back to the login path.
func (e *Engine) NewLoginPage(responseURL string) LoginPage {
	return LoginPage{Action: e.cfg.LoginPath, ResponseURL: responseURL}
}

package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type templateData struct {
	UserName  string
	Subject   string
	HoursLeft int
}

var bodyTemplates = map[string]string{
	"welcome": `<html><body>
<h2>Welcome to ResumeCraft, {{.UserName}}!</h2>
<p>Your account is ready. Build your first resume and download it as a polished PDF.</p>
</body></html>`,

	"trial_expired": `<html><body>
<h2>Your trial has ended</h2>
<p>Hi {{.UserName}}, your 7-day professional trial is over and your account is back on the free plan.</p>
<p>Upgrade any time to keep unlimited downloads and remove the trial watermark.</p>
</body></html>`,

	"subscription_expiring": `<html><body>
<h2>Your subscription is about to renew</h2>
<p>Hi {{.UserName}}, your professional subscription period ends in about {{.HoursLeft}} hours.</p>
</body></html>`,
}

func renderBody(name string, data templateData) (string, error) {
	raw, ok := bodyTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	tpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

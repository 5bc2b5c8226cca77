package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/fatflowers/steamwatch/pkg/currency"
)

var funcs = map[string]any{
	"price": func(minor int64, code string) string { return currency.Format(minor, code) },
	"deref": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
}

const htmlBody = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #1b2838; color: white; padding: 24px; text-align: center;">Price Alert!</h1>
  <h2 style="color: #667eea;">{{.GameName}}</h2>
  <div style="background: white; padding: 20px;">
    <div style="font-size: 32px; font-weight: bold; color: #10b981;">{{price .CurrentPrice .Currency}}</div>
    {{- if gt .DiscountPercent 0}}
    <div style="background: #ef4444; color: white; padding: 5px 15px; display: inline-block;">-{{.DiscountPercent}}% OFF</div>
    {{- end}}
    {{- if .PriceDropped}}
    <p style="color: #666;">Was: <span style="text-decoration: line-through;">{{price (deref .PreviousPrice) .Currency}}</span></p>
    {{- end}}
  </div>
  <p>{{.Headline}}</p>
  <p style="text-align: center;">
    <a href="{{.GameURL}}">View Details</a> | <a href="{{.StoreURL}}">Buy on Steam</a>
  </p>
  <p style="text-align: center; color: #666; font-size: 12px;">
    You're receiving this because you set up a price alert for this game.
    {{- if .UnsubscribeURL}} <a href="{{.UnsubscribeURL}}">Unsubscribe</a>{{end}}
  </p>
</div>
</body>
</html>`

const textBody = `Price Alert: {{.GameName}}

Current Price: {{price .CurrentPrice .Currency}}
{{- if gt .DiscountPercent 0}}
Discount: {{.DiscountPercent}}%
{{- end}}
{{- if .PriceDropped}}
Previous Price: {{price (deref .PreviousPrice) .Currency}}
{{- end}}

{{.Headline}}

View Details: {{.GameURL}}
Buy on Steam: {{.StoreURL}}

You're receiving this because you set up a price alert for this game.
{{- if .UnsubscribeURL}}
Unsubscribe: {{.UnsubscribeURL}}
{{- end}}`

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(htmlBody))
	textTmpl = texttemplate.Must(texttemplate.New("text").Funcs(funcs).Parse(textBody))
)

type view struct {
	*PriceDropEmail
	PriceDropped bool
	Headline     string
}

func headline(reason string) string {
	switch reason {
	case ReasonTargetPrice:
		return "The price is at or below your target. Don't miss out!"
	case ReasonThreshold:
		return "The discount reached the level you asked for. Don't miss out!"
	case ReasonPriceDrop:
		return "The price just dropped again. Don't miss out!"
	default:
		return "Great news! This game is now on sale. Don't miss out!"
	}
}

func render(m *PriceDropEmail) (subject, html, text string, err error) {
	v := view{
		PriceDropEmail: m,
		PriceDropped:   m.PreviousPrice != nil && *m.PreviousPrice > m.CurrentPrice,
		Headline:       headline(m.Reason),
	}
	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return fmt.Sprintf("%s is on sale!", m.GameName), hb.String(), strings.TrimSpace(tb.String()), nil
}

package email

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

const layoutStyle = `body{margin:0;padding:0;background:#0f172a;color:#e5e7eb;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif}
.wrapper{width:100%;padding:24px}
.card{max-width:600px;margin:0 auto;background:#111827;border:1px solid #1f2937;border-radius:16px;overflow:hidden}
.brand{padding:20px 24px;background:#0b1220;border-bottom:1px solid #1f2937}
.brand a{color:#93c5fd;text-decoration:none;font-weight:600;font-size:16px}
.header{padding:24px 24px 0;font-size:20px;font-weight:700}
.body{padding:16px 24px 24px;font-size:14px;line-height:1.6;color:#d1d5db}
.footer{padding:16px 24px;font-size:12px;color:#9ca3af;border-top:1px solid #1f2937}
.preheader{display:none;visibility:hidden;opacity:0;height:0;width:0;overflow:hidden}
a.button{display:inline-block;margin-top:12px;padding:10px 14px;border-radius:12px;text-decoration:none;background:#3b82f6;color:#fff;font-weight:600}
a{color:#93c5fd}`

// writer accumulates the first write error so components stay linear
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err == nil && c != nil {
		w.err = c.Render(ctx, w.w)
	}
}

// layout wraps body in the branded email shell
func layout(title, preheader, homeURL string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><title>`)
		w.text(title)
		w.raw(`</title><style>` + layoutStyle + `</style></head><body><span class="preheader">`)
		w.text(preheader)
		w.raw(`</span><div class="wrapper"><div class="card"><div class="brand"><a href="`)
		w.text(string(templ.URL(homeURL)))
		w.raw(`">Game Tracker</a></div><div class="header">`)
		w.text(title)
		w.raw(`</div><div class="body">`)
		w.component(ctx, body)
		w.raw(`</div><div class="footer">You're receiving this because you have a Game Tracker account. If this wasn't you, you can safely ignore this email.</div></div></div></body></html>`)
		return w.err
	})
}

// paragraph renders escaped text in a <p>
func paragraph(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<p>")
		w.text(s)
		w.raw("</p>")
		return w.err
	})
}

// greeting renders "Hi <name>,"
func greeting(name string) templ.Component {
	if name == "" {
		return paragraph("Hi there,")
	}
	return paragraph("Hi " + name + ",")
}

// button renders a call-to-action link; unsafe URLs are neutralised
func button(href, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<p><a class="button" href="`)
		w.text(string(templ.URL(href)))
		w.raw(`">`)
		w.text(label)
		w.raw(`</a></p>`)
		return w.err
	})
}

// join renders components in sequence
func join(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		for _, p := range parts {
			w.component(ctx, p)
		}
		return w.err
	})
}

func render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

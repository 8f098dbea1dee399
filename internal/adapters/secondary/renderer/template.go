package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// TemplateRenderer implements the DeckRenderer interface using Go templates
type TemplateRenderer struct {
	templates *template.Template
	slides    *SlideRenderer
}

var _ ports.DeckRenderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a new template-based renderer
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl := template.New("deck")

	tmpl = tmpl.Funcs(template.FuncMap{
		// Fragments come from SlideRenderer, which sanitizes every paragraph
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - sanitized by the inline policy
		},
		"inc": func(i int) int {
			return i + 1
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.3f%%", v)
		},
	})

	if _, err := tmpl.Parse(defaultDeckTemplate); err != nil {
		return nil, fmt.Errorf("parsing deck template: %w", err)
	}

	return &TemplateRenderer{
		templates: tmpl,
		slides:    NewSlideRenderer(),
	}, nil
}

// RenderSlides renders every slide of the deck
func (r *TemplateRenderer) RenderSlides(deck *entities.Deck) ([]ports.SlideView, error) {
	return r.slides.RenderSlides(deck)
}

// RenderDeck renders the full preview page
func (r *TemplateRenderer) RenderDeck(ctx context.Context, deck *entities.Deck) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	views, err := r.slides.RenderSlides(deck)
	if err != nil {
		return nil, err
	}

	tmpl := deck.Template
	if tmpl == nil {
		tmpl = entities.DefaultTemplate()
	}

	title := deck.Title
	if title == "" {
		title = "Untitled deck"
	}

	data := struct {
		Title    string
		Author   string
		Template string
		Width    int64
		Height   int64
		Slides   []ports.SlideView
	}{
		Title:    title,
		Author:   deck.Author,
		Template: tmpl.Name,
		Width:    tmpl.SlideWidth,
		Height:   tmpl.SlideHeight,
		Slides:   views,
	}

	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing deck template: %w", err)
	}

	return buf.Bytes(), nil
}

const defaultDeckTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #e5e7eb; margin: 0; padding: 2em; }
        header { max-width: 960px; margin: 0 auto 1.5em; color: #374151; }
        .slide { position: relative; max-width: 960px; margin: 0 auto 2em; background: #fff; box-shadow: 0 2px 8px rgba(0,0,0,.15); aspect-ratio: {{.Width}} / {{.Height}}; container-type: inline-size; overflow: hidden; }
        .shape { position: absolute; overflow: hidden; box-sizing: border-box; }
        .shape img { width: 100%; height: 100%; object-fit: contain; }
        .role-title, .role-ctrTitle { font-size: 4.2cqw; font-weight: bold; display: flex; align-items: center; }
        .role-ctrTitle, .role-subTitle { justify-content: center; text-align: center; }
        .role-subTitle { font-size: 3.2cqw; color: #4b5563; }
        .para { font-size: 2.9cqw; line-height: 1.25; }
        .level-1 { margin-left: 4cqw; font-size: 2.5cqw; }
        .level-2 { margin-left: 8cqw; font-size: 2.1cqw; }
        .level-3, .level-4, .level-5, .level-6, .level-7, .level-8 { margin-left: 12cqw; font-size: 1.9cqw; }
        .bullet::before { content: "\2022\00a0"; }
        .slide-number { position: absolute; right: 1em; bottom: .5em; color: #9ca3af; font-size: 1.5cqw; }
        details { max-width: 960px; margin: -1.5em auto 2em; color: #4b5563; white-space: pre-wrap; }
        #build-error { position: sticky; top: 0; padding: 8px 16px; background: #b00020; color: #fff; font-family: monospace; z-index: 10; }
    </style>
</head>
<body>
    <div id="build-error" hidden></div>
    <header>
        <h1>{{.Title}}</h1>
        {{if .Author}}<div class="author">{{.Author}}</div>{{end}}
        <div class="meta">{{len .Slides}} slides &middot; {{.Template}}</div>
    </header>

    {{range .Slides}}
    <section class="slide" id="slide-{{.Index}}" data-index="{{.Index}}" data-layout="{{.Layout}}">
        {{range .Shapes}}
        <div class="shape kind-{{.Kind}}{{if .Role}} role-{{.Role}}{{end}}" title="{{.Name}}" style="left: {{pct .Left}}; top: {{pct .Top}}; width: {{pct .Width}}; height: {{pct .Height}};">
            {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{else}}{{safeHTML .HTML}}{{end}}
        </div>
        {{end}}
        <div class="slide-number">{{inc .Index}}</div>
    </section>
    {{if .Notes}}<details><summary>Notes</summary>{{.Notes}}</details>{{end}}
    {{end}}

    <script>
    (function() {
        var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        function connect() {
            var ws = new WebSocket(proto + location.host + '/ws');
            ws.onmessage = function(msg) {
                var event = JSON.parse(msg.data);
                if (event.type === 'reload') { location.reload(); }
                if (event.type === 'error') {
                    var banner = document.getElementById('build-error');
                    banner.textContent = 'Build failed: ' + ((event.data && event.data.error) || 'unknown error');
                    banner.hidden = false;
                }
            };
            ws.onclose = function() { setTimeout(connect, 1000); };
        }
        connect();
    })();
    </script>
</body>
</html>`

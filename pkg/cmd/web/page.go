package web

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/a-h/templ"
	"github.com/igolaizola/moodtunes"
)

// Page renders the recommendation view as a full HTML document.
func Page(view *moodtunes.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>Moodtunes</title><link rel="stylesheet" href="/style.css"></head><body><main>`); err != nil {
			return err
		}
		if err := header(view).Render(ctx, w); err != nil {
			return err
		}
		if err := songList(view).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func header(view *moodtunes.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<header><h1>%s</h1><p class="time">%s</p><p class="weather">%s, feels like %s&deg;C</p></header>`,
			templ.EscapeString(view.City),
			templ.EscapeString(view.Time),
			templ.EscapeString(view.Weather),
			templ.EscapeString(degrees(view.FeelsLike)),
		)
		return err
	})
}

func songList(view *moodtunes.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<ol class="songs">`); err != nil {
			return err
		}
		for _, s := range view.Songs {
			label := fmt.Sprintf(`<span class="title">%s</span> <span class="artist">%s</span>`,
				templ.EscapeString(s.Title), templ.EscapeString(s.Artist))
			var err error
			if s.HasURL() {
				u := templ.URL(s.URL)
				_, err = fmt.Fprintf(w, `<li><a href="%s" target="_blank" rel="noopener">%s</a></li>`,
					templ.EscapeString(string(u)), label)
			} else {
				_, err = fmt.Fprintf(w, `<li>%s</li>`, label)
			}
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ol>`)
		return err
	})
}

// degrees formats a temperature with at most one decimal.
func degrees(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

package agents

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/textutil"
)

// Site is a generated three-file page.
type Site struct {
	HTML string
	CSS  string
	JS   string
}

type siteData struct {
	Title        string
	Brand        string
	Headline     string
	Tagline      string
	CallToAction string
	Services     []Service
}

//nolint:gochecknoglobals // parsed once
var siteTemplate = template.Must(template.New("site").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <header class="site-header">
    <nav class="container nav">
      <span class="brand">{{.Brand}}</span>
      <ul class="nav-links">
        <li><a href="#inicio">Inicio</a></li>
        <li><a href="#servicios">Servicios</a></li>
        <li><a href="#contacto">Contacto</a></li>
      </ul>
    </nav>
  </header>
  <main>
    <section id="inicio" class="hero">
      <div class="container">
        <h1>{{.Headline}}</h1>
        <p>{{.Tagline}}</p>
        <a class="button" href="#contacto">{{.CallToAction}}</a>
      </div>
    </section>
    <section id="servicios" class="services">
      <div class="container grid">
{{- range .Services}}
        <article class="card">
          <h2>{{.Title}}</h2>
          <p>{{.Text}}</p>
        </article>
{{- end}}
      </div>
    </section>
    <section id="contacto" class="contact">
      <div class="container">
        <h2>Contacto</h2>
        <form class="contact-form">
          <label>Nombre <input type="text" name="nombre" required></label>
          <label>Correo <input type="email" name="correo" required></label>
          <label>Mensaje <textarea name="mensaje" rows="4"></textarea></label>
          <button type="submit" class="button">Enviar</button>
        </form>
        <p class="form-status" role="status"></p>
      </div>
    </section>
  </main>
  <footer class="site-footer">
    <div class="container">
      <p>{{.Brand}}</p>
    </div>
  </footer>
  <script src="script.js"></script>
</body>
</html>
`))

const siteCSS = `*,
*::before,
*::after {
  box-sizing: border-box;
}

body {
  margin: 0;
  font-family: "Inter", system-ui, sans-serif;
  background: var(--color-background);
  color: var(--color-text);
  line-height: 1.6;
}

.container {
  width: min(1100px, 92%);
  margin: 0 auto;
}

.site-header {
  background: var(--color-primary);
  color: var(--color-background);
}

.nav {
  display: flex;
  align-items: center;
  justify-content: space-between;
  padding: 1rem 0;
}

.brand {
  font-family: "Poppins", sans-serif;
  font-weight: 700;
}

.nav-links {
  display: flex;
  gap: 1.5rem;
  list-style: none;
  margin: 0;
  padding: 0;
}

.nav-links a {
  color: inherit;
  text-decoration: none;
}

.hero {
  padding: 6rem 0;
  background: linear-gradient(135deg, var(--color-primary), var(--color-secondary));
  color: var(--color-background);
  text-align: center;
}

.hero h1 {
  font-family: "Poppins", sans-serif;
  font-size: clamp(2rem, 5vw, 3.5rem);
  margin: 0 0 1rem;
}

.button {
  display: inline-block;
  padding: 0.75rem 1.5rem;
  border: none;
  border-radius: 0.5rem;
  background: var(--color-accent);
  color: var(--color-text);
  font-weight: 600;
  text-decoration: none;
  cursor: pointer;
}

.services {
  padding: 4rem 0;
}

.grid {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(240px, 1fr));
  gap: 1.5rem;
}

.card {
  padding: 1.5rem;
  border: 1px solid var(--color-neutral);
  border-radius: 0.75rem;
}

.contact {
  padding: 4rem 0;
}

.contact-form {
  display: grid;
  gap: 1rem;
  max-width: 480px;
}

.contact-form input,
.contact-form textarea {
  width: 100%;
  padding: 0.6rem;
  border: 1px solid var(--color-neutral);
  border-radius: 0.5rem;
  font: inherit;
}

.site-footer {
  padding: 2rem 0;
  background: var(--color-text);
  color: var(--color-background);
  text-align: center;
}
`

const siteJS = `document.addEventListener("DOMContentLoaded", () => {
  document.querySelectorAll('a[href^="#"]').forEach((link) => {
    link.addEventListener("click", (event) => {
      const target = document.querySelector(link.getAttribute("href"));
      if (target) {
        event.preventDefault();
        target.scrollIntoView({ behavior: "smooth" });
      }
    });
  });

  const form = document.querySelector(".contact-form");
  const status = document.querySelector(".form-status");
  if (form && status) {
    form.addEventListener("submit", (event) => {
      event.preventDefault();
      status.textContent = "¡Gracias! Te responderemos pronto.";
      form.reset();
    });
  }
});
`

// FallbackSite builds a complete page for the instruction without the model.
// The page title is the instruction truncated to titleWidth cells, and the
// stylesheet starts with the palette variables.
func FallbackSite(instruction string, ind Industry, p domain.ColorPalette, titleWidth int) Site {
	title := textutil.Truncate(instruction, titleWidth)
	if title == "" {
		title = ind.Label
	}
	data := siteData{
		Title:        title,
		Brand:        ind.Label,
		Headline:     ind.Headline,
		Tagline:      ind.Tagline,
		CallToAction: ind.CallToAction,
		Services:     ind.Services,
	}

	var buf bytes.Buffer
	page := ""
	if err := siteTemplate.Execute(&buf, data); err == nil {
		page = buf.String()
	} else {
		page = minimalPage(title)
	}

	return Site{
		HTML: page,
		CSS:  PaletteCSS(p) + "\n" + siteCSS,
		JS:   siteJS,
	}
}

func minimalPage(title string) string {
	t := html.EscapeString(title)
	return "<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n  <meta charset=\"UTF-8\">\n  <title>" + t +
		"</title>\n  <link rel=\"stylesheet\" href=\"styles.css\">\n</head>\n<body>\n  <h1>" + t +
		"</h1>\n  <script src=\"script.js\"></script>\n</body>\n</html>\n"
}

// LinkAssets references styles.css and script.js from page when they are
// missing. It reports whether page changed.
func LinkAssets(page string, css, js bool) (string, bool) {
	changed := false
	if css && !strings.Contains(page, "styles.css") {
		page = insertBefore(page, "</head>", `  <link rel="stylesheet" href="styles.css">`+"\n", true)
		changed = true
	}
	if js && !strings.Contains(page, "script.js") {
		page = insertBefore(page, "</body>", `  <script src="script.js"></script>`+"\n", false)
		changed = true
	}
	return page, changed
}

// insertBefore inserts snippet before the first case-insensitive match of
// tag. Without a match the snippet is prepended or appended.
func insertBefore(page, tag, snippet string, prepend bool) string {
	if i := strings.Index(asciiLower(page), tag); i >= 0 {
		return page[:i] + snippet + page[i:]
	}
	if prepend {
		return snippet + page
	}
	if page != "" && !strings.HasSuffix(page, "\n") {
		page += "\n"
	}
	return page + snippet
}

// asciiLower lowercases ASCII letters only, so byte offsets stay valid.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

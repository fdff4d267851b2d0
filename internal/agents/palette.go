package agents

import (
	"fmt"
	"strings"

	"github.com/mrz1836/forja/internal/domain"
	"github.com/mrz1836/forja/internal/prompts"
	"github.com/mrz1836/forja/internal/textutil"
)

// Named palettes.
//
//nolint:gochecknoglobals // read-only lookup tables
var (
	paletteTechBlue = domain.ColorPalette{
		Name: "Tech Blue", Primary: "#2563EB", Secondary: "#1E40AF", Accent: "#38BDF8",
		Background: "#F8FAFC", Text: "#0F172A", Neutral: "#64748B",
	}
	paletteForestGreen = domain.ColorPalette{
		Name: "Forest Green", Primary: "#16A34A", Secondary: "#166534", Accent: "#84CC16",
		Background: "#F7FEE7", Text: "#14532D", Neutral: "#6B7280",
	}
	paletteWarmRed = domain.ColorPalette{
		Name: "Warm Red", Primary: "#DC2626", Secondary: "#991B1B", Accent: "#F59E0B",
		Background: "#FFF7ED", Text: "#1C1917", Neutral: "#78716C",
	}
	paletteRoyalPurple = domain.ColorPalette{
		Name: "Royal Purple", Primary: "#7C3AED", Secondary: "#5B21B6", Accent: "#F472B6",
		Background: "#FAF5FF", Text: "#1E1B4B", Neutral: "#6B7280",
	}
	paletteSunsetOrange = domain.ColorPalette{
		Name: "Sunset Orange", Primary: "#EA580C", Secondary: "#C2410C", Accent: "#FACC15",
		Background: "#FFFBEB", Text: "#1C1917", Neutral: "#78716C",
	}
	paletteElegantDark = domain.ColorPalette{
		Name: "Elegant Dark", Primary: "#111827", Secondary: "#374151", Accent: "#F59E0B",
		Background: "#030712", Text: "#F9FAFB", Neutral: "#9CA3AF",
	}
	paletteRosePink = domain.ColorPalette{
		Name: "Rose Pink", Primary: "#DB2777", Secondary: "#9D174D", Accent: "#FB7185",
		Background: "#FFF1F2", Text: "#1F2937", Neutral: "#6B7280",
	}
	paletteMedicalTeal = domain.ColorPalette{
		Name: "Medical Teal", Primary: "#0D9488", Secondary: "#115E59", Accent: "#22D3EE",
		Background: "#F0FDFA", Text: "#134E4A", Neutral: "#64748B",
	}
	paletteAcademicIndigo = domain.ColorPalette{
		Name: "Academic Indigo", Primary: "#4F46E5", Secondary: "#3730A3", Accent: "#F59E0B",
		Background: "#EEF2FF", Text: "#1E1B4B", Neutral: "#6B7280",
	}
)

type paletteRule struct {
	keywords []string
	palette  domain.ColorPalette
}

// paletteRules are checked in order; the first colour word found wins.
//
//nolint:gochecknoglobals // read-only lookup table
var paletteRules = []paletteRule{
	{keywords: []string{"azul", "blue"}, palette: paletteTechBlue},
	{keywords: []string{"verde", "green"}, palette: paletteForestGreen},
	{keywords: []string{"rojo", "roja"}, palette: paletteWarmRed},
	{keywords: []string{"morado", "purpura", "violeta", "purple"}, palette: paletteRoyalPurple},
	{keywords: []string{"naranja", "orange"}, palette: paletteSunsetOrange},
	{keywords: []string{"rosa", "pink"}, palette: paletteRosePink},
	{keywords: []string{"negro", "oscuro", "dark", "black"}, palette: paletteElegantDark},
	{keywords: []string{"turquesa", "teal"}, palette: paletteMedicalTeal},
}

// DetectPalette returns the palette named by a colour word in the
// instruction, if any.
func DetectPalette(instruction string) (domain.ColorPalette, bool) {
	text := textutil.Fold(instruction)
	for _, r := range paletteRules {
		if textutil.ContainsAny(text, r.keywords) {
			return r.palette, true
		}
	}
	return domain.ColorPalette{}, false
}

// Service is one offering shown on a generated page.
type Service struct {
	Title string
	Text  string
}

// Industry is a business sector with the content used by local fallbacks.
type Industry struct {
	Key          string
	Label        string
	Headline     string
	Tagline      string
	CallToAction string
	Services     []Service
	Palette      domain.ColorPalette
	keywords     []string
}

// industries are checked in order. The last entry is the fallback.
//
//nolint:gochecknoglobals // read-only lookup table
var industries = []Industry{
	{
		Key: "restaurantes", Label: "Restaurante",
		Headline:     "Sabores que se quedan contigo",
		Tagline:      "Cocina de temporada, ingredientes locales y un lugar para volver.",
		CallToAction: "Reserva tu mesa",
		Services: []Service{
			{"Menú del día", "Platos frescos que cambian cada semana."},
			{"Reservas", "Aparta tu mesa en segundos."},
			{"Para llevar", "Tus platos favoritos, listos cuando llegas."},
		},
		Palette:  paletteWarmRed,
		keywords: []string{"restaurante", "restaurant", "comida", "cafeteria", "cafe", "menu", "cocina", "pizzeria", "panaderia"},
	},
	{
		Key: "salud", Label: "Salud",
		Headline:     "Tu salud, en buenas manos",
		Tagline:      "Atención cercana con especialistas de confianza.",
		CallToAction: "Pide tu cita",
		Services: []Service{
			{"Consultas", "Medicina general y especialidades."},
			{"Citas en línea", "Agenda sin esperas ni llamadas."},
			{"Seguimiento", "Te acompañamos después de cada visita."},
		},
		Palette:  paletteMedicalTeal,
		keywords: []string{"salud", "clinica", "medico", "hospital", "dental", "doctor", "farmacia", "consultorio"},
	},
	{
		Key: "educacion", Label: "Educación",
		Headline:     "Aprende a tu ritmo",
		Tagline:      "Cursos prácticos con docentes que te acompañan.",
		CallToAction: "Inscríbete",
		Services: []Service{
			{"Cursos", "Programas actualizados para cada nivel."},
			{"Tutorías", "Sesiones personalizadas con expertos."},
			{"Certificados", "Valida lo que aprendes."},
		},
		Palette:  paletteAcademicIndigo,
		keywords: []string{"educacion", "escuela", "colegio", "cursos", "academia", "universidad", "clases"},
	},
	{
		Key: "tienda", Label: "Tienda",
		Headline:     "Todo lo que buscas, en un solo lugar",
		Tagline:      "Productos seleccionados con envío rápido.",
		CallToAction: "Ver productos",
		Services: []Service{
			{"Catálogo", "Explora nuestras categorías."},
			{"Envíos", "Recibe tu pedido en casa."},
			{"Devoluciones", "Compra sin preocupaciones."},
		},
		Palette:  paletteSunsetOrange,
		keywords: []string{"tienda", "ecommerce", "e-commerce", "shop", "store", "productos", "venta"},
	},
	{
		Key: "portafolio", Label: "Portafolio",
		Headline:     "Proyectos que cuentan una historia",
		Tagline:      "Una selección de mi trabajo más reciente.",
		CallToAction: "Hablemos",
		Services: []Service{
			{"Proyectos", "Casos de estudio con resultados reales."},
			{"Experiencia", "Trayectoria y habilidades."},
			{"Contacto", "Disponible para nuevos retos."},
		},
		Palette:  paletteElegantDark,
		keywords: []string{"portafolio", "portfolio", "curriculum", "fotografo", "fotografia", "freelance"},
	},
	{
		Key: "inmobiliaria", Label: "Inmobiliaria",
		Headline:     "Encuentra el lugar ideal",
		Tagline:      "Propiedades verificadas y asesoría en cada paso.",
		CallToAction: "Agenda una visita",
		Services: []Service{
			{"Venta", "Casas y departamentos seleccionados."},
			{"Alquiler", "Opciones flexibles para cada etapa."},
			{"Asesoría", "Te guiamos hasta la firma."},
		},
		Palette:  paletteForestGreen,
		keywords: []string{"inmobiliaria", "propiedades", "bienes raices", "departamentos", "alquiler"},
	},
	{
		Key: "tecnologia", Label: "Tecnología",
		Headline:     "Tecnología que impulsa tu negocio",
		Tagline:      "Soluciones digitales simples, seguras y escalables.",
		CallToAction: "Solicita una demo",
		Services: []Service{
			{"Desarrollo", "Aplicaciones web a la medida."},
			{"Nube", "Infraestructura confiable y escalable."},
			{"Soporte", "Un equipo disponible cuando lo necesitas."},
		},
		Palette:  paletteTechBlue,
		keywords: []string{"tecnologia", "software", "startup", "saas", "aplicacion"},
	},
}

// DetectIndustry returns the sector the instruction talks about, falling
// back to tecnologia.
func DetectIndustry(instruction string) Industry {
	text := textutil.Fold(instruction)
	for _, ind := range industries {
		if textutil.ContainsAny(text, ind.keywords) {
			return ind
		}
	}
	return industries[len(industries)-1]
}

// ResolvePalette returns the palette named in the instruction, or the
// default palette of its industry.
func ResolvePalette(instruction string) domain.ColorPalette {
	if p, ok := DetectPalette(instruction); ok {
		return p
	}
	return DetectIndustry(instruction).Palette
}

// fillPalette copies src into every empty slot of dst.
func fillPalette(dst, src domain.ColorPalette) domain.ColorPalette {
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Primary, src.Primary)
	fill(&dst.Secondary, src.Secondary)
	fill(&dst.Accent, src.Accent)
	fill(&dst.Background, src.Background)
	fill(&dst.Text, src.Text)
	fill(&dst.Neutral, src.Neutral)
	return dst
}

// paletteVarMarker identifies a stylesheet that already declares the palette.
const paletteVarMarker = "--color-primary"

// PaletteCSS renders the palette as :root custom properties.
func PaletteCSS(p domain.ColorPalette) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range [][2]string{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"accent", p.Accent},
		{"background", p.Background},
		{"text", p.Text},
		{"neutral", p.Neutral},
	} {
		if v[1] != "" {
			fmt.Fprintf(&b, "  --color-%s: %s;\n", v[0], v[1])
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// EnsurePaletteVars prepends the palette variables to css when the
// stylesheet does not declare them.
func EnsurePaletteVars(css string, p domain.ColorPalette) string {
	if strings.Contains(css, paletteVarMarker) {
		return css
	}
	if strings.TrimSpace(css) == "" {
		return PaletteCSS(p)
	}
	return PaletteCSS(p) + "\n" + css
}

func paletteInfo(p domain.ColorPalette) prompts.PaletteInfo {
	return prompts.PaletteInfo{
		Name:       p.Name,
		Primary:    p.Primary,
		Secondary:  p.Secondary,
		Accent:     p.Accent,
		Background: p.Background,
		Text:       p.Text,
		Neutral:    p.Neutral,
	}
}

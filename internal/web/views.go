package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/countdown"
	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/model"
)

// pageData — общие данные каждой страницы.
type pageData struct {
	Title    string
	Session  identity.Session
	Messages []Message
}

var statusLabels = map[model.Status]string{
	model.StatusActive:     "Activo",
	model.StatusProcessing: "Seleccionando ganador",
	model.StatusCompleted:  "Finalizado",
	model.StatusCancelled:  "Cancelado",
}

var categoryLabels = map[model.Category]string{
	model.CategorySmall:   "Pequeño",
	model.CategoryMedium:  "Mediano",
	model.CategoryLarge:   "Grande",
	model.CategoryPremium: "Premium",
}

func (h *Handler) render(w http.ResponseWriter, page Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		h.logger.Sugar().Errorw("render page", "error", err)
	}
}

func (h *Handler) renderLoading(w http.ResponseWriter) {
	h.render(w, loadingPage())
}

func layout(data pageData, body ...Node) Node {
	return HTML(
		Lang("es"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(data.Title+" | Sorteos")),
			Link(Rel("stylesheet"), Href("https://cdn.jsdelivr.net/npm/@picocss/pico@2/css/pico.min.css")),
		),
		Body(
			header(data.Session),
			Main(
				Class("container"),
				flashes(data.Messages),
				Group(body),
			),
		),
	)
}

func header(s identity.Session) Node {
	var account Node
	switch {
	case s.IsLoading:
		account = Span(Text("…"))
	case s.IsAuthenticated:
		account = Group([]Node{
			Span(Text(s.User.FullName())),
			Form(
				Method("post"), Action("/sign-out"), Class("inline"),
				Button(Type("submit"), Class("secondary"), Text("Cerrar sesión")),
			),
		})
	default:
		account = Group([]Node{
			A(Href("/sign-in"), Text("Iniciar sesión")),
			A(Href("/sign-up"), Text("Crear cuenta")),
		})
	}

	return Nav(
		Class("container"),
		Ul(Li(A(Href("/"), Strong(Text("Sorteos"))))),
		Ul(
			Li(A(Href("/raffles"), Text("Todos los sorteos"))),
			Li(account),
		),
	)
}

func flashes(messages []Message) Node {
	return Group(Map(messages, func(m Message) Node {
		return Article(
			Class("flash flash-"+m.Kind),
			Strong(Text(m.Title)),
			If(m.Detail != "", P(Text(m.Detail))),
		)
	}))
}

func loadingPage() Node {
	return layout(pageData{Title: "Cargando"},
		Div(Class("loading"), P(Text("Cargando…"))),
	)
}

func errorPage(data pageData, message string) Node {
	return layout(data,
		Article(
			H1(Text("Error al cargar")),
			P(Text(message)),
			A(Href("/raffles"), Text("Volver a sorteos")),
		),
	)
}

func homePage(data pageData, featured []model.Raffle) Node {
	return layout(data,
		Section(
			H1(Text("Participa en sorteos increíbles")),
			P(Text("Explora los sorteos activos y registra tu participación")),
			A(Href("/raffles"), Role("button"), Text("Ver todos los sorteos")),
		),
		Section(
			H2(Text("Sorteos activos")),
			raffleGrid(featured),
		),
	)
}

func listPage(data pageData, status model.Status, result *model.ListResult) Node {
	filters := []model.Status{"", model.StatusActive, model.StatusProcessing, model.StatusCompleted, model.StatusCancelled}

	return layout(data,
		H1(Text("Sorteos")),
		P(Text("Explora todos los sorteos disponibles")),
		Nav(Group(Map(filters, func(f model.Status) Node {
			label := "Todos"
			if f != "" {
				label = statusLabels[f]
			}
			href := "/raffles"
			if f != "" {
				href += "?status=" + string(f)
			}
			cls := "outline"
			if f == status {
				cls = ""
			}
			return A(Href(href), Role("button"), Class(cls), Text(label))
		}))),
		If(len(result.Raffles) == 0, P(Text("No hay sorteos disponibles"))),
		raffleGrid(result.Raffles),
		If(result.HasMore && result.NextCursor != "",
			A(Href(loadMoreHref(status, result.NextCursor)), Role("button"), Class("secondary"), Text("Cargar más")),
		),
	)
}

func loadMoreHref(status model.Status, cursor string) string {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	q.Set("cursor", cursor)
	return "/raffles?" + q.Encode()
}

func raffleGrid(items []model.Raffle) Node {
	return Div(Class("grid"), Group(Map(items, raffleCard)))
}

func raffleCard(r model.Raffle) Node {
	return Article(
		Iff(len(r.PrizeImages) > 0, func() Node {
			return Img(Src(r.PrizeImages[0]), Alt(r.Title))
		}),
		H3(A(Href("/raffles/"+r.RaffleID), Text(r.Title))),
		P(Small(Text(statusLabels[r.Status]+" · "+categoryLabels[r.Category]))),
		P(Text(fmt.Sprintf("%s / %s participantes",
			formatCount(r.CurrentParticipants), formatCount(r.MaxParticipants)))),
		P(Small(Text("Cierre: "+formatDate(r.EndDate)))),
	)
}

func detailPage(data pageData, d *model.Detail, pending bool) Node {
	isActive := d.Status == model.StatusActive

	return layout(data,
		A(Href("/raffles"), Text("← Volver a sorteos")),
		Div(
			Class("grid"),
			gallery(d),
			Div(
				H1(Text(d.Title)),
				P(Mark(Text(statusLabels[d.Status]))),
				If(isActive, countdownBlock(d.EndDate)),
				participantsBlock(d),
				If(isActive, participateBlock(data.Session, d, pending)),
				variantBlock(d),
				H2(Text("Descripción")),
				P(Text(d.Description)),
				P(Small(Text("Inicio: "+formatDate(d.StartDate)))),
				P(Small(Text("Cierre: "+formatDate(d.EndDate)))),
				P(Small(Text("Categoría: "+categoryLabels[d.Category]))),
			),
		),
	)
}

func gallery(d *model.Detail) Node {
	return Div(Group(Map(d.PrizeImages, func(src string) Node {
		return Img(Src(src), Alt(d.Title))
	})))
}

func countdownBlock(end time.Time) Node {
	left := countdown.Remaining(end, time.Now())
	return Div(
		P(Small(Text("Termina en:"))),
		P(Strong(Text(fmt.Sprintf("%d días %02d:%02d:%02d",
			left.Days, left.Hours, left.Minutes, left.Seconds)))),
	)
}

func participantsBlock(d *model.Detail) Node {
	return Div(
		P(Text(fmt.Sprintf("Participantes: %s / %s",
			formatCount(d.CurrentParticipants), formatCount(d.MaxParticipants)))),
		Progress(Value(strconv.Itoa(int(d.ParticipationPercentage))), Max("100")),
		P(Small(Text(fmt.Sprintf("%s tickets disponibles · %.0f%% completado",
			formatCount(d.MaxParticipants-d.CurrentParticipants), d.ParticipationPercentage)))),
	)
}

func participateBlock(s identity.Session, d *model.Detail, pending bool) Node {
	switch {
	case pending:
		return Button(Disabled(), Aria("busy", "true"), Text("Procesando participación..."))
	case !s.IsAuthenticated:
		return A(Href(signInTarget("/raffles/"+d.RaffleID)), Role("button"), Text("Inicia sesión para participar"))
	case s.User != nil && s.User.IsAdmin:
		return P(Small(Text("Los administradores no pueden participar")))
	case d.UserHasParticipated:
		return Button(Disabled(), Text("Ya estás participando"))
	case !d.CanParticipate:
		return Button(Disabled(), Text("Sorteo lleno"))
	}

	return Form(
		Method("post"), Action("/raffles/"+d.RaffleID+"/participate"),
		Button(Type("submit"), Text("Participar")),
	)
}

func variantBlock(d *model.Detail) Node {
	if info, ok := d.Processing(); ok {
		msg := info.Message
		if msg == "" {
			msg = "Este proceso puede tomar unos minutos"
		}
		return Article(
			H3(Text("Seleccionando ganador...")),
			P(Small(Text(msg))),
		)
	}

	if info, ok := d.Completed(); ok {
		title := "Sin ganador (no hubo participantes)"
		if info.WinnerName != nil {
			title = "Ganador: " + *info.WinnerName
		}
		return Article(
			H3(Text(title)),
			If(info.WinnerSelectedAt != nil,
				P(Small(Textf("Seleccionado el %s", formatDatePtr(info.WinnerSelectedAt)))),
			),
			P(Small(Textf("%d participantes en total", info.TotalParticipants))),
		)
	}

	if info, ok := d.Cancelled(); ok {
		return Article(
			H3(Text("Sorteo cancelado")),
			P(Small(Text(info.CancellationReason))),
		)
	}

	return Group(nil)
}

func signInPage(data pageData, from string) Node {
	return layout(data,
		Article(
			H1(Text("Iniciar sesión")),
			P(Text("Ingresa tus credenciales para acceder a tu cuenta")),
			Form(
				Method("post"), Action("/sign-in"),
				Input(Type("hidden"), Name("from"), Value(from)),
				Label(Text("Correo electrónico"),
					Input(Type("email"), Name("email"), Placeholder("tu@email.com"), Required())),
				Label(Text("Contraseña"),
					Input(Type("password"), Name("password"), Required())),
				Button(Type("submit"), Text("Iniciar sesión")),
			),
			P(Small(Text("¿No tienes cuenta? "), A(Href("/sign-up"), Text("Regístrate")))),
		),
	)
}

func signUpPage(data pageData) Node {
	return layout(data,
		Article(
			H1(Text("Crear cuenta")),
			P(Text("Regístrate para participar en sorteos increíbles")),
			Form(
				Method("post"), Action("/sign-up"),
				Label(Text("Nombre"),
					Input(Type("text"), Name("first_name"), Placeholder("Juan"), Required())),
				Label(Text("Apellido"),
					Input(Type("text"), Name("last_name"), Placeholder("Pérez"), Required())),
				Label(Text("Correo electrónico"),
					Input(Type("email"), Name("email"), Placeholder("tu@email.com"), Required())),
				Label(Text("Contraseña"),
					Input(Type("password"), Name("password"), Required())),
				Label(Text("Confirmar contraseña"),
					Input(Type("password"), Name("confirm_password"), Required())),
				P(Small(Text("Al menos 8 caracteres, una mayúscula, una minúscula, un número y un carácter especial"))),
				Button(Type("submit"), Text("Crear cuenta")),
			),
			P(Small(Text("¿Ya tienes cuenta? "), A(Href("/sign-in"), Text("Inicia sesión")))),
		),
	)
}

func confirmPage(data pageData, email string) Node {
	return layout(data,
		Article(
			H1(Text("Verificar cuenta")),
			P(Textf("Hemos enviado un código de verificación a %s", maskEmail(email))),
			Form(
				Method("post"), Action("/confirm"),
				Input(Type("hidden"), Name("email"), Value(email)),
				Label(Text("Código de verificación"),
					Input(Type("text"), Name("code"), Placeholder("123456"),
						Pattern(`\d{6}`), MaxLength("6"), Required())),
				Button(Type("submit"), Text("Verificar")),
			),
			Form(
				Method("post"), Action("/resend"),
				Input(Type("hidden"), Name("email"), Value(email)),
				Button(Type("submit"), Class("secondary"), Text("Reenviar código")),
			),
		),
	)
}

// maskEmail скрывает локальную часть и домен адреса при показе шага
// подтверждения.
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "***@***.***"
	}
	localFirst, _ := utf8.DecodeRuneInString(local)
	domainFirst, _ := utf8.DecodeRuneInString(domain)
	masked := string(localFirst) + "***@" + string(domainFirst) + "***"
	if dot := strings.LastIndex(domain, "."); dot > 0 {
		masked += domain[dot:]
	}
	return masked
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}

func signInTarget(from string) string {
	if from == "" || from == "/" {
		return "/sign-in"
	}
	return "/sign-in?from=" + url.QueryEscape(from)
}

// listErrorMessage выбирает сообщение об ошибке загрузки: транспортный
// сбой приглашает повторить, прикладная ошибка показывается как есть.
func listErrorMessage(status int, apiErr *api.Error) string {
	if status == 0 {
		return "No se pudo conectar con el servidor. Intenta nuevamente."
	}
	if apiErr != nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Error al cargar los sorteos"
}

// formatCount форматирует счётчик компактно: 1.5K, 2M.
func formatCount(v int) string {
	switch {
	case v >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(v)/1_000_000)) + "M"
	case v >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(v)/1_000)) + "K"
	}
	return strconv.Itoa(v)
}

func trimZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

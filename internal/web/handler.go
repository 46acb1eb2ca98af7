// Package web реализует локальную веб-оболочку клиента платформы розыгрышей:
// страницы списка и карточки розыгрыша, формы входа и регистрации,
// охрану маршрутов по состоянию сессии.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/model"
	"github.com/mmeshcher/raffle-client/internal/participation"
	"github.com/mmeshcher/raffle-client/internal/raffles"
)

const listPageSize = 12

// Handler реализует HTTP-обработчики веб-оболочки. Процесс владеет одной
// сессией: оболочка обслуживает локального пользователя.
type Handler struct {
	manager     *identity.Manager
	raffles     *raffles.Client
	flash       *Flash
	controllers *controllerSet
	logger      *zap.Logger
}

// NewHandler создаёт обработчик веб-оболочки.
func NewHandler(manager *identity.Manager, rafflesClient *raffles.Client, logger *zap.Logger) *Handler {
	h := &Handler{
		manager: manager,
		raffles: rafflesClient,
		flash:   NewFlash(),
		logger:  logger,
	}
	h.controllers = newControllerSet(func(raffleID string) *participation.Controller {
		return participation.New(raffleID, rafflesClient, manager, h.flash, logger.Sugar())
	})
	return h
}

// Shutdown закрывает ресурсы обработчика: контроллеры участия и их опрос.
func (h *Handler) Shutdown() {
	h.controllers.closeAll()
}

// Home отображает главную страницу с активными розыгрышами.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	resp := h.raffles.List(r.Context(), raffles.ListParams{Status: model.StatusActive, Limit: 6})

	var featured []model.Raffle
	if resp.OK && resp.Data != nil {
		featured = resp.Data.Raffles
	}

	h.render(w, homePage(h.pageData("Sorteos"), featured))
}

// ListRaffles отображает список розыгрышей с фильтром по статусу и
// курсорной подгрузкой следующих страниц.
func (h *Handler) ListRaffles(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		status = ""
	}

	resp := h.raffles.List(r.Context(), raffles.ListParams{
		Status: status,
		Limit:  listPageSize,
		Cursor: r.URL.Query().Get("cursor"),
	})

	if !resp.OK || resp.Data == nil {
		h.render(w, errorPage(h.pageData("Sorteos"), listErrorMessage(resp.Status, resp.Err)))
		return
	}

	h.render(w, listPage(h.pageData("Sorteos"), status, resp.Data))
}

// ShowRaffle отображает детальную карточку розыгрыша.
func (h *Handler) ShowRaffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	token, _ := h.manager.AccessToken(r.Context())
	resp := h.raffles.GetByID(r.Context(), id, token)

	if !resp.OK || resp.Data == nil {
		h.render(w, errorPage(h.pageData("Sorteo"), listErrorMessage(resp.Status, resp.Err)))
		return
	}

	detail := resp.Data
	pending := false
	if ctrl := h.controllers.peek(id); ctrl != nil {
		ctrl.SetDetail(detail)
		pending = ctrl.State() == participation.StatePending
	}

	h.render(w, detailPage(h.pageData(detail.Title), detail, pending))
}

// Participate подаёт заявку на участие в розыгрыше и возвращает на
// карточку. Отложенная обработка продолжается опросом в фоне.
func (h *Handler) Participate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctrl := h.controllers.get(id)
	if ctrl.Detail() == nil {
		ctrl.Refetch(r.Context())
	}
	ctrl.Participate(r.Context())

	http.Redirect(w, r, "/raffles/"+id, http.StatusSeeOther)
}

// SignInForm отображает форму входа.
func (h *Handler) SignInForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, signInPage(h.pageData("Iniciar sesión"), r.URL.Query().Get("from")))
}

// SignIn выполняет вход и возвращает на исходно запрошенный путь.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	from := r.PostFormValue("from")
	if from == "" {
		from = "/"
	}

	if err := identity.ValidateEmail(email); err != nil {
		h.flash.Error("Error al iniciar sesión", err.Error())
		http.Redirect(w, r, signInTarget(from), http.StatusSeeOther)
		return
	}

	if err := h.manager.SignIn(r.Context(), email, password); err != nil {
		title, detail := identity.UserMessage(err)
		h.flash.Error(title, detail)
		http.Redirect(w, r, signInTarget(from), http.StatusSeeOther)
		return
	}

	h.flash.Success("¡Bienvenido!", "Has iniciado sesión correctamente")
	http.Redirect(w, r, from, http.StatusSeeOther)
}

// SignUpForm отображает форму регистрации.
func (h *Handler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, signUpPage(h.pageData("Crear cuenta")))
}

// SignUp регистрирует пользователя и переводит на шаг подтверждения почты.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	in := identity.SignUpInput{
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}

	if r.PostFormValue("password") != r.PostFormValue("confirm_password") {
		h.flash.Error("Error al crear cuenta", "Las contraseñas no coinciden")
		http.Redirect(w, r, "/sign-up", http.StatusSeeOther)
		return
	}

	result, err := h.manager.SignUp(r.Context(), in)
	if err != nil {
		title, detail := identity.UserMessage(err)
		h.flash.Error(title, detail)
		http.Redirect(w, r, "/sign-up", http.StatusSeeOther)
		return
	}

	if result.NextStep == identity.StepConfirmSignUp {
		h.flash.Success("Código enviado", "Revisa tu correo para obtener el código de verificación")
		http.Redirect(w, r, "/confirm?email="+urlQueryEscape(in.Email), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

// ConfirmForm отображает форму ввода кода подтверждения.
func (h *Handler) ConfirmForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, confirmPage(h.pageData("Verificar cuenta"), r.URL.Query().Get("email")))
}

// Confirm подтверждает регистрацию кодом из письма.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	code := r.PostFormValue("code")

	if err := h.manager.ConfirmSignUp(r.Context(), email, code); err != nil {
		title, detail := identity.UserMessage(err)
		h.flash.Error(title, detail)
		http.Redirect(w, r, "/confirm?email="+urlQueryEscape(email), http.StatusSeeOther)
		return
	}

	h.flash.Success("¡Cuenta verificada!", "Ya puedes iniciar sesión")
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

// Resend повторно отправляет код подтверждения.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	if err := h.manager.ResendConfirmationCode(r.Context(), email); err != nil {
		title, detail := identity.UserMessage(err)
		h.flash.Error(title, detail)
	} else {
		h.flash.Success("Código reenviado", "Revisa tu correo")
	}

	http.Redirect(w, r, "/confirm?email="+urlQueryEscape(email), http.StatusSeeOther)
}

// SignOut завершает сессию и возвращает на главную.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.SignOut(r.Context()); err != nil {
		h.logger.Warn("sign out", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// pageData собирает общие данные страницы: снимок сессии и уведомления.
func (h *Handler) pageData(title string) pageData {
	return pageData{
		Title:    title,
		Session:  h.manager.Session(),
		Messages: h.flash.Drain(),
	}
}

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRouter настраивает маршруты и middleware веб-оболочки.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(h.logger))

	r.Get("/", h.Home)
	r.Get("/raffles", h.ListRaffles)
	r.Get("/raffles/{id}", h.ShowRaffle)

	r.Group(func(r chi.Router) {
		r.Use(h.guestOnly)

		r.Get("/sign-in", h.SignInForm)
		r.Post("/sign-in", h.SignIn)
		r.Get("/sign-up", h.SignUpForm)
		r.Post("/sign-up", h.SignUp)
		r.Get("/confirm", h.ConfirmForm)
		r.Post("/confirm", h.Confirm)
		r.Post("/resend", h.Resend)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/raffles/{id}/participate", h.Participate)
		r.Post("/sign-out", h.SignOut)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

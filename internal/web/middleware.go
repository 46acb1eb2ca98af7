package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/guard"
)

// requestLogger логирует метод, путь, статус и длительность запроса.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requireAuth пропускает только аутентифицированных пользователей;
// анонимные уводятся на вход с сохранением исходного пути.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := guard.Protected(h.manager.Session(), r.URL.Path, false)
		h.applyDecision(w, r, decision, next)
	})
}

// guestOnly пропускает только гостей; аутентифицированные уводятся на
// запомненный путь возврата.
func (h *Handler) guestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := guard.GuestOnly(h.manager.Session(), r.URL.Query().Get("from"))
		h.applyDecision(w, r, decision, next)
	})
}

func (h *Handler) applyDecision(w http.ResponseWriter, r *http.Request, decision guard.Decision, next http.Handler) {
	switch decision.Action {
	case guard.ActionWait:
		// Сессия ещё гидратируется: нейтральная заглушка вместо
		// мелькания неверного содержимого.
		h.renderLoading(w)
	case guard.ActionRedirect:
		http.Redirect(w, r, decision.Target, http.StatusSeeOther)
	default:
		next.ServeHTTP(w, r)
	}
}

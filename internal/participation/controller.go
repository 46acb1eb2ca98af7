// Package participation реализует рабочий процесс участия в розыгрыше:
// подачу заявки и ограниченный опрос состояния розыгрыша, пока бэкенд
// обрабатывает заявку отложенно.
package participation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/model"
	"github.com/mmeshcher/raffle-client/internal/raffles"
)

// Интервал и потолок опроса фиксированы: без экспоненциальной задержки
// и без джиттера.
const (
	defaultPollInterval = 2 * time.Second
	defaultPollCeiling  = 30 * time.Second
)

// State описывает состояние попытки участия.
type State int

const (
	// StateIdle — попытки нет либо предыдущая завершилась без результата.
	StateIdle State = iota
	// StateSubmitting — заявка отправляется.
	StateSubmitting
	// StatePending — бэкенд принял заявку отложенно, идёт опрос.
	StatePending
	// StateResolved — участие подтверждено.
	StateResolved
	// StateFailed — заявка отклонена.
	StateFailed
)

// Notifier получает уведомления процесса для показа пользователю.
type Notifier interface {
	Success(title, detail string)
	Info(title, detail string)
	Error(title, detail string)
}

// Session описывает снимок сессии и выдачу токена, используемые
// контроллером. Токен для контроллера — только чтение; им владеет
// менеджер сессии.
type Session interface {
	Session() identity.Session
	AccessToken(ctx context.Context) (string, bool)
}

// Controller управляет попыткой участия для одной детальной карточки
// розыгрыша. Экземпляр принадлежит представлению карточки и не разделяется.
type Controller struct {
	raffleID string
	client   *raffles.Client
	session  Session
	notifier Notifier
	log      *zap.SugaredLogger

	pollInterval time.Duration
	pollCeiling  time.Duration

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu         sync.Mutex
	state      State
	detail     *model.Detail
	done       chan struct{}
	doneClosed bool
	cancelPoll context.CancelFunc
}

// New создаёт контроллер участия для указанного розыгрыша.
func New(raffleID string, client *raffles.Client, session Session, notifier Notifier, log *zap.SugaredLogger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		raffleID:     raffleID,
		client:       client,
		session:      session,
		notifier:     notifier,
		log:          log,
		pollInterval: defaultPollInterval,
		pollCeiling:  defaultPollCeiling,
		rootCtx:      ctx,
		rootCancel:   cancel,
	}
}

// State возвращает текущее состояние попытки.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Detail возвращает последнюю известную карточку розыгрыша.
func (c *Controller) Detail() *model.Detail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// SetDetail задаёт карточку розыгрыша, полученную хостом.
func (c *Controller) SetDetail(detail *model.Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = detail
}

// Done возвращает канал, закрываемый по завершении последней попытки.
// До первой попытки канал отсутствует (nil).
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait блокирует до завершения текущей попытки либо отмены контекста.
func (c *Controller) Wait(ctx context.Context) {
	done := c.Done()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Participate подаёт заявку на участие. Предусловия: розыгрыш активен и
// открыт для участия, пользователь аутентифицирован и не администратор.
// Повторный вызов при заявке в полёте — no-op: одновременно существует не
// более одной попытки.
func (c *Controller) Participate(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateSubmitting || c.state == StatePending {
		c.mu.Unlock()
		return
	}
	if c.rootCtx.Err() != nil {
		c.mu.Unlock()
		return
	}

	detail := c.detail
	snapshot := c.session.Session()
	if detail == nil || detail.Status != model.StatusActive || !detail.CanParticipate ||
		!snapshot.IsAuthenticated || (snapshot.User != nil && snapshot.User.IsAdmin) {
		c.mu.Unlock()
		return
	}

	c.state = StateSubmitting
	c.done = make(chan struct{})
	c.doneClosed = false
	c.mu.Unlock()

	token, ok := c.session.AccessToken(ctx)
	if !ok {
		c.notifier.Error("Sesión expirada", "Por favor inicia sesión nuevamente")
		c.finish(StateIdle)
		return
	}

	resp := c.client.Participate(ctx, token, c.raffleID)

	switch {
	case !resp.OK:
		detailMsg := "Intenta nuevamente"
		if resp.Err != nil && resp.Err.Message != "" {
			detailMsg = resp.Err.Message
		}
		c.notifier.Error("Error al participar", detailMsg)
		c.finish(StateFailed)

	case resp.Status == http.StatusAccepted:
		c.notifier.Info("Solicitud en cola", "Tu participación está siendo procesada...")
		c.startPolling()

	default:
		// Немедленное подтверждение: счётчики и флаги берём из
		// авторитетного повторного чтения.
		if refreshed := c.fetchDetail(ctx); refreshed != nil {
			c.SetDetail(refreshed)
		}
		c.notifier.Success("¡Participación registrada!", "Ya estás participando en este sorteo")
		c.finish(StateResolved)
	}
}

// Refetch выполняет разовое повторное чтение карточки и заменяет локальное
// состояние. Используется и обработчиком истечения таймера обратного
// отсчёта.
func (c *Controller) Refetch(ctx context.Context) *model.Detail {
	if refreshed := c.fetchDetail(ctx); refreshed != nil {
		c.SetDetail(refreshed)
		return refreshed
	}
	return nil
}

// Close детерминированно останавливает контроллер: опрос и таймеры
// снимаются, дальнейшие попытки не запускаются.
func (c *Controller) Close() {
	c.rootCancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
	if c.state == StateSubmitting || c.state == StatePending {
		c.state = StateIdle
		c.closeDoneLocked()
	}
}

// closeDoneLocked закрывает канал завершения не более одного раза.
// Вызывается только под c.mu.
func (c *Controller) closeDoneLocked() {
	if c.done != nil && !c.doneClosed {
		close(c.done)
		c.doneClosed = true
	}
}

// startPolling переводит попытку в ожидание подтверждения и запускает цикл
// опроса. Цикл живёт на контексте контроллера: он переживает исходный
// запрос хоста, но не сам контроллер.
func (c *Controller) startPolling() {
	ctx, cancel := context.WithCancel(c.rootCtx)

	c.mu.Lock()
	if c.state != StateSubmitting {
		c.mu.Unlock()
		cancel()
		return
	}
	c.state = StatePending
	c.cancelPoll = cancel
	c.mu.Unlock()

	go c.poll(ctx)
}

// poll опрашивает карточку розыгрыша каждые две секунды, пока участие не
// подтвердится либо не истечёт тридцатисекундный потолок. Оба таймера
// снимаются вместе.
func (c *Controller) poll(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	ceiling := time.NewTimer(c.pollCeiling)
	defer ceiling.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ceiling.C:
			// Истечение потолка — не отказ: заявка всё ещё
			// обрабатывается, пользователю предлагают обновить
			// страницу позже.
			c.notifier.Info("Participación en proceso",
				"Tu solicitud está siendo procesada. Recarga la página en unos momentos.")
			c.finish(StateIdle)
			return

		case <-ticker.C:
			detail := c.fetchDetail(ctx)
			if detail == nil {
				continue
			}
			if !detail.CanParticipate || detail.UserHasParticipated {
				c.SetDetail(detail)
				c.notifier.Success("¡Participación confirmada!", "Ya estás participando en este sorteo")
				c.finish(StateResolved)
				return
			}
		}
	}
}

// fetchDetail читает карточку розыгрыша с токеном текущей сессии, если он
// доступен. Конкурирующие записи карточки допустимы: оба источника сходятся
// к одному серверному состоянию, побеждает последняя.
func (c *Controller) fetchDetail(ctx context.Context) *model.Detail {
	token, _ := c.session.AccessToken(ctx)

	resp := c.client.GetByID(ctx, c.raffleID, token)
	if !resp.OK || resp.Data == nil {
		c.logFetchFailure(resp)
		return nil
	}
	return resp.Data
}

func (c *Controller) logFetchFailure(resp api.Response[model.Detail]) {
	if resp.Err != nil {
		c.log.Debugw("raffle detail fetch failed",
			"raffle_id", c.raffleID, "status", resp.Status, "error", resp.Err.Message)
	}
}

// finish завершает текущую попытку: фиксирует состояние, снимает опрос и
// закрывает канал завершения.
func (c *Controller) finish(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = state
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
	c.closeDoneLocked()
}

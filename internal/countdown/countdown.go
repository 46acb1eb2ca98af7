// Package countdown реализует посекундный обратный отсчёт до окончания
// розыгрыша с разовым обратным вызовом по истечении.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// TimeLeft — остаток времени, разложенный на дни, часы, минуты и секунды.
type TimeLeft struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Zero сообщает, исчерпан ли остаток.
func (t TimeLeft) Zero() bool {
	return t.Days == 0 && t.Hours == 0 && t.Minutes == 0 && t.Seconds == 0
}

// String форматирует остаток в виде dd:hh:mm:ss.
func (t TimeLeft) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Days, t.Hours, t.Minutes, t.Seconds)
}

// Remaining вычисляет остаток времени между двумя моментами. Прошедший
// срок даёт нулевой остаток.
func Remaining(end, now time.Time) TimeLeft {
	diff := end.Sub(now)
	if diff <= 0 {
		return TimeLeft{}
	}

	seconds := int(diff / time.Second)
	return TimeLeft{
		Days:    seconds / 86400,
		Hours:   seconds / 3600 % 24,
		Minutes: seconds / 60 % 60,
		Seconds: seconds % 60,
	}
}

// Timer тикает раз в секунду от остатка до end и один раз вызывает
// onExpire при достижении нуля. Владелец обязан вызвать Stop при
// демонтаже представления.
type Timer struct {
	end      time.Time
	onExpire func()

	mu      sync.Mutex
	ticker  *time.Ticker
	stop    chan struct{}
	stopped bool
}

// NewTimer запускает обратный отсчёт до end. onExpire может быть nil.
func NewTimer(end time.Time, onExpire func()) *Timer {
	t := &Timer{
		end:      end,
		onExpire: onExpire,
		ticker:   time.NewTicker(time.Second),
		stop:     make(chan struct{}),
	}

	go t.run()
	return t
}

// Remaining возвращает текущий остаток времени.
func (t *Timer) Remaining() TimeLeft {
	return Remaining(t.end, time.Now())
}

// Stop останавливает отсчёт. Повторный вызов безопасен.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	t.ticker.Stop()
	close(t.stop)
}

func (t *Timer) run() {
	for {
		select {
		case <-t.stop:
			return
		case now := <-t.ticker.C:
			if Remaining(t.end, now).Zero() {
				t.Stop()
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}

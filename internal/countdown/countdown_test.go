package countdown

import (
	"testing"
	"time"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want TimeLeft
	}{
		{
			name: "days hours minutes seconds",
			end:  now.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second),
			want: TimeLeft{Days: 2, Hours: 3, Minutes: 4, Seconds: 5},
		},
		{
			name: "under a minute",
			end:  now.Add(42 * time.Second),
			want: TimeLeft{Seconds: 42},
		},
		{
			name: "already passed",
			end:  now.Add(-time.Hour),
			want: TimeLeft{},
		},
		{
			name: "exactly now",
			end:  now,
			want: TimeLeft{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.end, now); got != tt.want {
				t.Fatalf("Remaining() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTimeLeftZero(t *testing.T) {
	if !(TimeLeft{}).Zero() {
		t.Fatal("empty TimeLeft must be zero")
	}
	if (TimeLeft{Seconds: 1}).Zero() {
		t.Fatal("non-empty TimeLeft must not be zero")
	}
}

func TestTimeLeftString(t *testing.T) {
	got := TimeLeft{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}.String()
	if got != "01:02:03:04" {
		t.Fatalf("String() = %q", got)
	}
}

func TestTimer_ExpiresOnce(t *testing.T) {
	fired := make(chan struct{}, 2)

	timer := NewTimer(time.Now().Add(1500*time.Millisecond), func() {
		fired <- struct{}{}
	})
	defer timer.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("timer did not expire")
	}

	select {
	case <-fired:
		t.Fatal("onExpire fired more than once")
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestTimer_StopIdempotent(t *testing.T) {
	timer := NewTimer(time.Now().Add(time.Hour), nil)
	timer.Stop()
	timer.Stop()
}

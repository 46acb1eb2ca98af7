package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/mmeshcher/raffle-client/internal/model"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(&app{})

	want := []string{
		"list", "show", "participate",
		"signup", "confirm", "resend", "signin", "signout", "whoami",
		"create", "close", "upload",
	}

	registered := map[string]bool{}
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Fatalf("command %q is not registered", name)
		}
	}
}

func TestPrintDetail(t *testing.T) {
	var d model.Detail
	d.Raffle = model.Raffle{
		RaffleID:            "r-1",
		Title:               "iPhone 16",
		Description:         "Sorteo de prueba",
		Status:              model.StatusActive,
		Category:            model.CategoryPremium,
		MaxParticipants:     100,
		CurrentParticipants: 40,
		EndDate:             time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	d.ParticipationPercentage = 40
	d.UserHasParticipated = true

	var sb strings.Builder
	printDetail(&sb, &d)

	out := sb.String()
	for _, want := range []string{"iPhone 16", "40/100", "Ya estás participando"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintNotifier(t *testing.T) {
	var sb strings.Builder
	n := printNotifier{out: &sb}

	n.Success("¡Participación registrada!", "Ya estás participando")
	n.Error("Error al participar", "Intenta nuevamente")

	out := sb.String()
	if !strings.Contains(out, "¡Participación registrada!") {
		t.Fatalf("missing success output:\n%s", out)
	}
	if !strings.Contains(out, "Error al participar: Intenta nuevamente") {
		t.Fatalf("missing error output:\n%s", out)
	}
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmeshcher/raffle-client/internal/countdown"
	"github.com/mmeshcher/raffle-client/internal/model"
	"github.com/mmeshcher/raffle-client/internal/participation"
	"github.com/mmeshcher/raffle-client/internal/raffles"
)

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los sorteos disponibles",
		Example: `  raffle list
  raffle list --status active --limit 20
  raffle list --cursor <next_cursor>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := model.Status(status)
			if status != "" && !st.Valid() {
				return fmt.Errorf("estado desconocido %q (active, processing, completed, cancelled)", status)
			}

			resp := a.raffles.List(cmd.Context(), raffles.ListParams{
				Status: st,
				Limit:  limit,
				Cursor: cursor,
			})
			result, err := resp.Unwrap()
			if err != nil {
				return fmt.Errorf("no se pudieron cargar los sorteos: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(result.Raffles) == 0 {
				fmt.Fprintln(out, "No hay sorteos disponibles")
				return nil
			}
			for _, r := range result.Raffles {
				fmt.Fprintf(out, "%s  [%s]  %s  (%d/%d)\n",
					r.RaffleID, r.Status, r.Title, r.CurrentParticipants, r.MaxParticipants)
			}
			if result.HasMore && result.NextCursor != "" {
				fmt.Fprintf(out, "\nHay más resultados: raffle list --cursor %s\n", result.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filtrar por estado: active, processing, completed, cancelled")
	cmd.Flags().IntVarP(&limit, "limit", "l", 12, "Cantidad de sorteos por página")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor de la página siguiente")

	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "show <raffle-id>",
		Short: "Muestra el detalle de un sorteo",
		Example: `  raffle show 7f3a...
  raffle show 7f3a... --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := a.manager.AccessToken(cmd.Context())

			resp := a.raffles.GetByID(cmd.Context(), args[0], token)
			detail, err := resp.Unwrap()
			if err != nil {
				return fmt.Errorf("no se pudo cargar el sorteo: %w", err)
			}

			printDetail(cmd.OutOrStdout(), detail)

			if watch && detail.Status == model.StatusActive {
				return watchCountdown(cmd, detail.EndDate)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Mostrar la cuenta regresiva hasta el cierre")

	return cmd
}

func newParticipateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "participate <raffle-id>",
		Short: "Registra tu participación en un sorteo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireToken(cmd.Context()); err != nil {
				return err
			}

			notifier := printNotifier{out: cmd.OutOrStdout()}
			ctrl := participation.New(args[0], a.raffles, a.manager, notifier, a.logger.Sugar())
			defer ctrl.Close()

			if ctrl.Refetch(cmd.Context()) == nil {
				return fmt.Errorf("no se pudo cargar el sorteo")
			}

			ctrl.Participate(cmd.Context())
			ctrl.Wait(cmd.Context())

			if ctrl.State() == participation.StateFailed {
				return fmt.Errorf("la participación no se completó")
			}
			return nil
		},
	}
}

func printDetail(out io.Writer, d *model.Detail) {
	fmt.Fprintf(out, "%s\n", d.Title)
	fmt.Fprintf(out, "Estado: %s  Categoría: %s\n", d.Status, d.Category)
	fmt.Fprintf(out, "Participantes: %d/%d (%.0f%%)\n",
		d.CurrentParticipants, d.MaxParticipants, d.ParticipationPercentage)
	fmt.Fprintf(out, "Cierre: %s\n", d.EndDate.Format("02/01/2006 15:04"))

	if d.UserHasParticipated {
		fmt.Fprintln(out, "Ya estás participando en este sorteo")
	}

	if info, ok := d.Processing(); ok {
		fmt.Fprintln(out, "Seleccionando ganador...")
		if info.Message != "" {
			fmt.Fprintln(out, info.Message)
		}
	}
	if info, ok := d.Completed(); ok {
		if info.WinnerName != nil {
			fmt.Fprintf(out, "Ganador: %s\n", *info.WinnerName)
		} else {
			fmt.Fprintln(out, "Sin ganador (no hubo participantes)")
		}
		fmt.Fprintf(out, "Participantes en total: %d\n", info.TotalParticipants)
	}
	if info, ok := d.Cancelled(); ok {
		fmt.Fprintf(out, "Sorteo cancelado: %s\n", info.CancellationReason)
	}

	fmt.Fprintf(out, "\n%s\n", d.Description)
}

// watchCountdown печатает обратный отсчёт раз в секунду до истечения
// срока или отмены контекста.
func watchCountdown(cmd *cobra.Command, end time.Time) error {
	out := cmd.OutOrStdout()

	expired := make(chan struct{})
	timer := countdown.NewTimer(end, func() { close(expired) })
	defer timer.Stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-expired:
			fmt.Fprintln(out, "El sorteo ha cerrado")
			return nil
		case <-ticker.C:
			fmt.Fprintf(out, "\rTermina en %s", timer.Remaining())
		}
	}
}

// printNotifier выводит уведомления контроллера участия в стандартный вывод.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Success(title, detail string) {
	fmt.Fprintf(n.out, "%s %s\n", title, detail)
}

func (n printNotifier) Info(title, detail string) {
	fmt.Fprintf(n.out, "%s %s\n", title, detail)
}

func (n printNotifier) Error(title, detail string) {
	fmt.Fprintf(n.out, "%s: %s\n", title, detail)
}

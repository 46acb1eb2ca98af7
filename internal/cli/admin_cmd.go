package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmeshcher/raffle-client/internal/model"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		prizeValue  float64
		images      []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un sorteo (solo administradores)",
		Example: `  raffle create --title "iPhone 16" --description "..." --prize-value 1200 \
    --image prize.jpg --image prize2.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.requireAdmin(cmd.Context())
			if err != nil {
				return err
			}

			urls := make([]string, 0, len(images))
			for _, path := range images {
				u, err := a.uploadFile(cmd, token, path)
				if err != nil {
					return err
				}
				urls = append(urls, u)
			}

			resp := a.raffles.Create(cmd.Context(), token, model.CreateInput{
				Title:       title,
				Description: description,
				PrizeValue:  prizeValue,
				PrizeImages: urls,
			})
			result, err := resp.Unwrap()
			if err != nil {
				return fmt.Errorf("no se pudo crear el sorteo: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sorteo creado: %s\n", result.Raffle.RaffleID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Título del sorteo")
	cmd.Flags().StringVar(&description, "description", "", "Descripción del sorteo")
	cmd.Flags().Float64Var(&prizeValue, "prize-value", 0, "Valor del premio")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Imagen del premio (se puede repetir)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("prize-value")

	return cmd
}

func newCloseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <raffle-id>",
		Short: "Cierra un sorteo y selecciona el ganador (solo administradores)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireAdmin(cmd.Context())
			if err != nil {
				return err
			}

			resp := a.raffles.CloseRaffle(cmd.Context(), token, args[0])
			result, err := resp.Unwrap()
			if err != nil {
				return fmt.Errorf("no se pudo cerrar el sorteo: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sorteo cerrado: %s\n", result.Raffle.RaffleID)
			if result.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			}
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Sube una imagen al almacenamiento (solo administradores)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.requireAdmin(cmd.Context())
			if err != nil {
				return err
			}

			u, err := a.uploadFile(cmd, token, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

// uploadFile загружает локальный файл по presigned-ссылке и возвращает
// публичный URL.
func (a *app) uploadFile(cmd *cobra.Command, token, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("no se pudo leer %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u, err := a.raffles.UploadImage(cmd.Context(), token, filepath.Base(path), contentType, data)
	if err != nil {
		return "", fmt.Errorf("no se pudo subir %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imagen subida: %s\n", filepath.Base(path))
	return u, nil
}

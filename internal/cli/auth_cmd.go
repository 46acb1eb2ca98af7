package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmeshcher/raffle-client/internal/identity"
)

func newSignUpCmd(a *app) *cobra.Command {
	var (
		email     string
		password  string
		firstName string
		lastName  string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Crea una cuenta nueva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.manager.SignUp(cmd.Context(), identity.SignUpInput{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return authErr(err)
			}

			out := cmd.OutOrStdout()
			if result.NextStep == identity.StepConfirmSignUp {
				fmt.Fprintf(out, "Código enviado a %s\n", email)
				fmt.Fprintf(out, "Confirma tu cuenta: raffle confirm --email %s --code <código>\n", email)
				return nil
			}
			fmt.Fprintln(out, "Cuenta creada")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Correo electrónico")
	cmd.Flags().StringVar(&password, "password", "", "Contraseña")
	cmd.Flags().StringVar(&firstName, "first-name", "", "Nombre")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Apellido")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("first-name")
	cmd.MarkFlagRequired("last-name")

	return cmd
}

func newConfirmCmd(a *app) *cobra.Command {
	var (
		email string
		code  string
	)

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Verifica la cuenta con el código enviado por correo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.ConfirmSignUp(cmd.Context(), email, code); err != nil {
				return authErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "¡Cuenta verificada! Ya puedes iniciar sesión")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Correo electrónico")
	cmd.Flags().StringVar(&code, "code", "", "Código de verificación de 6 dígitos")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("code")

	return cmd
}

func newResendCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Reenvía el código de verificación",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.ResendConfirmationCode(cmd.Context(), email); err != nil {
				return authErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Código reenviado a %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Correo electrónico")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newSignInCmd(a *app) *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Inicia sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.SignIn(cmd.Context(), email, password); err != nil {
				return authErr(err)
			}
			s := a.manager.Session()
			fmt.Fprintf(cmd.OutOrStdout(), "¡Bienvenido, %s!\n", s.User.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Correo electrónico")
	cmd.Flags().StringVar(&password, "password", "", "Contraseña")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newSignOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Cierra la sesión y elimina los tokens guardados",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.SignOut(cmd.Context()); err != nil {
				return authErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Muestra la sesión activa",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.manager.Session()
			if !s.IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "No hay sesión activa")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", s.User.FullName(), s.User.Email)
			if len(s.User.Groups) > 0 {
				fmt.Fprintf(out, "Grupos: %v\n", s.User.Groups)
			}
			if s.User.IsAdmin {
				fmt.Fprintln(out, "Rol: administrador")
			}
			return nil
		},
	}
}

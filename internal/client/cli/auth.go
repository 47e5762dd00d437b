package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(r *runner) *cobra.Command {
	var token, name string
	var onboard bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an identity-provider token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := r.app
			ctx := cmd.Context()

			if token == "" {
				t, err := GetSecret(a.in, a.reader, "Identity token", a.out)
				if err != nil {
					return err
				}
				token = t
			}

			user, err := a.authStore.Login(ctx, strings.TrimSpace(token))
			if err != nil {
				return err
			}

			if onboard && !user.HasCompletedOnboarding {
				step := map[string]any{}
				if name != "" {
					step["name"] = name
				}
				if user, err = a.authStore.CompleteOnboarding(ctx, step); err != nil {
					return err
				}
			}

			who := user.Name
			if who == "" {
				who = user.Email
			}
			fmt.Fprintf(a.out, "%s as %s (%s plan)\n", goodStyle.Render("Logged in"), who, user.SubscriptionPlan)
			if !user.HasCompletedOnboarding {
				fmt.Fprintln(a.out, mutedStyle.Render("Onboarding not finished, run `dreamtracer login --onboard` to complete it."))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "identity token (prompted when empty)")
	cmd.Flags().BoolVar(&onboard, "onboard", false, "mark onboarding as completed")
	cmd.Flags().StringVar(&name, "name", "", "display name saved during onboarding")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.app.authStore.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(r.app.out, "Logged out.")
			return nil
		},
	}
}

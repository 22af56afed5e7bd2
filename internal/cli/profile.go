package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/profile"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show your profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.printProfile(cmd.OutOrStdout(), a.sess.Profile)
			},
		},
		newProfileSetCmd(a),
		newProfileValidateCmd(),
	)
	return cmd
}

func (a *app) printProfile(w io.Writer, p model.Profile) error {
	if a.opts.json {
		return printJSON(w, p)
	}

	fmt.Fprintln(w, p.Greeting())
	fields := []struct{ label, value string }{
		{"ID", p.ID},
		{"Role", p.Role},
		{"Email", p.Email},
		{"Username", p.Username},
		{"Phone", p.Phone},
		{"Bio", p.Bio},
		{"Website", p.Website},
		{"Location", p.Location},
		{"Birth date", p.BirthDate},
		{"Avatar", p.AvatarURL},
		{"Banner", p.BannerURL},
		{"Public", fmt.Sprint(p.IsPublic)},
		{"Emails", fmt.Sprint(p.EmailNotifications)},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(w, "  %-11s %s\n", f.label, f.value)
	}
	return nil
}

func newProfileSetCmd(a *app) *cobra.Command {
	var (
		u     profile.Update
		email string

		fullName, username, phone, bio, avatar, banner, website, location, birthDate string
		public, notifications                                                        bool
	)

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Update profile fields",
		Example: `  dex profile set --full-name "Ash Ketchum" --email ash@example.com --email-notifications`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			strs := []struct {
				flag string
				val  *string
				dst  **string
			}{
				{"full-name", &fullName, &u.FullName},
				{"username", &username, &u.Username},
				{"phone", &phone, &u.Phone},
				{"bio", &bio, &u.Bio},
				{"avatar-url", &avatar, &u.AvatarURL},
				{"banner-url", &banner, &u.BannerURL},
				{"website", &website, &u.Website},
				{"location", &location, &u.Location},
				{"birth-date", &birthDate, &u.BirthDate},
			}
			for _, s := range strs {
				if flags.Changed(s.flag) {
					*s.dst = s.val
				}
			}
			if flags.Changed("public") {
				u.IsPublic = &public
			}
			if flags.Changed("email-notifications") {
				u.EmailNotifications = &notifications
			}

			if u.Empty() && !flags.Changed("email") {
				return fmt.Errorf("nothing to update, see --help for the available fields")
			}

			profiles := a.sessions.Profiles()
			if _, err := profiles.Update(ctx, a.sess.UserID(), u); err != nil {
				return err
			}
			if flags.Changed("email") {
				if _, err := profiles.SetEmail(ctx, a.sess.UserID(), email); err != nil {
					return err
				}
			}

			sess, err := a.sessions.Reload(ctx)
			if err != nil {
				return err
			}
			a.sess = sess

			if a.opts.json {
				return printJSON(cmd.OutOrStdout(), sess.Profile)
			}
			printSuccess(cmd, "Profile updated")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fullName, "full-name", "", "full name")
	f.StringVar(&username, "username", "", "username")
	f.StringVar(&phone, "phone", "", "phone number")
	f.StringVar(&bio, "bio", "", "short bio")
	f.StringVar(&avatar, "avatar-url", "", "avatar image URL")
	f.StringVar(&banner, "banner-url", "", "banner image URL")
	f.StringVar(&website, "website", "", "website URL")
	f.StringVar(&location, "location", "", "location")
	f.StringVar(&birthDate, "birth-date", "", "birth date (YYYY-MM-DD)")
	f.BoolVar(&public, "public", true, "show the profile publicly")
	f.BoolVar(&notifications, "email-notifications", false, "receive new-entry emails")
	f.StringVar(&email, "email", "", "address for notifications")

	return cmd
}

func newProfileValidateCmd() *cobra.Command {
	var form profile.Form

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Check profile form input",
		Example:     `  dex profile validate --full-name "Ash Ketchum" --age 21 --city Pallet`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			problems := profile.ValidateForm(form)
			if len(problems) == 0 {
				printSuccess(cmd, "Profile form is valid")
				return nil
			}

			fields := make([]string, 0, len(problems))
			for f := range problems {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				errorLabel.Fprintf(cmd.ErrOrStderr(), "%s: ", f)
				fmt.Fprintln(cmd.ErrOrStderr(), problems[f])
			}
			return ErrAlreadyHandled
		},
	}

	cmd.Flags().StringVar(&form.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&form.Age, "age", "", "age in years")
	cmd.Flags().StringVar(&form.City, "city", "", "city")
	return cmd
}

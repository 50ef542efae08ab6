package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brinaregal/brina/internal/service"
)

func init() {
	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Administrator accounts",
	}

	var email, name, password string
	var force bool
	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				user, err := a.services.API.Install.CreateAdmin(ctx, service.InstallInput{
					Email:    email,
					Name:     name,
					Password: password,
					Force:    force,
				})
				if err != nil {
					return fmt.Errorf("create admin failed: %w", err)
				}
				fmt.Printf("Admin %s created (id %d).\n", user.Email, user.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "Admin email")
	createCmd.Flags().StringVar(&name, "name", "", "Display name")
	createCmd.Flags().StringVar(&password, "password", "", "Admin password")
	createCmd.Flags().BoolVar(&force, "force", false, "Create even if an admin already exists")
	adminCmd.AddCommand(createCmd)

	var adminsOnly bool
	var listCmd = &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				filter := service.AdminUserFilter{PageSize: 100}
				if adminsOnly {
					filter.IsAdmin = &adminsOnly
				}
				page, err := a.services.API.AdminUser.List(ctx, filter)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tEmail\tName\tAdmin\tActive")
				for _, u := range page.Users {
					fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%v\n", u.ID, u.Email, u.Name, u.IsAdmin, u.Active)
				}
				w.Flush()
				fmt.Printf("%d account(s)\n", page.Total)
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&adminsOnly, "admins", false, "Only administrators")
	adminCmd.AddCommand(listCmd)

	rootCmd.AddCommand(adminCmd)
}

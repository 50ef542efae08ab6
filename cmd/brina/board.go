package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/brinaregal/brina/internal/bootstrap"
	"github.com/brinaregal/brina/internal/tui"
)

var boardActor string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Launch the interactive order board",
	Long:  "Launch a terminal board that lists incoming orders and reservations and lets staff confirm or reject them.",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().StringVar(&boardActor, "actor", "board", "Name recorded in the audit log for decisions")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		// keeps kitchen notifications flowing while the board is open
		scheduler, err := bootstrap.BuildScheduler(a.infra, a.services, a.logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
			a.flushNotifications(ctx)
		}()

		model := tui.NewModel(a.services.API.AdminOrder, boardActor, a.infra.Location)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("run board: %w", err)
		}
		return nil
	})
}

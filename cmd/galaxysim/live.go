package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s := sim.New(cfg)
	defer s.Close()

	p := tea.NewProgram(viz.NewModel(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

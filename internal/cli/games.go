package cli

import (
	"github.com/spf13/cobra"

	"github.com/gysagsohn/game-tracker-server/internal/api/response"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Game catalog commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesAddCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Game

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamesAddCmd() *cobra.Command {
	var name, category, description string
	var minPlayers, maxPlayers int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom game to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":        name,
				"category":    category,
				"description": description,
				"minPlayers":  minPlayers,
				"maxPlayers":  maxPlayers,
			}
			var result response.Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game name (required)")
	cmd.Flags().StringVar(&category, "category", "Other", "Category: Card, Board, Dice, Word, Strategy, Trivia, Party, Other")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().IntVar(&minPlayers, "min-players", 0, "Minimum players")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Maximum players")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

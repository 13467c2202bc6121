package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gysagsohn/game-tracker-server/internal/api/response"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "matches"},
		Short:   "Match session commands",
	}

	cmd.AddCommand(newSessionsListCmd("list", "List sessions you played in", "/api/v1/sessions"))
	cmd.AddCommand(newSessionsListCmd("pending", "List sessions waiting for your confirmation", "/api/v1/sessions/my-pending"))
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsCreateCmd())
	cmd.AddCommand(newSessionsConfirmCmd())
	cmd.AddCommand(newSessionsDeclineCmd())
	cmd.AddCommand(newSessionsRemindCmd())
	cmd.AddCommand(newSessionsDeleteCmd())

	return cmd
}

func newSessionsListCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Session

			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionsCreateCmd() *cobra.Command {
	var game, notes, date string
	var players []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a match",
		Long: `Record a match session. Each --player takes a name followed by
optional comma-separated fields:

  --player "Alice,user=<id>,result=Win,score=10"
  --player "Gary,email=gary@example.com,invite,result=Loss"

Players without user= are guests. Registered players other than you must
confirm the session before it counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"game": game, "notes": notes}

			entries := make([]map[string]any, 0, len(players))
			for _, spec := range players {
				p, err := parsePlayer(spec)
				if err != nil {
					return err
				}
				entries = append(entries, p)
			}
			req["players"] = entries

			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				req["date"] = d
			}

			var result response.Session
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game ID (required)")
	cmd.Flags().StringArrayVar(&players, "player", nil, "Player entry, repeatable (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&date, "date", "", "Match date, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

// parsePlayer turns "Name,key=value,..." into a player entry
func parsePlayer(spec string) (map[string]any, error) {
	parts := strings.Split(spec, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil, fmt.Errorf("player %q: name is required", spec)
	}

	p := map[string]any{"name": name}
	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "user":
			p["user"] = value
		case "email":
			p["email"] = value
		case "result":
			p["result"] = value
		case "score":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("player %q: score must be a number", spec)
			}
			p["score"] = n
		case "invite":
			p["invited"] = true
		default:
			return nil, fmt.Errorf("player %q: unknown field %q", spec, key)
		}
	}
	return p, nil
}

func newSessionsConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>",
		Short: "Confirm your result in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post("/api/v1/sessions/"+args[0]+"/confirm", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionsDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <id>",
		Short: "Remove yourself from a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Decline

			if err := client.Post("/api/v1/sessions/"+args[0]+"/decline", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionsRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind <id>",
		Short: "Remind players who have not confirmed yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Remind

			if err := client.Post("/api/v1/sessions/"+args[0]+"/remind", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/sessions/" + args[0]); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Session deleted")
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/gysagsohn/game-tracker-server/internal/api/response"
)

func newFriendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "friends",
		Aliases: []string{"friend"},
		Short:   "Friend commands",
	}

	cmd.AddCommand(newFriendsUsersCmd("list", "List your friends", "/api/v1/friends"))
	cmd.AddCommand(newFriendsUsersCmd("suggested", "Suggest friends of friends", "/api/v1/friends/suggested"))
	cmd.AddCommand(newFriendsRequestsCmd("requests", "List friend requests sent to you", "/api/v1/friends/requests"))
	cmd.AddCommand(newFriendsRequestsCmd("sent", "List friend requests you sent", "/api/v1/friends/sent"))
	cmd.AddCommand(newFriendsSendCmd())
	cmd.AddCommand(newFriendsRespondCmd("accept", "Accepted"))
	cmd.AddCommand(newFriendsRespondCmd("reject", "Rejected"))
	cmd.AddCommand(newFriendsUnfriendCmd())

	return cmd
}

func newFriendsUsersCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.PublicUser

			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newFriendsRequestsCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.FriendRequest

			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newFriendsSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <email>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.FriendRequest

			if err := client.Post("/api/v1/friends/send", map[string]string{"email": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newFriendsRespondCmd(use, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <sender-id>",
		Short: use + " a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"senderId": args[0], "action": action}
			var result response.Message

			if err := client.Post("/api/v1/friends/respond", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newFriendsUnfriendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unfriend <user-id>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Message

			if err := client.Post("/api/v1/friends/unfriend", map[string]string{"friendId": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

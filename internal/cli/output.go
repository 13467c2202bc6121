package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gysagsohn/game-tracker-server/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(response.Message{Message: msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintEvent outputs one streamed event. JSON output is one event per line.
func (o *Output) PrintEvent(e Event) {
	if o.format == "json" {
		data, _ := json.Marshal(e)
		fmt.Fprintln(o.w, string(data))
		return
	}
	display := strings.ReplaceAll(e.Data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, display)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Auth:
		o.printUser(v.User)
		fmt.Fprintf(o.w, "Token expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04"))
	case response.Signup:
		fmt.Fprintln(o.w, v.Message)
		o.printUser(v.User)
	case response.User:
		o.printUser(v)
	case []response.PublicUser:
		o.printPublicUsers(v)
	case response.Game:
		o.printGames([]response.Game{v})
	case []response.Game:
		o.printGames(v)
	case response.Session:
		o.printSession(v)
	case []response.Session:
		o.printSessions(v)
	case response.Decline:
		fmt.Fprintln(o.w, v.Message)
		if v.Session != nil {
			o.printSession(*v.Session)
		}
	case response.Remind:
		fmt.Fprintf(o.w, "%s (%d reminded)\n", v.Message, v.Reminded)
	case response.Notifications:
		o.printNotifications(v)
	case response.Notification:
		o.printNotifications(response.Notifications{Notifications: []response.Notification{v}})
	case []response.FriendRequest:
		o.printFriendRequests(v)
	case response.FriendRequest:
		o.printFriendRequests([]response.FriendRequest{v})
	case response.ReadAll:
		fmt.Fprintf(o.w, "Marked %d notifications read\n", v.Updated)
	case response.Message:
		fmt.Fprintln(o.w, v.Message)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		if v.Storage != "" {
			fmt.Fprintf(o.w, "Storage: %s\n", v.Storage)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u response.User) {
	fmt.Fprintf(o.w, "User: %s %s (%s)\n", u.FirstName, u.LastName, u.ID)
	fmt.Fprintf(o.w, "Email: %s\n", u.Email)
	verified := "no"
	if u.IsEmailVerified {
		verified = "yes"
	}
	fmt.Fprintf(o.w, "Verified: %s\n", verified)
	if u.Role != "" && u.Role != "user" {
		fmt.Fprintf(o.w, "Role: %s\n", u.Role)
	}
	fmt.Fprintf(o.w, "Record: %dW %dL %dD\n", u.Stats.Wins, u.Stats.Losses, u.Stats.Draws)
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
}

func (o *Output) printPublicUsers(users []response.PublicUser) {
	if len(users) == 0 {
		fmt.Fprintln(o.w, "No users")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\n", u.ID, u.FirstName, u.LastName, u.Email)
	}
	_ = tw.Flush()
}

func (o *Output) printGames(games []response.Game) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPLAYERS")
	for _, g := range games {
		players := "-"
		if g.MinPlayers > 0 || g.MaxPlayers > 0 {
			players = fmt.Sprintf("%d-%d", g.MinPlayers, g.MaxPlayers)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Category, players)
	}
	_ = tw.Flush()
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.ID)
	fmt.Fprintf(o.w, "Game: %s\n", s.Game)
	fmt.Fprintf(o.w, "Date: %s\n", s.Date.Format("2006-01-02"))
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	if s.Notes != "" {
		fmt.Fprintf(o.w, "Notes: %s\n", s.Notes)
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		var tags []string
		if p.User == nil {
			tags = append(tags, "guest")
		}
		if p.Confirmed {
			tags = append(tags, "confirmed")
		} else {
			tags = append(tags, "pending")
		}
		score := ""
		if p.Score != nil {
			score = fmt.Sprintf(" %d pts", *p.Score)
		}
		result := ""
		if p.Result != "" {
			result = " " + p.Result
		}
		fmt.Fprintf(o.w, "  - %s%s%s [%s]\n", p.Name, result, score, strings.Join(tags, ", "))
	}
}

func (o *Output) printSessions(sessions []response.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.w, "No sessions")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tDATE\tGAME\tSTATUS\tPLAYERS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Date.Format("2006-01-02"), s.Game, s.Status, len(s.Players))
	}
	_ = tw.Flush()
}

func (o *Output) printNotifications(n response.Notifications) {
	if len(n.Notifications) == 0 {
		fmt.Fprintln(o.w, "No notifications")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tTYPE\tREAD\tMESSAGE")
	for _, note := range n.Notifications {
		read := " "
		if note.Read {
			read = "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", note.ID, note.Type, read, note.Message)
	}
	_ = tw.Flush()
	if n.Unread > 0 {
		fmt.Fprintf(o.w, "%d unread\n", n.Unread)
	}
}

func (o *Output) printFriendRequests(reqs []response.FriendRequest) {
	if len(reqs) == 0 {
		fmt.Fprintln(o.w, "No friend requests")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "USER\tNAME\tSTATUS\tSENT")
	for _, r := range reqs {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", r.User.ID, r.User.FirstName, r.User.LastName, r.Status, r.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

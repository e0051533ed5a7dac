package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
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
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case SessionList:
		o.printSessionList(v)
	case Player:
		o.printPlayer(v)
	case ActionList:
		o.printActionList(v)
	case CreateActionResult:
		fmt.Printf("Action: %s\n", v.ID)
	case Decision:
		o.printDecision(v)
	case PendingList:
		o.printPendingList(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AuthResult response type (matches API)
type AuthResult struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session response type
type Session struct {
	ClientID      int       `json:"client_id"`
	License       string    `json:"license"`
	Name          string    `json:"name"`
	Ping          int       `json:"ping"`
	ConnectedAt   time.Time `json:"connected_at"`
	Provisional   bool      `json:"provisional"`
	OnlineMinutes int       `json:"online_minutes"`
}

// SessionList response type
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Note response type
type Note struct {
	Text     string     `json:"text"`
	Author   string     `json:"author,omitempty"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// Player response type
type Player struct {
	License       string    `json:"license"`
	Name          string    `json:"name"`
	Online        bool      `json:"online"`
	Provisional   bool      `json:"provisional,omitempty"`
	ClientID      *int      `json:"client_id,omitempty"`
	Ping          *int      `json:"ping,omitempty"`
	Identifiers   []string  `json:"identifiers,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	OnlineMinutes int       `json:"online_minutes"`
	Note          Note      `json:"note"`
}

// Revocation response type
type Revocation struct {
	At     *time.Time `json:"at,omitempty"`
	Author string     `json:"author,omitempty"`
}

// Action response type
type Action struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Identifiers []string   `json:"identifiers"`
	Author      string     `json:"author"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Revocation  Revocation `json:"revocation"`
}

// ActionList response type
type ActionList struct {
	Actions []Action `json:"actions"`
}

// CreateActionResult response type
type CreateActionResult struct {
	ID string `json:"id"`
}

// Decision response type
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason,omitempty"`
}

// PendingRequest response type
type PendingRequest struct {
	ID            string    `json:"id"`
	License       string    `json:"license"`
	Name          string    `json:"name"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// PendingList response type
type PendingList struct {
	Requests []PendingRequest `json:"requests"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Logged in as: %s\n", a.Username)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printSessionList(l SessionList) {
	fmt.Printf("Connected players (%d):\n", len(l.Sessions))
	for _, s := range l.Sessions {
		flags := ""
		if s.Provisional {
			flags = " [provisional]"
		}
		fmt.Printf("  #%d %s (%s) - %dmin, %dms%s\n",
			s.ClientID, s.Name, s.License, s.OnlineMinutes, s.Ping, flags)
	}
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.License)
	if p.Online {
		status := "online"
		if p.Provisional {
			status = "online [provisional]"
		}
		fmt.Printf("Status: %s\n", status)
		if p.ClientID != nil {
			fmt.Printf("Client ID: %d\n", *p.ClientID)
		}
		if len(p.Identifiers) > 0 {
			fmt.Printf("Identifiers: %s\n", strings.Join(p.Identifiers, ", "))
		}
	} else {
		fmt.Println("Status: offline")
	}
	fmt.Printf("Joined: %s\n", p.JoinedAt.Format(time.RFC3339))
	fmt.Printf("Last Seen: %s\n", p.LastSeenAt.Format(time.RFC3339))
	fmt.Printf("Online Minutes: %d\n", p.OnlineMinutes)
	if p.Note.Text != "" {
		fmt.Printf("Note: %s", p.Note.Text)
		if p.Note.Author != "" {
			fmt.Printf(" (by %s)", p.Note.Author)
		}
		fmt.Println()
	}
}

func (o *Output) printActionList(l ActionList) {
	fmt.Printf("Actions (%d):\n", len(l.Actions))
	for _, a := range l.Actions {
		expiry := "permanent"
		if a.ExpiresAt != nil {
			expiry = "expires " + a.ExpiresAt.Format(time.RFC3339)
		}
		revoked := ""
		if a.Revocation.At != nil {
			revoked = fmt.Sprintf(" [revoked by %s]", a.Revocation.Author)
		}
		fmt.Printf("  %s %-9s by %s - %s (%s)%s\n",
			a.ID, a.Kind, a.Author, a.Reason, expiry, revoked)
		fmt.Printf("    targets: %s\n", strings.Join(a.Identifiers, ", "))
	}
}

func (o *Output) printDecision(d Decision) {
	if d.Allow {
		fmt.Println("Decision: allow")
	} else {
		fmt.Println("Decision: deny")
	}
	if d.Reason != "" {
		fmt.Printf("Reason: %s\n", d.Reason)
	}
}

func (o *Output) printPendingList(l PendingList) {
	fmt.Printf("Pending whitelist requests (%d):\n", len(l.Requests))
	for _, r := range l.Requests {
		fmt.Printf("  %s %s (%s) - last attempt %s\n",
			r.ID, r.Name, r.License, r.LastAttemptAt.Format(time.RFC3339))
	}
}

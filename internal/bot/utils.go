package bot

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tasklist/internal/task"

	"github.com/bwmarrin/discordgo"
)

const timeFormat = "2006-01-02 15:04"

// respondWithError sends an error response to the user
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Error: " + errMsg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("[bot] Error sending error response to %s: %v", interactionUsername(i), err)
	}
}

// respondWithSuccess sends a success response to the user
func respondWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("[bot] Error sending response to %s: %v", interactionUsername(i), err)
	}
}

// errorMessage turns a service error into something a user can act on.
func errorMessage(err error) string {
	var taskErr *task.Error
	if !errors.As(err, &taskErr) {
		return "Something went wrong, please try again"
	}

	switch taskErr.Kind {
	case task.KindValidation:
		if taskErr.Msg != "" {
			return taskErr.Msg
		}
		return "Invalid input"
	case task.KindNotFound:
		return fmt.Sprintf("Task #%d no longer exists", taskErr.ID)
	default:
		return "The task store is unavailable, please try again"
	}
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "unknown"
}

// logCommand logs command execution to console and, if configured, to the
// log channel.
func (b *Bot) logCommand(s *discordgo.Session, i *discordgo.InteractionCreate, commandName string, details ...string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	logMessage := fmt.Sprintf("[%s] %s executed /%s", timestamp, interactionUsername(i), commandName)
	if len(details) > 0 {
		logMessage += fmt.Sprintf(" (%s)", strings.Join(details, " "))
	}

	log.Println("[bot] " + logMessage)

	if b.config.LogChannelID != "" {
		sendServerLog(s, b.config.LogChannelID, logMessage)
	}
}

// sendServerLog sends a log message to a Discord channel
func sendServerLog(s *discordgo.Session, channelID string, message string) {
	_, err := s.ChannelMessageSend(channelID, fmt.Sprintf("`%s`", message))
	if err != nil {
		log.Printf("[bot] Error sending log to Discord: %v", err)
	}
}

func formatLogMessage(guildID, message, actor, serverName string) string {
	where := serverName
	if where == "" {
		where = guildID
	}
	if where == "" {
		where = "-"
	}
	return fmt.Sprintf("[bot] [%s] %s: %s", where, actor, message)
}

// renderTaskList renders tasks as a fixed-width table. Only the newest
// maxListRows are shown; the CSV export has everything.
func renderTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks yet. Add one with `/addtask`."
	}

	shown := tasks
	if len(shown) > maxListRows {
		shown = shown[:maxListRows]
	}

	rows := make([][]string, 0, len(shown))
	for _, t := range shown {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			statusBox(t.Completed),
			clip(t.Text, 40),
			formatTime(t.CreatedAt),
		})
	}

	out := formatTable([]string{"ID", "DONE", "TASK", "CREATED"}, rows)
	out += "\n" + task.Summarize(tasks).String()
	if hidden := len(tasks) - len(shown); hidden > 0 {
		out += fmt.Sprintf("\n…and %d more. Use `/tasks format:CSV` for the full list.", hidden)
	}
	return out
}

// renderTasksCSV renders every task with RFC 3339 timestamps.
func renderTasksCSV(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "text", "completed", "created_at", "updated_at"}); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Text,
			strconv.FormatBool(t.Completed),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func statusBox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func statusText(completed bool) string {
	if completed {
		return "completed"
	}
	return "open"
}

// clip shortens s to at most maxLen runes, marking the cut with "...".
func clip(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatTable creates a Discord-friendly table with fixed-width columns
func formatTable(headers []string, rows [][]string) string {
	// Find the maximum width for each column
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len([]rune(header))
	}

	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var result strings.Builder

	result.WriteString("```\n")
	for i, header := range headers {
		result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, header))
	}
	result.WriteString("\n")

	for _, width := range widths {
		result.WriteString(strings.Repeat("-", width+2))
	}
	result.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, cell))
		}
		result.WriteString("\n")
	}
	result.WriteString("```")

	return result.String()
}

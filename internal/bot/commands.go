package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"tasklist/internal/task"

	"github.com/bwmarrin/discordgo"
)

const (
	maxListRows      = 20
	maxChoices       = 25
	maxChoiceNameLen = 100

	// maxReplyTextLen bounds task text echoed back in a reply. Discord
	// accepts longer option values than message content.
	maxReplyTextLen = 1800
	maxTaskTextLen  = 1000
)

var (
	taskOption = &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "task",
		Description:  "Select a task",
		Required:     true,
		Autocomplete: true,
	}

	commands = []*discordgo.ApplicationCommand{
		{
			Name:        "tasks",
			Description: "List all tasks, newest first",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "format",
					Description: "Output format",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Text", Value: "text"},
						{Name: "CSV", Value: "csv"},
					},
				},
			},
		},
		{
			Name:        "addtask",
			Description: "Add a new task",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "What needs to be done",
					Required:    true,
					MaxLength:   maxTaskTextLen,
				},
			},
		},
		{
			Name:        "done",
			Description: "Mark a task as completed",
			Options:     []*discordgo.ApplicationCommandOption{taskOption},
		},
		{
			Name:        "undo",
			Description: "Mark a task as not completed",
			Options:     []*discordgo.ApplicationCommandOption{taskOption},
		},
		{
			Name:        "removetask",
			Description: "Delete a task",
			Options:     []*discordgo.ApplicationCommandOption{taskOption},
		},
	}
)

func (b *Bot) handleList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	tasks, err := b.svc.List(ctx)
	if err != nil {
		respondWithError(s, i, errorMessage(err))
		return
	}

	format := "text"
	if opt := findOption(i.ApplicationCommandData().Options, "format"); opt != nil {
		format = opt.StringValue()
	}

	if format == "csv" {
		data, err := renderTasksCSV(tasks)
		if err != nil {
			log.Printf("[bot] Error rendering CSV: %v", err)
			respondWithError(s, i, "Could not build the CSV export")
			return
		}
		file := &discordgo.File{
			Name:        "tasks.csv",
			ContentType: "text/csv",
			Reader:      bytes.NewReader(data),
		}
		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Files: []*discordgo.File{file},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Printf("[bot] Error sending CSV export: %v", err)
		}
		return
	}

	respondWithSuccess(s, i, renderTaskList(tasks))
}

func (b *Bot) handleAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opt := findOption(i.ApplicationCommandData().Options, "text")
	if opt == nil {
		respondWithError(s, i, "Task text is required")
		return
	}

	created, err := b.svc.Create(ctx, task.CreateInput{Text: opt.StringValue()})
	if err != nil {
		respondWithError(s, i, errorMessage(err))
		return
	}

	b.logCommand(s, i, "addtask", fmt.Sprintf("#%d", created.ID))
	respondWithSuccess(s, i, addedReply(created))
}

func (b *Bot) handleSetCompleted(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, completed bool) {
	id, err := parseTaskID(i.ApplicationCommandData().Options)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}

	updated, err := b.svc.Update(ctx, task.UpdateInput{ID: id, Completed: completed})
	if err != nil {
		respondWithError(s, i, errorMessage(err))
		return
	}

	b.logCommand(s, i, i.ApplicationCommandData().Name, fmt.Sprintf("#%d", id))
	respondWithSuccess(s, i, updatedReply(updated))
}

func (b *Bot) handleRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	id, err := parseTaskID(i.ApplicationCommandData().Options)
	if err != nil {
		respondWithError(s, i, err.Error())
		return
	}

	if err := b.svc.Delete(ctx, task.DeleteInput{ID: id}); err != nil {
		respondWithError(s, i, errorMessage(err))
		return
	}

	b.logCommand(s, i, "removetask", fmt.Sprintf("#%d", id))
	respondWithSuccess(s, i, fmt.Sprintf("Task #%d removed", id))
}

func addedReply(t task.Task) string {
	return fmt.Sprintf("Added task #%d: %s", t.ID, clip(t.Text, maxReplyTextLen))
}

func updatedReply(t task.Task) string {
	return fmt.Sprintf("Task #%d '%s' marked as %s", t.ID, clip(t.Text, maxReplyTextLen), statusText(t.Completed))
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "done", "undo", "removetask":
		b.handleTaskAutocomplete(s, i)
	}
}

func (b *Bot) handleTaskAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	tasks, err := b.svc.List(ctx)
	if err != nil {
		log.Printf("[bot] Error getting tasks for autocomplete: %v", err)
		return
	}

	var input string
	if opt := findOption(i.ApplicationCommandData().Options, "task"); opt != nil {
		input = opt.StringValue()
	}

	// done only offers open tasks and undo only completed ones
	var filter func(task.Task) bool
	switch i.ApplicationCommandData().Name {
	case "done":
		filter = func(t task.Task) bool { return !t.Completed }
	case "undo":
		filter = func(t task.Task) bool { return t.Completed }
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: taskChoices(tasks, input, filter),
		},
	})
	if err != nil {
		log.Printf("[bot] Error responding to autocomplete: %v", err)
	}
}

// taskChoices builds autocomplete choices for tasks whose text or id
// contains input. The choice value is the task id.
func taskChoices(tasks []task.Task, input string, filter func(task.Task) bool) []*discordgo.ApplicationCommandOptionChoice {
	input = strings.ToLower(strings.TrimSpace(input))

	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, t := range tasks {
		if filter != nil && !filter(t) {
			continue
		}
		id := strconv.FormatInt(t.ID, 10)
		if input != "" && !strings.Contains(strings.ToLower(t.Text), input) && !strings.HasPrefix(id, input) {
			continue
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  clip(fmt.Sprintf("#%s %s %s", id, statusBox(t.Completed), t.Text), maxChoiceNameLen),
			Value: id,
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}

// parseTaskID reads the "task" option, which carries a task id either
// picked from autocomplete or typed by the user.
func parseTaskID(options []*discordgo.ApplicationCommandInteractionDataOption) (int64, error) {
	opt := findOption(options, "task")
	if opt == nil {
		return 0, errors.New("task is required")
	}
	raw := strings.TrimPrefix(strings.TrimSpace(opt.StringValue()), "#")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q, pick a task from the list", opt.StringValue())
	}
	return id, nil
}

func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/task"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const commandTimeout = 10 * time.Second

var (
	dmAllowedCommands = map[string]bool{
		"tasks": true, // Read-only listing is fine in DMs
	}
)

type Bot struct {
	config     config.Discord
	svc        *task.Service
	session    *discordgo.Session
	shutdownCh chan struct{}
	isShutdown bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

func New(cfg config.Discord, svc *task.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds

	log.Printf("[bot] Bot intents: %d", session.Identify.Intents)

	return &Bot{
		svc:        svc,
		session:    session,
		config:     cfg,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Helper function to register commands for a guild
func (b *Bot) registerGuildCommands(guildID, serverName string) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerGuildCommandsOnce(guildID, serverName)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("[bot] Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %w", maxRetries, lastErr)
}

func (b *Bot) registerGuildCommandsOnce(guildID, serverName string) error {
	log.Println(formatLogMessage(guildID, "Registering commands", "BOT", serverName))

	// Clear existing commands
	existing, err := b.session.ApplicationCommands(b.config.ClientID, guildID)
	if err != nil {
		return fmt.Errorf("error getting existing commands: %w", err)
	}

	for _, v := range existing {
		if err := b.session.ApplicationCommandDelete(b.config.ClientID, guildID, v.ID); err != nil {
			log.Println(formatLogMessage(guildID, fmt.Sprintf("%s: Failed to delete command (%v)", v.Name, err), "BOT", serverName))
		}
	}

	for _, v := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.config.ClientID, guildID, v); err != nil {
			return fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
		log.Println(formatLogMessage(guildID, fmt.Sprintf("%s: Registered command", v.Name), "BOT", serverName))
	}

	return nil
}

// Start connects to Discord, retrying until it succeeds or ctx is done.
// Commands are registered per guild as guilds become available.
func (b *Bot) Start(ctx context.Context) error {
	log.Println("[bot] Starting Discord bot...")

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleGuildCreate)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			b.handleCommand(s, i)
		case discordgo.InteractionApplicationCommandAutocomplete:
			b.handleAutocomplete(s, i)
		}
	})

	// Keep trying to open session until successful
	for {
		err := b.session.Open()
		if err == nil {
			break
		}
		log.Printf("[bot] Error opening Discord session: %v. Retrying in 5 seconds...", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}

	log.Printf("[bot] Session opened successfully (Session ID: %s)", b.session.State.SessionID)
	return nil
}

// Shutdown performs a graceful shutdown of the bot
func (b *Bot) Shutdown() error {
	log.Println("[bot] Initiating graceful shutdown...")

	// Ensure we only close the channel once
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isShutdown = true
	close(b.shutdownCh)
	b.mu.Unlock()

	// Wait for all handlers to complete
	log.Println("[bot] Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Println(formatLogMessage("", "Removing Discord commands", "BOT", ""))
	for _, guild := range b.session.State.Guilds {
		registered, err := b.session.ApplicationCommands(b.config.ClientID, guild.ID)
		if err != nil {
			log.Println(formatLogMessage(guild.ID, fmt.Sprintf("Error getting commands: %v", err), "BOT", guild.Name))
			continue
		}
		for _, cmd := range registered {
			if err := b.session.ApplicationCommandDelete(b.config.ClientID, guild.ID, cmd.ID); err != nil {
				log.Println(formatLogMessage(guild.ID, fmt.Sprintf("%s: Failed to remove command (%v)", cmd.Name, err), "BOT", guild.Name))
			}
		}
	}

	log.Println("[bot] Closing Discord session...")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}

	log.Println("[bot] Shutdown completed successfully")
	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[bot] Bot is ready! Connected to %d guilds", len(r.Guilds))
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Println(formatLogMessage(g.ID, "Guild available", "BOT", g.Name))

	if err := b.registerGuildCommands(g.ID, g.Name); err != nil {
		log.Println(formatLogMessage(g.ID, fmt.Sprintf("Error registering commands: %v", err), "BOT", g.Name))
	}
}

// acquire registers an in-flight handler. It reports false once shutdown
// has started.
func (b *Bot) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return false
	}
	b.wg.Add(1)
	return true
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.acquire() {
		respondWithError(s, i, "The bot is shutting down, please try again shortly")
		return
	}
	defer b.wg.Done()

	requestID := uuid.NewString()
	username := interactionUsername(i)

	// Add defer to catch panics with stack trace
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("[bot] %s Panic in command handler for user %s:\nError: %v\nStack Trace:\n%s",
				requestID, username, r, string(buf[:n]))

			respondWithError(s, i, "An internal error occurred")
		}
	}()

	commandName := i.ApplicationCommandData().Name

	// Strict DM check
	if i.GuildID == "" && !dmAllowedCommands[commandName] {
		respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a server", commandName))
		return
	}

	if i.GuildID != "" && !canUseCommands(i.Member) {
		respondWithError(s, i, "You don't have permission to use this command here")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	log.Printf("[bot] %s %s executed /%s", requestID, username, commandName)

	switch commandName {
	case "tasks":
		b.handleList(ctx, s, i)
	case "addtask":
		b.handleAdd(ctx, s, i)
	case "done":
		b.handleSetCompleted(ctx, s, i, true)
	case "undo":
		b.handleSetCompleted(ctx, s, i, false)
	case "removetask":
		b.handleRemove(ctx, s, i)
	default:
		log.Println(formatLogMessage(i.GuildID, "Unknown command: "+commandName, username, ""))
		respondWithError(s, i, "Unknown command")
	}
}

// canUseCommands reports whether a guild member may view the channel the
// command was issued in.
func canUseCommands(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	return member.Permissions&discordgo.PermissionViewChannel != 0
}

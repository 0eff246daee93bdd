package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/DoxrGitHub/freegs/internal/config"
	"github.com/DoxrGitHub/freegs/internal/epic"
	"github.com/DoxrGitHub/freegs/internal/notify"
	"github.com/DoxrGitHub/freegs/internal/poller"
	"github.com/DoxrGitHub/freegs/internal/reconcile"
	"github.com/DoxrGitHub/freegs/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	repo     *storage.Repository
	epic     *epic.Client
	engine   *reconcile.Engine
	poller   *poller.Poller
	commands []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	epicClient := epic.NewClient()
	engine := reconcile.New(epicClient, repo, notify.NewDiscord(session))

	b := &Bot{
		config:  cfg,
		session: session,
		repo:    repo,
		epic:    epicClient,
		engine:  engine,
		poller:  poller.New(engine, cfg.PollIntervalMinutes),
	}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and starts background tasks
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Start the reconciliation poller
	go b.poller.Start(ctx)

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop the poller; an in-flight cycle finishes its current guild
	if b.poller != nil {
		b.poller.Stop()
	}

	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
		if b.config.DiscordApplicationID != "" {
			slog.Info("Invite URL", "url", "https://discord.com/oauth2/authorize?client_id="+b.config.DiscordApplicationID)
		}
	})
	b.session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		slog.Info("Added to server", "guild", g.ID, "name", g.Name)
	})
	b.session.AddHandler(b.handleGuildDelete)
}

// handleGuildDelete drops the subscription when the bot is removed from
// a guild. An unavailable guild is a gateway outage, not a removal.
func (b *Bot) handleGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		return
	}

	slog.Info("Removed from server", "guild", g.ID)

	removed, err := b.repo.Remove(context.Background(), g.ID)
	if err != nil {
		slog.Error("Failed to clean up subscription", "guild", g.ID, "error", err)
		return
	}
	if removed {
		slog.Info("Subscription removed", "guild", g.ID)
	}
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	switch data.Name {
	case "setup":
		b.handleSetup(s, i)
	case "current-free-game":
		b.handleCurrentFreeGame(s, i)
	case "remove-setup":
		b.handleRemoveSetup(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}

package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/DoxrGitHub/freegs/internal/notify"
)

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "setup",
			Description:              "Setup FREEGS notifications for this server",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to send notifications",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
						discordgo.ChannelTypeGuildNews,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to ping (leave empty for @everyone)",
					Required:    false,
				},
			},
		},
		{
			Name:        "current-free-game",
			Description: "Show the current free Epic Games Store game",
		},
		{
			Name:                     "remove-setup",
			Description:              "Remove FREEGS notifications from this server",
			DefaultMemberPermissions: &manageGuild,
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// handleSetup handles the /setup command
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	channel := options[0].ChannelValue(s)

	roleID := sql.NullString{}
	roleMention := "@everyone"
	if len(options) > 1 {
		role := options[1].RoleValue(s, i.GuildID)
		if role != nil {
			roleID = sql.NullString{String: role.ID, Valid: true}
			roleMention = role.Mention()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.repo.Upsert(ctx, i.GuildID, channel.ID, roleID); err != nil {
		slog.Error("Failed to save subscription", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "❌ Failed to set up notifications. Please try again.")
		return
	}

	setupEmbed := &discordgo.MessageEmbed{
		Title:       "✅ EGS Setup Complete!",
		Description: fmt.Sprintf("Notifications will be sent to <#%s>", channel.ID),
		Color:       0x00FF00,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", channel.ID), Inline: true},
			{Name: "Role", Value: roleMention, Inline: true},
		},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{setupEmbed},
		},
	})

	// Notify the fresh subscription right away instead of waiting for
	// the next scheduled cycle. Upsert reset the delivery marker, so
	// the guild is eligible even if it saw the current offer before.
	b.poller.TriggerNow()
}

// handleCurrentFreeGame handles the /current-free-game command
func (b *Bot) handleCurrentFreeGame(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Respond immediately to avoid timeout
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	offer, err := b.epic.CurrentOffer(ctx)
	if err != nil {
		slog.Error("Failed to fetch current offer", "error", err)
		b.editResponse(s, i, "❌ Could not reach the Epic Games Store. Please try again later.")
		return
	}
	if offer == nil {
		b.editResponse(s, i, "❌ No free game available right now!")
		return
	}

	embed := notify.Embed(offer)
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}

// handleRemoveSetup handles the /remove-setup command
func (b *Bot) handleRemoveSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	removed, err := b.repo.Remove(ctx, i.GuildID)
	if err != nil {
		slog.Error("Failed to remove subscription", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "❌ Error removing setup!")
		return
	}
	if !removed {
		respondWithMessage(s, i, "❌ No setup found for this server!")
		return
	}

	respondWithMessage(s, i, "✅ Epic Games notifications removed from this server!")
}

// Helper functions

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
}

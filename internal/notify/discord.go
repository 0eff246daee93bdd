// Package notify delivers offer announcements to Discord channels.
package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/DoxrGitHub/freegs/internal/epic"
	"github.com/DoxrGitHub/freegs/internal/storage"
)

const announcement = "**FREEGS: New Epic Games free game available!** FREEGS has crafted a direct purchase link; ensure you're logged into EGS."

// Discord sends offer notifications through a live Discord session
type Discord struct {
	session *discordgo.Session
}

// NewDiscord creates a Discord delivery channel
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

// Send posts the offer announcement to the guild's configured channel.
// A deleted or inaccessible channel surfaces as an error, never as a
// store mutation; cleanup on membership loss is the bot's job.
func (d *Discord) Send(ctx context.Context, server *storage.Server, offer *epic.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	roleID := ""
	if server.RoleID.Valid {
		roleID = server.RoleID.String
	}

	_, err := d.session.ChannelMessageSendComplex(server.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("%s %s", Mention(roleID), announcement),
		Embeds:  []*discordgo.MessageEmbed{Embed(offer)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send to channel %s: %w", server.ChannelID, err)
	}

	return nil
}

package notify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/DoxrGitHub/freegs/internal/epic"
)

const embedColor = 0x00B4D8

// Embed renders the free-offer announcement embed
func Embed(offer *epic.Offer) *discordgo.MessageEmbed {
	description := offer.Description
	if description == "" {
		description = "No description available"
	}

	infoLink := offer.InfoLink
	if infoLink == "" {
		infoLink = "https://store.epicgames.com"
	}

	embed := &discordgo.MessageEmbed{
		Title:       offer.Title,
		Description: description,
		Color:       embedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "[FREEGS](https://github.com/DoxrGitHub/freegs)",
			IconURL: "https://images-eds-ssl.xboxlive.com/image?url=4rt9.lXDC4H_93laV1_eHM0OYfiFeMI2p9MWie0CvL99U4GA1gf6_kayTt_kBblFwHwo8BW8JXlqfnYxKPmmBaCZi8ClpwbXOgA6G7dvea_zrF.gU8crDBsE8CEYlpitDvfcjjOeAcKJZ5sLQBUCmB414kSXwCeJ3MpVrNXR.x0-&format=source",
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "⏰ Offer Ends",
				Value:  fmt.Sprintf("<t:%d:R>", offer.WindowEnd.Unix()),
				Inline: true,
			},
			{
				Name:   "🔗 Links",
				Value:  fmt.Sprintf("[Link to EGS](%s) • [Direct Purchase Link](%s)", infoLink, offer.PurchaseLink),
				Inline: true,
			},
		},
	}

	if offer.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: offer.ImageURL}
	}

	return embed
}

// Mention renders the ping that precedes the embed. An unset role means
// the whole server is addressed.
func Mention(roleID string) string {
	if roleID == "" {
		return "@everyone"
	}
	return fmt.Sprintf("<@&%s>", roleID)
}

package storage

import (
	"database/sql"
	"time"
)

// Server holds one guild's notification subscription
type Server struct {
	GuildID      string
	ChannelID    string
	RoleID       sql.NullString // role to mention; NULL means @everyone
	LastOfferKey sql.NullString // identity of the last offer delivered; NULL means never notified
	CreatedAt    time.Time
}

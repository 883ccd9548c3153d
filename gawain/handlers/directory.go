package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sergawain/gawain/gawain/config"
)

// Lookup is what the directory needs from Discord.
type Lookup interface {
	GuildRoles(guildID snowflake.ID) ([]discord.Role, error)
	ChannelType(channelID snowflake.ID) (discord.ChannelType, error)
}

// RESTLookup answers lookups with REST calls.
type RESTLookup struct {
	Rest rest.Rest
}

func (l RESTLookup) GuildRoles(guildID snowflake.ID) ([]discord.Role, error) {
	return l.Rest.GetRoles(guildID)
}

func (l RESTLookup) ChannelType(channelID snowflake.ID) (discord.ChannelType, error) {
	ch, err := l.Rest.GetChannel(channelID)
	if err != nil {
		return 0, err
	}
	return ch.Type(), nil
}

type roleSet struct {
	byName  map[string]snowflake.ID
	fetched time.Time
}

// Directory caches guild roles by lower-cased name and channel types so
// skill-role mentions and the thread check do not hit the API on every
// interaction.
type Directory struct {
	roles    *lru.Cache
	channels *lru.Cache
	ttl      time.Duration
	now      func() time.Time
}

func NewDirectory() (*Directory, error) {
	roles, err := lru.New(config.RoleCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create role cache: %w", err)
	}
	channels, err := lru.New(config.RoleCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel cache: %w", err)
	}
	return &Directory{
		roles:    roles,
		channels: channels,
		ttl:      config.RoleCacheTTL,
		now:      time.Now,
	}, nil
}

// RoleByName returns the id of the guild role called name, ignoring case.
func (d *Directory) RoleByName(client Lookup, guildID snowflake.ID, name string) (snowflake.ID, bool, error) {
	set, err := d.guildRoles(client, guildID)
	if err != nil {
		return 0, false, err
	}
	id, ok := set.byName[strings.ToLower(name)]
	return id, ok, nil
}

func (d *Directory) guildRoles(client Lookup, guildID snowflake.ID) (*roleSet, error) {
	if v, ok := d.roles.Get(guildID); ok {
		set := v.(*roleSet)
		if d.now().Sub(set.fetched) < d.ttl {
			return set, nil
		}
	}

	roles, err := client.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
	}

	set := &roleSet{byName: make(map[string]snowflake.ID, len(roles)), fetched: d.now()}
	for _, role := range roles {
		key := strings.ToLower(role.Name)
		// first role wins when names collide
		if _, exists := set.byName[key]; !exists {
			set.byName[key] = role.ID
		}
	}
	d.roles.Add(guildID, set)

	slog.Debug("Guild roles cached",
		slog.String("type", "cmd"),
		slog.String("guild_id", guildID.String()),
		slog.Int("roles", len(roles)),
	)
	return set, nil
}

// IsPublicThread reports whether channelID is a public thread.
func (d *Directory) IsPublicThread(client Lookup, channelID snowflake.ID) (bool, error) {
	if v, ok := d.channels.Get(channelID); ok {
		return v.(discord.ChannelType) == discord.ChannelTypeGuildPublicThread, nil
	}

	kind, err := client.ChannelType(channelID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	d.channels.Add(channelID, kind)
	return kind == discord.ChannelTypeGuildPublicThread, nil
}

package redis

import (
	"fmt"

	"github.com/pdenton/rosterd/internal/model"
)

// Key prefix for all roster data
const keyPrefix = "rosterd"

// playerKey returns the Redis key for a durable player record
func playerKey(license model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, license)
}

// actionKey returns the Redis key for a moderation action
func actionKey(id string) string {
	return fmt.Sprintf("%s:action:%s", keyPrefix, id)
}

// actionsIndexKey returns the Redis key for the SET of all action ids
func actionsIndexKey() string {
	return fmt.Sprintf("%s:idx:actions", keyPrefix)
}

// actionsByIdentifierKey returns the Redis key for the SET of action
// ids targeting a given identifier
func actionsByIdentifierKey(identifier string) string {
	return fmt.Sprintf("%s:idx:actions_by_identifier:%s", keyPrefix, identifier)
}

// pendingKey returns the Redis key for a pending whitelist request
func pendingKey(license model.PlayerID) string {
	return fmt.Sprintf("%s:pending:%s", keyPrefix, license)
}

// pendingIndexKey returns the Redis key for the SET of licenses with
// pending whitelist requests
func pendingIndexKey() string {
	return fmt.Sprintf("%s:idx:pending", keyPrefix)
}

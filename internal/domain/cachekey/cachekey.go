// Package cachekey defines the result cache key layout shared by the
// search coordinator and the cache backends.
//
//	<prefix>search:u:<hex(userID)|->:<digest>
//	<prefix>emb:<digest>
//
// The user marker lets a backend invalidate every entry of one user
// without a secondary index. User IDs are hex encoded so distinct IDs
// never share a marker.
package cachekey

import (
	"encoding/hex"
	"strings"
)

// DefaultPrefix namespaces all keys written by this service.
const DefaultPrefix = "vecfuse:"

const anonymous = "-"

// Search builds the key of a cached search response.
func Search(prefix, userID, digest string) string {
	return prefix + "search" + UserMarker(userID) + digest
}

// Embedding builds the key of a cached query embedding.
func Embedding(prefix, digest string) string {
	return prefix + "emb:" + digest
}

// UserMarker is the key fragment identifying the owner of a search entry.
func UserMarker(userID string) string {
	if userID == "" {
		return ":u:" + anonymous + ":"
	}
	return ":u:" + hex.EncodeToString([]byte(userID)) + ":"
}

// UserPattern is a glob matching every search entry of userID under prefix.
func UserPattern(prefix, userID string) string {
	return globEscaper.Replace(prefix+"search"+UserMarker(userID)) + "*"
}

// SearchPattern is a glob matching every search entry under prefix.
func SearchPattern(prefix string) string {
	return globEscaper.Replace(prefix+"search:") + "*"
}

// EmbeddingPattern is a glob matching every cached embedding under prefix.
func EmbeddingPattern(prefix string) string {
	return globEscaper.Replace(prefix+"emb:") + "*"
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

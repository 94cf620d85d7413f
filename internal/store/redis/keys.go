package redis

const (
	// KeyPrefixLink is the prefix for link records (JSON)
	KeyPrefixLink = "goodnews:link:"
	// KeyAllLinks is the key for the set of all link IDs
	KeyAllLinks = "goodnews:links:all"
	// KeyLinksByURL is the hash of normalized URL -> link ID
	KeyLinksByURL = "goodnews:links:by_url"
	// KeyPrefixSignIn is the prefix for pending sign-in tokens
	KeyPrefixSignIn = "goodnews:signin:"
	// KeyPrefixRevoked is the prefix for revoked session IDs
	KeyPrefixRevoked = "goodnews:revoked:"
)

// LinkKey returns the Redis key for a link by ID
func LinkKey(id string) string {
	return KeyPrefixLink + id
}

// AllLinksKey returns the key for the set of all link IDs
func AllLinksKey() string {
	return KeyAllLinks
}

// LinksByURLKey returns the key for the URL index
func LinksByURLKey() string {
	return KeyLinksByURL
}

// SignInKey returns the key for a hashed sign-in token
func SignInKey(tokenHash string) string {
	return KeyPrefixSignIn + tokenHash
}

// RevokedKey returns the key marking a session ID as revoked
func RevokedKey(tokenID string) string {
	return KeyPrefixRevoked + tokenID
}

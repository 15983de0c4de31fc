package models

// Profile is read-only display data for a Farcaster account.
type Profile struct {
	FID            uint64 `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	AvatarURL      string `json:"avatar_url"`
	// Tier is the account tier reported upstream, e.g. "pro".
	Tier string `json:"tier"`
}

// ProStatus is the current pro subscription state of an account.
type ProStatus struct {
	// ExpiresAt is an epoch-seconds timestamp; zero when never subscribed.
	ExpiresAt int64 `json:"expires_at"`
}

package model

import "strconv"

// avatars is the fixed decorative set leaderboard entries draw from.
var avatars = []string{"🦄", "🚀", "⚡", "🔥", "💎", "🎯", "🏆", "⭐", "🌟", "💫"}

// DisplayAddress obfuscates an address for public views: first 6 chars,
// ellipsis, last 4.
func DisplayAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// Avatar picks a decorative avatar deterministically from the last 4 hex
// digits of the address, so the same address always renders the same.
func Avatar(addr string) string {
	if len(addr) < 4 {
		return avatars[0]
	}
	n, err := strconv.ParseUint(addr[len(addr)-4:], 16, 32)
	if err != nil {
		return avatars[0]
	}
	return avatars[n%uint64(len(avatars))]
}

package models

// Follow records that FollowerID follows FollowedID.
type Follow struct {
	ID         string `json:"$id"`
	FollowerID string `json:"follower"`
	FollowedID string `json:"followed"`
}

// FollowerOf returns the follow of userID among follows, if any.
func FollowerOf(follows []Follow, userID string) (Follow, bool) {
	for _, f := range follows {
		if f.FollowerID == userID {
			return f, true
		}
	}
	return Follow{}, false
}

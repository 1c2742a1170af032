package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsEmpty(t *testing.T) {
	assert.True(t, EmptyUser.IsEmpty())
	assert.True(t, User{}.IsEmpty())
	assert.False(t, User{ID: "u1"}.IsEmpty())
}

func TestAccount_ToUser(t *testing.T) {
	acc := &Account{
		ID:       "u1",
		Name:     "Ana",
		Username: "ana",
		Email:    "ana@example.org",
		ImageURL: "https://cdn.example.org/ana.png",
		Bio:      "plantas",
	}

	u := acc.ToUser()
	assert.Equal(t, User{
		ID:       "u1",
		Name:     "Ana",
		Username: "ana",
		Email:    "ana@example.org",
		ImageURL: "https://cdn.example.org/ana.png",
		Bio:      "plantas",
	}, u)

	var none *Account
	assert.True(t, none.ToUser().IsEmpty())
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitTags("a, b,,c "))
	assert.Empty(t, SplitTags(""))
	assert.Empty(t, SplitTags(" , ,"))
}

func TestEditFrom_JoinsTags(t *testing.T) {
	p := Post{ID: "p1", Caption: "Huerto", Location: "Lima", Tags: []string{"a", "b"}}
	assert.Equal(t, NewPost{Caption: "Huerto", Location: "Lima", Tags: "a,b"}, EditFrom(p))
	assert.Equal(t, []string{"a", "b"}, SplitTags(EditFrom(p).Tags))
}

func TestProfileFrom(t *testing.T) {
	u := User{ID: "u1", Name: "Ana", Username: "ana", Email: "ana@example.org", Bio: "plantas"}
	assert.Equal(t, ProfileUpdate{Name: "Ana", Username: "ana", Email: "ana@example.org", Bio: "plantas"}, ProfileFrom(u))
}

func TestFollowerOf(t *testing.T) {
	follows := []Follow{
		{ID: "f1", FollowerID: "u2", FollowedID: "u1"},
		{ID: "f2", FollowerID: "u3", FollowedID: "u1"},
	}

	f, ok := FollowerOf(follows, "u3")
	assert.True(t, ok)
	assert.Equal(t, "f2", f.ID)

	_, ok = FollowerOf(follows, "u9")
	assert.False(t, ok)
}

package groups

import (
	"errors"
	"slices"
	"time"
)

const (
	MaxNameLen          = 25
	MaxMembers          = 25
	MaxGroupsPerCreator = 25
)

var (
	ErrDuplicate    = errors.New("groups: creator already has a group with this name")
	ErrNotFound     = errors.New("groups: not found")
	ErrMemberExists = errors.New("groups: member already in group")
	ErrGroupFull    = errors.New("groups: member limit reached")
)

type Group struct {
	ID          int64
	CreatorID   int64
	Name        string
	RecipientID int64
	Members     []string
	CreatedAt   time.Time
}

func (g *Group) HasMember(name string) bool {
	return slices.Contains(g.Members, name)
}

func (g *Group) Full() bool {
	return len(g.Members) >= MaxMembers
}

// SortedMembers returns a sorted copy of the member list.
func (g *Group) SortedMembers() []string {
	out := slices.Clone(g.Members)
	slices.Sort(out)
	return out
}

// Names returns the group names in input order without repeats.
func Names(list []Group) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, g := range list {
		if _, ok := seen[g.Name]; ok {
			continue
		}
		seen[g.Name] = struct{}{}
		out = append(out, g.Name)
	}
	return out
}

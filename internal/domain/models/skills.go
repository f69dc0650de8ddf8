package models

import (
	"strings"

	"github.com/samber/lo"
)

// Skills is an ordered set of skill names. Order is the order of first appearance.
type Skills []string

// ParseSkills splits comma separated input, trims entries and drops empty ones and duplicates.
func ParseSkills(text string) Skills {
	parts := lo.Map(strings.Split(text, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	return NewSkills(parts...)
}

func NewSkills(skills ...string) Skills {
	nonEmpty := lo.Filter(skills, func(item string, _ int) bool { return item != "" })
	return lo.Uniq(nonEmpty)
}

func (s Skills) Contains(skill string) bool {
	return lo.Contains(s, skill)
}

// IsSubsetOf reports whether every skill of s is in other.
func (s Skills) IsSubsetOf(other Skills) bool {
	return lo.Every(other, s)
}

func (s Skills) String() string {
	return strings.Join(s, ", ")
}

// SkillSelection is the set of required skills a candidate toggled on while applying.
type SkillSelection struct {
	available Skills
	selected  map[string]struct{}
}

func NewSkillSelection(available Skills) *SkillSelection {
	return &SkillSelection{available: available, selected: map[string]struct{}{}}
}

// Toggle selects a skill or deselects it when it is already selected.
// Skills that the job doesn't require are ignored and false is returned.
func (s *SkillSelection) Toggle(skill string) bool {
	if !s.available.Contains(skill) {
		return false
	}
	if _, ok := s.selected[skill]; ok {
		delete(s.selected, skill)
	} else {
		s.selected[skill] = struct{}{}
	}
	return true
}

func (s *SkillSelection) IsSelected(skill string) bool {
	_, ok := s.selected[skill]
	return ok
}

func (s *SkillSelection) Available() Skills {
	return s.available
}

// Selected returns selected skills in the order of the job's required skills,
// so the result doesn't depend on the order of clicks.
func (s *SkillSelection) Selected() Skills {
	return lo.Filter(s.available, func(item string, _ int) bool {
		return s.IsSelected(item)
	})
}

package ai

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed configs/*.json
var embeddedProfiles embed.FS

// GlobalLibrary provides the default behavior profiles bundled with the
// server.
var GlobalLibrary = MustLoadLibrary()

// Library stores behavior profiles indexed by creature kind. Profiles are
// designer-authored tuning; goals read them through Context.Profile.
type Library struct {
	profilesByKind map[string]*Profile
}

// Profile is the per-kind behavior tuning document. Field defaults are
// applied on load so configs only state what differs.
type Profile struct {
	Kind     string          `json:"kind" jsonschema:"required,description=Creature kind this profile applies to"`
	Patrol   PatrolProfile   `json:"patrol"`
	Follow   FollowProfile   `json:"follow"`
	Flee     FleeProfile     `json:"flee"`
	Search   SearchProfile   `json:"search"`
	Wander   WanderProfile   `json:"wander"`
	Approach ApproachProfile `json:"approach"`
}

// PatrolProfile tunes the waypoint-following goals.
type PatrolProfile struct {
	// PauseTurns is how long a pack leader waits at each waypoint for
	// followers to catch up.
	PauseTurns int `json:"pauseTurns"`
	// Tolerance is the arrival distance for a waypoint, in tiles.
	Tolerance int `json:"tolerance"`
	// WanderRange bounds ad hoc patrol destinations, in tiles from home.
	WanderRange int `json:"wanderRange"`
}

// FollowProfile tunes escort and pack-follower distance keeping.
type FollowProfile struct {
	Distance int `json:"distance"`
}

// FleeProfile tunes evasion.
type FleeProfile struct {
	// SafetyMin is the number of consecutive threat-free turns required
	// before a flee is considered over.
	SafetyMin int `json:"safetyMin"`
	// AllyFloodRange is the walk-distance radius scanned for allies worth
	// fleeing toward.
	AllyFloodRange int `json:"allyFloodRange"`
	// SafeDistance ends the flee once the threat is this far away.
	SafeDistance int `json:"safeDistance"`
	// YellInterval is the turn spacing of call-for-help shouts while
	// fleeing. Zero disables yelling.
	YellInterval int `json:"yellInterval"`
	// MinThreatDistance is the closest the threat may end up after an
	// ally-ward escape step; closer steps fall back to running away.
	MinThreatDistance int `json:"minThreatDistance"`
}

// SearchProfile tunes last-known-position investigation.
type SearchProfile struct {
	// Turns is the search budget after losing contact.
	Turns int `json:"turns"`
	// Radius bounds the wander around the last known position.
	Radius int `json:"radius"`
	// BasePriority is the idle-candidate weight at the moment of contact
	// loss; it decays linearly to zero over Turns.
	BasePriority int `json:"basePriority"`
}

// WanderProfile tunes opportunistic idle wandering.
type WanderProfile struct {
	ChancePercent int `json:"chancePercent"`
	Radius        int `json:"radius"`
}

// ApproachProfile tunes path recomputation cadence.
type ApproachProfile struct {
	RepathInterval int `json:"repathInterval"`
}

func defaultProfile() *Profile {
	return &Profile{
		Kind:     "default",
		Patrol:   PatrolProfile{PauseTurns: 3, Tolerance: 1, WanderRange: 10},
		Follow:   FollowProfile{Distance: 3},
		Flee:     FleeProfile{SafetyMin: 2, AllyFloodRange: 15, SafeDistance: 8, YellInterval: 0, MinThreatDistance: 2},
		Search:   SearchProfile{Turns: 12, Radius: 4, BasePriority: 30},
		Wander:   WanderProfile{ChancePercent: 25, Radius: 6},
		Approach: ApproachProfile{RepathInterval: 8},
	}
}

// profileDoc mirrors Profile with pointer fields so an authored zero is
// distinguishable from an omitted field. Configs only state what differs
// from the package defaults.
type profileDoc struct {
	Kind     string      `json:"kind"`
	Patrol   patrolDoc   `json:"patrol"`
	Follow   followDoc   `json:"follow"`
	Flee     fleeDoc     `json:"flee"`
	Search   searchDoc   `json:"search"`
	Wander   wanderDoc   `json:"wander"`
	Approach approachDoc `json:"approach"`
}

type patrolDoc struct {
	PauseTurns  *int `json:"pauseTurns"`
	Tolerance   *int `json:"tolerance"`
	WanderRange *int `json:"wanderRange"`
}

type followDoc struct {
	Distance *int `json:"distance"`
}

type fleeDoc struct {
	SafetyMin         *int `json:"safetyMin"`
	AllyFloodRange    *int `json:"allyFloodRange"`
	SafeDistance      *int `json:"safeDistance"`
	YellInterval      *int `json:"yellInterval"`
	MinThreatDistance *int `json:"minThreatDistance"`
}

type searchDoc struct {
	Turns        *int `json:"turns"`
	Radius       *int `json:"radius"`
	BasePriority *int `json:"basePriority"`
}

type wanderDoc struct {
	ChancePercent *int `json:"chancePercent"`
	Radius        *int `json:"radius"`
}

type approachDoc struct {
	RepathInterval *int `json:"repathInterval"`
}

// resolve overlays the authored fields on the package defaults.
func (d *profileDoc) resolve() *Profile {
	p := defaultProfile()
	p.Kind = d.Kind
	overlay(&p.Patrol.PauseTurns, d.Patrol.PauseTurns)
	overlay(&p.Patrol.Tolerance, d.Patrol.Tolerance)
	overlay(&p.Patrol.WanderRange, d.Patrol.WanderRange)
	overlay(&p.Follow.Distance, d.Follow.Distance)
	overlay(&p.Flee.SafetyMin, d.Flee.SafetyMin)
	overlay(&p.Flee.AllyFloodRange, d.Flee.AllyFloodRange)
	overlay(&p.Flee.SafeDistance, d.Flee.SafeDistance)
	overlay(&p.Flee.YellInterval, d.Flee.YellInterval)
	overlay(&p.Flee.MinThreatDistance, d.Flee.MinThreatDistance)
	overlay(&p.Search.Turns, d.Search.Turns)
	overlay(&p.Search.Radius, d.Search.Radius)
	overlay(&p.Search.BasePriority, d.Search.BasePriority)
	overlay(&p.Wander.ChancePercent, d.Wander.ChancePercent)
	overlay(&p.Wander.Radius, d.Wander.Radius)
	overlay(&p.Approach.RepathInterval, d.Approach.RepathInterval)
	return p
}

func overlay(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// MustLoadLibrary parses the embedded profile documents and panics on
// malformed content, which is a build defect rather than a runtime input.
func MustLoadLibrary() *Library {
	lib, err := LoadLibrary(embeddedProfiles, "configs")
	if err != nil {
		panic(fmt.Sprintf("ai: load embedded profiles: %v", err))
	}
	return lib
}

// LoadLibrary reads profile documents from a filesystem directory.
func LoadLibrary(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir: %w", err)
	}
	lib := &Library{profilesByKind: make(map[string]*Profile)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", entry.Name(), err)
		}
		var doc profileDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", entry.Name(), err)
		}
		if doc.Kind == "" {
			return nil, fmt.Errorf("profile %s: missing kind", entry.Name())
		}
		profile := doc.resolve()
		if _, exists := lib.profilesByKind[profile.Kind]; exists {
			return nil, fmt.Errorf("profile %s: duplicate kind %q", entry.Name(), profile.Kind)
		}
		lib.profilesByKind[profile.Kind] = profile
	}
	return lib, nil
}

// ProfileForKind returns the tuning for a creature kind, falling back to
// package defaults for unknown kinds.
func (l *Library) ProfileForKind(kind string) *Profile {
	if l != nil {
		if profile, ok := l.profilesByKind[kind]; ok {
			return profile
		}
	}
	return defaultProfile()
}

// Kinds lists the kinds with an authored profile.
func (l *Library) Kinds() []string {
	if l == nil {
		return nil
	}
	kinds := make([]string, 0, len(l.profilesByKind))
	for kind := range l.profilesByKind {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the sparos resolution
// pipeline: directory candidates, resolved accounts, membership sets, and
// the orchestrator's job and published state records.
package types

import (
	"fmt"
	"strconv"
	"time"
)

// CandidateKind tags which directory path produced a Candidate.
type CandidateKind int

const (
	// CandidatePrimary is a record from the SearchDestinyPlayer endpoint.
	CandidatePrimary CandidateKind = iota
	// CandidateBackup is a record built from a GlobalName search entry.
	CandidateBackup
)

func (k CandidateKind) String() string {
	switch k {
	case CandidatePrimary:
		return "primary"
	case CandidateBackup:
		return "backup"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k CandidateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind written by MarshalText.
func (k *CandidateKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "primary":
		*k = CandidatePrimary
	case "backup":
		*k = CandidateBackup
	default:
		return fmt.Errorf("unknown candidate kind %q", text)
	}
	return nil
}

// DestinyMembership is one platform membership attached to a Bungie.net
// account in GlobalName search results.
type DestinyMembership struct {
	MembershipType int    `json:"membershipType" yaml:"membership_type"`
	MembershipID   string `json:"membershipId" yaml:"membership_id"`
	DisplayName    string `json:"displayName" yaml:"display_name"`
}

// Candidate is a directory entry that may become the resolved account.
// Kind selects which of the optional field groups is populated.
type Candidate struct {
	Kind CandidateKind `json:"kind" yaml:"kind"`

	MembershipType              int    `json:"membershipType" yaml:"membership_type"`
	MembershipID                string `json:"membershipId" yaml:"membership_id"`
	DisplayName                 string `json:"displayName" yaml:"display_name"`
	BungieGlobalDisplayName     string `json:"bungieGlobalDisplayName" yaml:"bungie_global_display_name"`
	BungieGlobalDisplayNameCode int    `json:"bungieGlobalDisplayNameCode" yaml:"bungie_global_display_name_code"`
	IconPath                    string `json:"iconPath,omitempty" yaml:"icon_path,omitempty"`

	// Primary only.
	CrossSaveOverride         int   `json:"crossSaveOverride,omitempty" yaml:"cross_save_override,omitempty"`
	ApplicableMembershipTypes []int `json:"applicableMembershipTypes,omitempty" yaml:"applicable_membership_types,omitempty"`

	// Backup only.
	BungieNetMembershipID string              `json:"bungieNetMembershipId,omitempty" yaml:"bungie_net_membership_id,omitempty"`
	DestinyMemberships    []DestinyMembership `json:"destinyMemberships,omitempty" yaml:"destiny_memberships,omitempty"`
}

// Handle renders the candidate's global name as "Name#1234".
func (c Candidate) Handle() string {
	if c.BungieGlobalDisplayName == "" {
		return c.DisplayName
	}
	return c.BungieGlobalDisplayName + "#" + FormatCode(c.BungieGlobalDisplayNameCode)
}

// IsCanonical reports whether the platform display name matches the global
// display name, which marks the cross-save merged identity.
func (c Candidate) IsCanonical() bool {
	return c.DisplayName == c.BungieGlobalDisplayName
}

// FormatCode zero-pads a discriminator to the four digits Bungie displays.
func FormatCode(code int) string {
	s := strconv.Itoa(code)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

// Membership is one record in a MembershipSet. Records built from the
// backup path carry only type, id, and display name.
type Membership struct {
	MembershipType              int    `json:"membershipType" yaml:"membership_type"`
	MembershipID                string `json:"membershipId" yaml:"membership_id"`
	DisplayName                 string `json:"displayName" yaml:"display_name"`
	BungieGlobalDisplayName     string `json:"bungieGlobalDisplayName,omitempty" yaml:"bungie_global_display_name,omitempty"`
	BungieGlobalDisplayNameCode int    `json:"bungieGlobalDisplayNameCode,omitempty" yaml:"bungie_global_display_name_code,omitempty"`
	CrossSaveOverride           int    `json:"crossSaveOverride,omitempty" yaml:"cross_save_override,omitempty"`
	ApplicableMembershipTypes   []int  `json:"applicableMembershipTypes,omitempty" yaml:"applicable_membership_types,omitempty"`
	IconPath                    string `json:"iconPath,omitempty" yaml:"icon_path,omitempty"`
}

// MembershipSet is every membership associated with a query, independent
// of which candidate was validated.
type MembershipSet struct {
	Memberships []Membership `json:"memberships" yaml:"memberships"`
}

// Len returns the number of memberships in the set.
func (s MembershipSet) Len() int { return len(s.Memberships) }

// ResolvedAccount is the single account chosen for a query together with
// the full membership set.
type ResolvedAccount struct {
	Account     Candidate     `json:"account" yaml:"account"`
	Memberships MembershipSet `json:"memberships" yaml:"memberships"`
}

// SearchJob records one in-flight resolution. It is also the advisory
// record persisted for restore on restart.
type SearchJob struct {
	ID        string    `json:"id" yaml:"id"`
	Query     string    `json:"query" yaml:"query"`
	Token     uint64    `json:"token" yaml:"token"`
	StartedAt time.Time `json:"startedAt" yaml:"started_at"`
}

// PipelineState is the caller-facing state published by the orchestrator.
type PipelineState struct {
	Running     bool           `json:"running" yaml:"running"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Job         *SearchJob     `json:"job,omitempty" yaml:"job,omitempty"`
	Account     *Candidate     `json:"account,omitempty" yaml:"account,omitempty"`
	Memberships *MembershipSet `json:"memberships,omitempty" yaml:"memberships,omitempty"`
}

// MembershipTypeName returns the platform name for a Bungie membership
// type, or the number itself when it is not a known platform.
func MembershipTypeName(t int) string {
	switch t {
	case 1:
		return "Xbox"
	case 2:
		return "PlayStation"
	case 3:
		return "Steam"
	case 4:
		return "Blizzard"
	case 5:
		return "Stadia"
	case 6:
		return "Epic"
	case 10:
		return "Demon"
	case 254:
		return "BungieNext"
	default:
		return strconv.Itoa(t)
	}
}

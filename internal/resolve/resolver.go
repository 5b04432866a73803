// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a player handle ("Name#1234") into one validated
// Destiny account. The primary path searches the directory by full name,
// picks between the first result and the canonical cross-save identity,
// and confirms the pick with a stats probe. The backup path pages through
// the global name prefix search and matches the discriminator.
package resolve

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/directory"
	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/pkg/types"
)

// Messages surfaced to callers.
const (
	msgEmptyQuery     = "empty query"
	msgNoUsers        = "no users found with that name"
	msgNoValidAccount = "no valid account found for this name"
	msgInvalidFormat  = "invalid name format, expected Name#1234"
	msgBackupNotFound = "no account found using backup search"
)

// Backup is the fallback search the resolver delegates to.
type Backup interface {
	SearchByPrefixAndCode(ctx context.Context, prefix, code, matchMembershipID string) (*types.ResolvedAccount, error)
}

// Resolver runs the primary lookup, disambiguation, validation probe and
// fallback for one query. It holds no state between calls.
type Resolver struct {
	Gateway directory.Gateway
	Backup  Backup
	Log     logrus.FieldLogger
}

// NewResolver wires a Resolver and its BackupSearch to one gateway.
func NewResolver(gw directory.Gateway, cfg types.ResolverConfig, log logrus.FieldLogger) *Resolver {
	log = logging.OrDiscard(log)
	return &Resolver{
		Gateway: gw,
		Backup:  &BackupSearch{Gateway: gw, MaxPages: cfg.MaxPages, Log: log},
		Log:     log,
	}
}

// Resolve returns the validated account for query. Failures are *Error
// values of kind input, upstream, not found or validation.
func (r *Resolver) Resolve(ctx context.Context, query string) (types.ResolvedAccount, error) {
	if strings.TrimSpace(query) == "" {
		return types.ResolvedAccount{}, inputError(msgEmptyQuery)
	}
	log := logging.OrDiscard(r.Log).WithField("query", query)

	cards, err := directory.SearchPlayer(ctx, r.Gateway, query)
	if err != nil {
		return types.ResolvedAccount{}, upstreamError(err)
	}
	if len(cards) == 0 {
		return types.ResolvedAccount{}, notFoundError(msgNoUsers)
	}

	set := membershipSet(cards)

	first := 0
	second := -1
	for i, c := range cards {
		if c.DisplayName == c.BungieGlobalDisplayName {
			second = i
			break
		}
	}
	log.WithFields(logrus.Fields{"candidates": len(cards), "canonical_index": second}).Debug("primary search")

	if r.viable(ctx, log, cards[first]) {
		return types.ResolvedAccount{Account: primaryCandidate(cards[first]), Memberships: set}, nil
	}
	if second >= 0 && second != first && r.viable(ctx, log, cards[second]) {
		return types.ResolvedAccount{Account: primaryCandidate(cards[second]), Memberships: set}, nil
	}

	// A non-empty set means the name exists but has no playable account;
	// the backup search is only for an empty set.
	if set.Len() > 0 {
		return types.ResolvedAccount{}, validationError(msgNoValidAccount)
	}

	h, err := ParseHandle(query)
	if err != nil {
		return types.ResolvedAccount{}, err
	}
	log.WithField("handle", h.String()).Debug("falling back to backup search")

	res, err := r.Backup.SearchByPrefixAndCode(ctx, h.Prefix, h.Code, "")
	if err != nil {
		return types.ResolvedAccount{}, err
	}
	if res == nil {
		return types.ResolvedAccount{}, notFoundError(msgBackupNotFound)
	}
	return *res, nil
}

// viable probes the stats endpoint. Any failure or empty payload means
// the membership has no playable account; errors are not propagated.
func (r *Resolver) viable(ctx context.Context, log logrus.FieldLogger, c directory.UserInfoCard) bool {
	log = log.WithFields(logrus.Fields{"membership_type": c.MembershipType, "membership_id": c.MembershipID})
	payload, err := directory.AccountStats(ctx, r.Gateway, c.MembershipType, c.MembershipID)
	if err != nil {
		log.WithError(err).Debug("stats probe failed")
		return false
	}
	if len(payload) == 0 {
		log.Debug("stats probe returned no data")
		return false
	}
	return true
}

func primaryCandidate(c directory.UserInfoCard) types.Candidate {
	return types.Candidate{
		Kind:                        types.CandidatePrimary,
		MembershipType:              c.MembershipType,
		MembershipID:                c.MembershipID,
		DisplayName:                 c.DisplayName,
		BungieGlobalDisplayName:     c.BungieGlobalDisplayName,
		BungieGlobalDisplayNameCode: c.BungieGlobalDisplayNameCode,
		IconPath:                    c.IconPath,
		CrossSaveOverride:           c.CrossSaveOverride,
		ApplicableMembershipTypes:   c.ApplicableMembershipTypes,
	}
}

func membershipSet(cards []directory.UserInfoCard) types.MembershipSet {
	set := types.MembershipSet{Memberships: make([]types.Membership, 0, len(cards))}
	for _, c := range cards {
		set.Memberships = append(set.Memberships, types.Membership{
			MembershipType:              c.MembershipType,
			MembershipID:                c.MembershipID,
			DisplayName:                 c.DisplayName,
			BungieGlobalDisplayName:     c.BungieGlobalDisplayName,
			BungieGlobalDisplayNameCode: c.BungieGlobalDisplayNameCode,
			CrossSaveOverride:           c.CrossSaveOverride,
			ApplicableMembershipTypes:   c.ApplicableMembershipTypes,
			IconPath:                    c.IconPath,
		})
	}
	return set
}

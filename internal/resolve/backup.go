// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/directory"
	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/pkg/types"
)

// BackupSearch resolves a handle by paging through the GlobalName prefix
// search and matching the discriminator.
type BackupSearch struct {
	Gateway directory.Gateway
	// MaxPages bounds pagination; <= 0 uses types.DefaultMaxPages.
	MaxPages int
	Log      logrus.FieldLogger
}

// SearchByPrefixAndCode returns the account whose global display name code
// equals code among all prefix matches, or nil when none matches. When
// matchMembershipID is set only that destiny membership is kept. Any page
// failure aborts the search with an upstream error.
func (b *BackupSearch) SearchByPrefixAndCode(ctx context.Context, prefix, code, matchMembershipID string) (*types.ResolvedAccount, error) {
	if prefix == "" || code == "" {
		return nil, nil
	}

	entries, err := b.collect(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var match *directory.UserSearchDetail
	for i := range entries {
		if strconv.Itoa(entries[i].BungieGlobalDisplayNameCode) == code {
			match = &entries[i]
			break
		}
	}
	if match == nil {
		return nil, nil
	}

	memberships := match.DestinyMemberships
	if matchMembershipID != "" {
		var filtered []directory.UserInfoCard
		for _, m := range memberships {
			if m.MembershipID == matchMembershipID {
				filtered = append(filtered, m)
				break
			}
		}
		memberships = filtered
	}

	account := types.Candidate{
		Kind:                        types.CandidateBackup,
		DisplayName:                 match.BungieGlobalDisplayName,
		BungieGlobalDisplayName:     match.BungieGlobalDisplayName,
		BungieGlobalDisplayNameCode: match.BungieGlobalDisplayNameCode,
		BungieNetMembershipID:       match.BungieNetMembershipID,
	}
	set := types.MembershipSet{Memberships: make([]types.Membership, 0, len(memberships))}
	for _, m := range memberships {
		account.DestinyMemberships = append(account.DestinyMemberships, types.DestinyMembership{
			MembershipType: m.MembershipType,
			MembershipID:   m.MembershipID,
			DisplayName:    m.DisplayName,
		})
		set.Memberships = append(set.Memberships, types.Membership{
			MembershipType: m.MembershipType,
			MembershipID:   m.MembershipID,
			DisplayName:    m.DisplayName,
		})
	}
	if len(memberships) > 0 {
		account.MembershipType = memberships[0].MembershipType
		account.MembershipID = memberships[0].MembershipID
	}

	return &types.ResolvedAccount{Account: account, Memberships: set}, nil
}

// collect walks pages from 0 while the directory reports more results and
// the last page was non-empty. An empty page ends the walk even when
// hasMore is still set. Entries without a Bungie.net membership id are
// dropped.
func (b *BackupSearch) collect(ctx context.Context, prefix string) ([]directory.UserSearchDetail, error) {
	maxPages := b.MaxPages
	if maxPages <= 0 {
		maxPages = types.DefaultMaxPages
	}
	log := logging.OrDiscard(b.Log).WithField("prefix", prefix)

	var all []directory.UserSearchDetail
	for page := 0; page < maxPages; page++ {
		sp, err := directory.SearchGlobalName(ctx, b.Gateway, prefix, page)
		if err != nil {
			log.WithField("page", page).WithError(err).Debug("backup search page failed")
			return nil, upstreamError(err)
		}
		all = append(all, sp.SearchResults...)
		log.WithFields(logrus.Fields{"page": page, "results": len(sp.SearchResults), "has_more": sp.HasMore}).Debug("backup search page")

		if len(sp.SearchResults) == 0 || !sp.HasMore {
			break
		}
		if page == maxPages-1 {
			log.WithField("max_pages", maxPages).Warn("backup search stopped at page limit")
		}
	}

	kept := all[:0]
	for _, e := range all {
		if e.BungieNetMembershipID != "" {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sparos/internal/directory"
	"github.com/pdiddy/sparos/pkg/types"
)

func TestBackupSearch_StopsOnEmptyPageDespiteHasMore(t *testing.T) {
	x := entry("Sparrow", 1, "bx")
	y := entry("Sparrowhawk", 2, "by")
	z := entry("SparrowKing", 3, "bz")

	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{x, y}, HasMore: true}))
	gw.on(http.MethodPost, directory.GlobalNamePath(1), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{z}, HasMore: true}))
	gw.on(http.MethodPost, directory.GlobalNamePath(2), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{}, HasMore: true}))

	b := &BackupSearch{Gateway: gw}
	got, err := b.collect(context.Background(), "Sparrow")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "bx", got[0].BungieNetMembershipID)
	assert.Equal(t, "by", got[1].BungieNetMembershipID)
	assert.Equal(t, "bz", got[2].BungieNetMembershipID)
	assert.Equal(t, 3, gw.callCount())
}

func TestBackupSearch_StopsWhenHasMoreFalse(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{entry("Sparrow", 1, "b1")}, HasMore: false}))

	b := &BackupSearch{Gateway: gw}
	got, err := b.collect(context.Background(), "Sparrow")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, gw.callCount())
}

func TestBackupSearch_PageLimit(t *testing.T) {
	gw := newFakeGateway()
	for page := 0; page < 3; page++ {
		gw.on(http.MethodPost, directory.GlobalNamePath(page), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{entry("Sparrow", page, "b")}, HasMore: true}))
	}

	b := &BackupSearch{Gateway: gw, MaxPages: 3}
	got, err := b.collect(context.Background(), "Sparrow")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, gw.callCount())
}

func TestBackupSearch_FiltersGhostEntries(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{
		entry("Sparrow", 42, ""),
		entry("Sparrow", 7, "b7"),
	}}))

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "")
	require.NoError(t, err)
	assert.Nil(t, res, "entry without a Bungie.net membership id is not resolvable")
}

func TestBackupSearch_NormalizedCodeMatches(t *testing.T) {
	h, err := ParseHandle("Sparrow#0042")
	require.NoError(t, err)
	assert.Equal(t, "42", h.Code)

	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{
		entry("Sparrow", 4200, "b4200", card(3, "wrong", "Sparrow", "", 0)),
		entry("Sparrow", 42, "b42",
			card(3, "M-steam", "Sparrow", "", 0),
			card(2, "M-psn", "sparrow_psn", "", 0),
		),
	}}))

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), h.Prefix, h.Code, "")
	require.NoError(t, err)
	require.NotNil(t, res)

	acct := res.Account
	assert.Equal(t, types.CandidateBackup, acct.Kind)
	assert.Equal(t, "M-steam", acct.MembershipID)
	assert.Equal(t, 3, acct.MembershipType)
	assert.Equal(t, "b42", acct.BungieNetMembershipID)
	assert.Equal(t, "Sparrow", acct.DisplayName)
	assert.Equal(t, 42, acct.BungieGlobalDisplayNameCode)
	assert.Len(t, acct.DestinyMemberships, 2)

	require.Equal(t, 2, res.Memberships.Len())
	assert.Equal(t, types.Membership{MembershipType: 2, MembershipID: "M-psn", DisplayName: "sparrow_psn"}, res.Memberships.Memberships[1])
}

func TestBackupSearch_MatchMembershipIDFilter(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{
		entry("Sparrow", 42, "b42",
			card(3, "M-steam", "Sparrow", "", 0),
			card(2, "M-psn", "sparrow_psn", "", 0),
		),
	}}))

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "M-psn")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "M-psn", res.Account.MembershipID)
	require.Equal(t, 1, res.Memberships.Len())
	assert.Equal(t, "M-psn", res.Memberships.Memberships[0].MembershipID)
}

func TestBackupSearch_MatchMembershipIDNotPresent(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{
		entry("Sparrow", 42, "b42", card(3, "M-steam", "Sparrow", "", 0)),
	}}))

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "other")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Account.MembershipID)
	assert.Zero(t, res.Memberships.Len())
}

func TestBackupSearch_NoMatch(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{entry("Sparrow", 7, "b7")}}))

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestBackupSearch_MissingPrefixOrCode(t *testing.T) {
	gw := newFakeGateway()
	b := &BackupSearch{Gateway: gw}

	res, err := b.SearchByPrefixAndCode(context.Background(), "", "42", "")
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = b.SearchByPrefixAndCode(context.Background(), "Sparrow", "", "")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, gw.callCount())
}

func TestBackupSearch_PageErrorAbortsWithoutPartialResult(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), ok(t, directory.SearchPage{SearchResults: []directory.UserSearchDetail{entry("Sparrow", 42, "b42")}, HasMore: true}))
	gw.on(http.MethodPost, directory.GlobalNamePath(1), reply{err: errors.New("connection reset")})

	b := &BackupSearch{Gateway: gw}
	res, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 2, gw.callCount())
}

func TestBackupSearch_UpstreamErrorCode(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, directory.GlobalNamePath(0), failure(5, "System disabled"))

	b := &BackupSearch{Gateway: gw}
	_, err := b.SearchByPrefixAndCode(context.Background(), "Sparrow", "42", "")

	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "System disabled", err.Error())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AllMembershipTypes scopes a player search to every platform.
const AllMembershipTypes = -1

// UserInfoCard is one record from SearchDestinyPlayer, and the shape of
// each destiny membership in GlobalName search results.
type UserInfoCard struct {
	MembershipType              int    `json:"membershipType"`
	MembershipID                string `json:"membershipId"`
	DisplayName                 string `json:"displayName"`
	BungieGlobalDisplayName     string `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode int    `json:"bungieGlobalDisplayNameCode"`
	IconPath                    string `json:"iconPath"`
	CrossSaveOverride           int    `json:"crossSaveOverride"`
	ApplicableMembershipTypes   []int  `json:"applicableMembershipTypes"`
	IsPublic                    bool   `json:"isPublic"`
}

// UserSearchDetail is one entry of a GlobalName search page.
type UserSearchDetail struct {
	BungieGlobalDisplayName     string         `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode int            `json:"bungieGlobalDisplayNameCode"`
	BungieNetMembershipID       string         `json:"bungieNetMembershipId"`
	DestinyMemberships          []UserInfoCard `json:"destinyMemberships"`
}

// SearchPage is the Response of a GlobalName search request.
type SearchPage struct {
	SearchResults []UserSearchDetail `json:"searchResults"`
	Page          int                `json:"page"`
	HasMore       bool               `json:"hasMore"`
}

type globalNamePrefixRequest struct {
	DisplayNamePrefix string `json:"displayNamePrefix"`
}

// SearchPlayerPath returns the SearchDestinyPlayer path for a raw name.
// The name is escaped as a single path segment, so '#' becomes %23.
func SearchPlayerPath(name string) string {
	return fmt.Sprintf("/Destiny2/SearchDestinyPlayer/%d/%s/", AllMembershipTypes, url.PathEscape(name))
}

// StatsPath returns the account stats path for a membership.
func StatsPath(membershipType int, membershipID string) string {
	return fmt.Sprintf("/Destiny2/%d/Account/%s/Stats/", membershipType, url.PathEscape(membershipID))
}

// GlobalNamePath returns the GlobalName search path for a page index.
func GlobalNamePath(page int) string {
	return "/User/Search/GlobalName/" + strconv.Itoa(page) + "/"
}

// SearchPlayer runs the primary name search across all platforms. A
// non-success ErrorCode is returned as *APIError.
func SearchPlayer(ctx context.Context, gw Gateway, name string) ([]UserInfoCard, error) {
	env, err := gw.Do(ctx, http.MethodGet, SearchPlayerPath(name), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, envelopeError(env)
	}

	var cards []UserInfoCard
	if env.HasResponse() {
		if err := json.Unmarshal(env.Response, &cards); err != nil {
			return nil, fmt.Errorf("parsing SearchDestinyPlayer response: %w", err)
		}
	}
	return cards, nil
}

// AccountStats fetches the all-characters stats payload for a membership.
// It returns the raw Response; a non-success ErrorCode is an *APIError.
func AccountStats(ctx context.Context, gw Gateway, membershipType int, membershipID string) (json.RawMessage, error) {
	env, err := gw.Do(ctx, http.MethodGet, StatsPath(membershipType, membershipID), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, envelopeError(env)
	}
	if !env.HasResponse() {
		return nil, nil
	}
	return env.Response, nil
}

// SearchGlobalName fetches one page of the prefix search.
func SearchGlobalName(ctx context.Context, gw Gateway, prefix string, page int) (SearchPage, error) {
	env, err := gw.Do(ctx, http.MethodPost, GlobalNamePath(page), globalNamePrefixRequest{DisplayNamePrefix: prefix})
	if err != nil {
		return SearchPage{}, err
	}
	if !env.OK() {
		return SearchPage{}, envelopeError(env)
	}

	var sp SearchPage
	if env.HasResponse() {
		if err := json.Unmarshal(env.Response, &sp); err != nil {
			return SearchPage{}, fmt.Errorf("parsing GlobalName search page %d: %w", page, err)
		}
	}
	return sp, nil
}

func envelopeError(env Envelope) *APIError {
	return &APIError{
		HTTPStatus:  http.StatusOK,
		ErrorCode:   env.ErrorCode,
		ErrorStatus: env.ErrorStatus,
		Message:     env.Message,
	}
}

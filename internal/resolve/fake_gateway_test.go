// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/sparos/internal/directory"
)

// fakeGateway answers requests from a route table keyed by "METHOD path"
// and records every call in order.
type fakeGateway struct {
	mu     sync.Mutex
	routes map[string]reply
	calls  []string
}

type reply struct {
	env directory.Envelope
	err error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{routes: map[string]reply{}}
}

func (f *fakeGateway) Do(_ context.Context, method, path string, _ any) (directory.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.calls = append(f.calls, key)
	r, ok := f.routes[key]
	if !ok {
		return directory.Envelope{}, fmt.Errorf("unexpected request %s", key)
	}
	return r.env, r.err
}

func (f *fakeGateway) on(method, path string, r reply) {
	f.routes[method+" "+path] = r
}

func (f *fakeGateway) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ok wraps response in a success envelope.
func ok(t *testing.T, response any) reply {
	t.Helper()
	data, err := json.Marshal(response)
	if err != nil {
		t.Fatal(err)
	}
	return reply{env: directory.Envelope{ErrorCode: directory.SuccessCode, ErrorStatus: "Success", Message: "Ok", Response: data}}
}

func failure(code int, message string) reply {
	return reply{env: directory.Envelope{ErrorCode: code, Message: message}}
}

func card(typ int, id, display, global string, code int) directory.UserInfoCard {
	return directory.UserInfoCard{
		MembershipType:              typ,
		MembershipID:                id,
		DisplayName:                 display,
		BungieGlobalDisplayName:     global,
		BungieGlobalDisplayNameCode: code,
	}
}

func entry(global string, code int, bnetID string, memberships ...directory.UserInfoCard) directory.UserSearchDetail {
	return directory.UserSearchDetail{
		BungieGlobalDisplayName:     global,
		BungieGlobalDisplayNameCode: code,
		BungieNetMembershipID:       bnetID,
		DestinyMemberships:          memberships,
	}
}

var statsPayload = map[string]any{"mergedAllCharacters": map[string]any{"results": map[string]any{}}}

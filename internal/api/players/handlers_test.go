package players

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const testAdminKey = "test-admin-key"

func newTestHandlers(t *testing.T) (*Handlers, *store.Memory) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}
	st := store.NewMemory()
	return NewHandlers(st, auth.NewAdmin(string(hash))), st
}

func postJSON(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestHandleRegister(t *testing.T) {
	h, st := newTestHandlers(t)
	team, err := st.CreateTeam(context.Background(), models.Team{Name: "Team", CaptainName: "c", CaptainEmail: "c@x.de"})
	if err != nil {
		t.Fatalf("seed team: %v", err)
	}

	w := httptest.NewRecorder()
	h.HandleRegister(w, postJSON("/api/v1/players", `{
		"name": "Moe Szyslak",
		"teamId": "`+team.ID+`",
		"isCaptain": true
	}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var created models.Player
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Error("response has no id")
	}
	if created.TeamID != team.ID || !created.IsCaptain {
		t.Errorf("created = %+v", created)
	}
}

func TestHandleRegister_UnknownTeam(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.HandleRegister(w, postJSON("/api/v1/players", `{"name": "Moe", "teamId": "no-such-team"}`))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleRegister_MissingName(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.HandleRegister(w, postJSON("/api/v1/players", `{"name": "  "}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleList_Filters(t *testing.T) {
	h, st := newTestHandlers(t)
	ctx := context.Background()
	team, _ := st.CreateTeam(ctx, models.Team{Name: "Team", CaptainName: "c", CaptainEmail: "c@x.de"})
	st.CreatePlayer(ctx, models.Player{Name: "On Team", TeamID: team.ID})
	st.CreatePlayer(ctx, models.Player{Name: "Free Agent", LookingForTeam: true})

	list := func(query string) []models.Player {
		t.Helper()
		w := httptest.NewRecorder()
		h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/v1/players"+query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var payload struct {
			Players []models.Player `json:"players"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return payload.Players
	}

	if got := list(""); len(got) != 2 {
		t.Errorf("unfiltered: %d players, want 2", len(got))
	}
	if got := list("?looking_for_team=true"); len(got) != 1 || got[0].Name != "Free Agent" {
		t.Errorf("looking_for_team filter: %+v", got)
	}
	if got := list("?team_id=" + team.ID); len(got) != 1 || got[0].Name != "On Team" {
		t.Errorf("team filter: %+v", got)
	}

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/v1/players?looking_for_team=maybe", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad bool filter: status = %d, want 400", w.Code)
	}
}

func patchPlayer(h *Handlers, playerID, body, captainEmail, adminKey string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/players/"+playerID, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.SetPathValue("id", playerID)
	if captainEmail != "" {
		r.Header.Set(auth.CaptainEmailHeader, captainEmail)
	}
	if adminKey != "" {
		r.Header.Set(auth.AdminKeyHeader, adminKey)
	}
	w := httptest.NewRecorder()
	h.HandleUpdate(w, r)
	return w
}

func TestHandleUpdate(t *testing.T) {
	h, st := newTestHandlers(t)
	ctx := context.Background()
	team, _ := st.CreateTeam(ctx, models.Team{Name: "Team", CaptainName: "Carla", CaptainEmail: "carla@example.com"})
	player, _ := st.CreatePlayer(ctx, models.Player{Name: "Moe", TeamID: team.ID, LookingForTeam: true})

	w := patchPlayer(h, player.ID, `{
		"name": "Moe Szyslak",
		"lookingForTeam": false,
		"availableAsSubstitute": true
	}`, team.CaptainEmail, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	updated, _ := st.GetPlayer(ctx, player.ID)
	if updated.Name != "Moe Szyslak" || updated.TeamID != team.ID {
		t.Errorf("updated = %+v", updated)
	}
	if updated.LookingForTeam {
		t.Error("looking_for_team not cleared")
	}
	if !updated.AvailableAsSubstitute {
		t.Error("available_as_substitute not set")
	}
}

func TestHandleUpdate_Ownership(t *testing.T) {
	h, st := newTestHandlers(t)
	ctx := context.Background()
	team, _ := st.CreateTeam(ctx, models.Team{Name: "Team", CaptainName: "Carla", CaptainEmail: "carla@example.com"})
	player, _ := st.CreatePlayer(ctx, models.Player{Name: "Moe", TeamID: team.ID, IsCaptain: true})

	if w := patchPlayer(h, player.ID, `{"name": "Mallory"}`, "", ""); w.Code != http.StatusForbidden {
		t.Errorf("anonymous update: status = %d, want 403", w.Code)
	}
	if w := patchPlayer(h, player.ID, `{"name": "Mallory"}`, "other@example.com", ""); w.Code != http.StatusForbidden {
		t.Errorf("stranger update: status = %d, want 403", w.Code)
	}

	unchanged, _ := st.GetPlayer(ctx, player.ID)
	if unchanged.Name != "Moe" || unchanged.TeamID != team.ID || !unchanged.IsCaptain {
		t.Errorf("denied update changed the player: %+v", unchanged)
	}

	if w := patchPlayer(h, player.ID, `{"name": "Moe S."}`, "", testAdminKey); w.Code != http.StatusOK {
		t.Errorf("admin update: status = %d, want 200", w.Code)
	}
}

func TestHandleUpdate_PartialBodyKeepsOtherFields(t *testing.T) {
	h, st := newTestHandlers(t)
	ctx := context.Background()
	team, _ := st.CreateTeam(ctx, models.Team{Name: "Team", CaptainName: "Carla", CaptainEmail: "carla@example.com"})
	player, _ := st.CreatePlayer(ctx, models.Player{
		Name: "Moe", TeamID: team.ID, IsCaptain: true, AvailableAsSubstitute: true,
	})

	w := patchPlayer(h, player.ID, `{"name": "Moe Szyslak"}`, team.CaptainEmail, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	updated, _ := st.GetPlayer(ctx, player.ID)
	if updated.Name != "Moe Szyslak" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.TeamID != team.ID {
		t.Errorf("team detached by name-only update: %q", updated.TeamID)
	}
	if !updated.IsCaptain || !updated.AvailableAsSubstitute {
		t.Errorf("flags cleared by name-only update: %+v", updated)
	}
}

func TestHandleUpdate_UnattachedPlayerIsAdminOnly(t *testing.T) {
	h, st := newTestHandlers(t)
	player, _ := st.CreatePlayer(context.Background(), models.Player{Name: "Free Agent", LookingForTeam: true})

	if w := patchPlayer(h, player.ID, `{"name": "Agent"}`, "someone@example.com", ""); w.Code != http.StatusForbidden {
		t.Errorf("captain header on unattached player: status = %d, want 403", w.Code)
	}
	if w := patchPlayer(h, player.ID, `{"name": "Agent"}`, "", testAdminKey); w.Code != http.StatusOK {
		t.Errorf("admin update: status = %d, want 200", w.Code)
	}
}

func TestHandleStats_ZeroValueWithoutResults(t *testing.T) {
	h, st := newTestHandlers(t)
	player, _ := st.CreatePlayer(context.Background(), models.Player{Name: "Moe"})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/players/"+player.ID+"/stats", nil)
	r.SetPathValue("id", player.ID)
	w := httptest.NewRecorder()
	h.HandleStats(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var stats models.PlayerStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.PlayerID != player.ID {
		t.Errorf("player_id = %q", stats.PlayerID)
	}
	if stats.MatchesPlayed != 0 || stats.LegsWon != 0 || stats.HighFinish != 0 {
		t.Errorf("stats not zero-valued: %+v", stats)
	}
}

func TestHandleStats_UnknownPlayer(t *testing.T) {
	h, _ := newTestHandlers(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/players/nope/stats", nil)
	r.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	h.HandleStats(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	h, st := newTestHandlers(t)
	player, _ := st.CreatePlayer(context.Background(), models.Player{Name: "Moe"})

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/players/"+player.ID, nil)
	r.SetPathValue("id", player.ID)
	w := httptest.NewRecorder()
	h.HandleDelete(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if _, err := st.GetPlayer(context.Background(), player.ID); err == nil {
		t.Error("player still present after delete")
	}
}

// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// Memory is an in-process Store used by tests and local development. RunInTx
// clones the maps under the lock and swaps them back only on success, which
// gives the same all-or-nothing behaviour as a database transaction.
type Memory struct {
	mu sync.Mutex

	teams       map[string]models.Team
	players     map[string]models.Player
	matches     map[string]models.Match
	legResults  map[string][]models.LegResult // keyed by match id
	playerStats map[string]models.PlayerStats

	inTx bool
}

func NewMemory() *Memory {
	return &Memory{
		teams:       make(map[string]models.Team),
		players:     make(map[string]models.Player),
		matches:     make(map[string]models.Match),
		legResults:  make(map[string][]models.LegResult),
		playerStats: make(map[string]models.PlayerStats),
	}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) RunInTx(ctx context.Context, fn func(league.Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	shadow := &Memory{
		teams:       cloneMap(m.teams),
		players:     cloneMap(m.players),
		matches:     cloneMap(m.matches),
		legResults:  cloneSliceMap(m.legResults),
		playerStats: cloneMap(m.playerStats),
		inTx:        true,
	}
	if err := fn(shadow); err != nil {
		return err
	}

	m.teams = shadow.teams
	m.players = shadow.players
	m.matches = shadow.matches
	m.legResults = shadow.legResults
	m.playerStats = shadow.playerStats
	return nil
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneSliceMap(src map[string][]models.LegResult) map[string][]models.LegResult {
	dst := make(map[string][]models.LegResult, len(src))
	for k, v := range src {
		dst[k] = append([]models.LegResult(nil), v...)
	}
	return dst
}

func (m *Memory) CreateTeam(ctx context.Context, team models.Team) (models.Team, error) {
	defer m.lock()()
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	m.teams[team.ID] = team
	return team, nil
}

func (m *Memory) GetTeam(ctx context.Context, id string) (models.Team, error) {
	defer m.lock()()
	team, ok := m.teams[id]
	if !ok {
		return models.Team{}, fmt.Errorf("team %s: %w", id, league.ErrNotFound)
	}
	return team, nil
}

func (m *Memory) GetTeamByName(ctx context.Context, name string) (models.Team, error) {
	defer m.lock()()
	for _, team := range m.teams {
		if team.Name == name {
			return team, nil
		}
	}
	return models.Team{}, fmt.Errorf("team %q: %w", name, league.ErrNotFound)
}

func (m *Memory) ListTeams(ctx context.Context, filter TeamFilter) ([]models.Team, error) {
	defer m.lock()()
	var teams []models.Team
	for _, team := range m.teams {
		if filter.Status != nil && team.Status != *filter.Status {
			continue
		}
		if filter.Tier != nil && team.Tier != *filter.Tier {
			continue
		}
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (m *Memory) UpdateTeam(ctx context.Context, team models.Team) error {
	defer m.lock()()
	if _, ok := m.teams[team.ID]; !ok {
		return fmt.Errorf("team %s: %w", team.ID, league.ErrNotFound)
	}
	team.UpdatedAt = time.Now().UTC()
	m.teams[team.ID] = team
	return nil
}

func (m *Memory) DeleteTeam(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.teams[id]; !ok {
		return fmt.Errorf("team %s: %w", id, league.ErrNotFound)
	}
	delete(m.teams, id)
	for matchID, match := range m.matches {
		if match.Involves(id) {
			delete(m.matches, matchID)
			delete(m.legResults, matchID)
		}
	}
	for playerID, player := range m.players {
		if player.TeamID == id {
			player.TeamID = ""
			m.players[playerID] = player
		}
	}
	return nil
}

func (m *Memory) CreatePlayer(ctx context.Context, player models.Player) (models.Player, error) {
	defer m.lock()()
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	player.CreatedAt = time.Now().UTC()
	m.players[player.ID] = player
	return player, nil
}

func (m *Memory) GetPlayer(ctx context.Context, id string) (models.Player, error) {
	defer m.lock()()
	player, ok := m.players[id]
	if !ok {
		return models.Player{}, fmt.Errorf("player %s: %w", id, league.ErrNotFound)
	}
	return player, nil
}

func (m *Memory) ListPlayers(ctx context.Context, filter PlayerFilter) ([]models.Player, error) {
	defer m.lock()()
	var players []models.Player
	for _, player := range m.players {
		if filter.TeamID != nil && player.TeamID != *filter.TeamID {
			continue
		}
		if filter.LookingForTeam != nil && player.LookingForTeam != *filter.LookingForTeam {
			continue
		}
		if filter.AvailableAsSubstitute != nil && player.AvailableAsSubstitute != *filter.AvailableAsSubstitute {
			continue
		}
		players = append(players, player)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}

func (m *Memory) UpdatePlayer(ctx context.Context, player models.Player) error {
	defer m.lock()()
	existing, ok := m.players[player.ID]
	if !ok {
		return fmt.Errorf("player %s: %w", player.ID, league.ErrNotFound)
	}
	player.CreatedAt = existing.CreatedAt
	m.players[player.ID] = player
	return nil
}

func (m *Memory) DeletePlayer(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.players[id]; !ok {
		return fmt.Errorf("player %s: %w", id, league.ErrNotFound)
	}
	delete(m.players, id)
	delete(m.playerStats, id)
	return nil
}

func (m *Memory) CreateMatches(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	defer m.lock()()
	now := time.Now().UTC()
	created := make([]models.Match, 0, len(matches))
	for _, match := range matches {
		if match.ID == "" {
			match.ID = uuid.NewString()
		}
		match.CreatedAt = now
		match.UpdatedAt = now
		m.matches[match.ID] = match
		created = append(created, match)
	}
	return created, nil
}

func (m *Memory) GetMatch(ctx context.Context, id string) (models.Match, error) {
	defer m.lock()()
	match, ok := m.matches[id]
	if !ok {
		return models.Match{}, fmt.Errorf("match %s: %w", id, league.ErrNotFound)
	}
	return match, nil
}

func (m *Memory) ListMatches(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	defer m.lock()()
	var matches []models.Match
	for _, match := range m.matches {
		if filter.TeamID != nil && !match.Involves(*filter.TeamID) {
			continue
		}
		if filter.Status != nil && match.Status != *filter.Status {
			continue
		}
		if filter.Matchday != nil && match.Matchday != *filter.Matchday {
			continue
		}
		if filter.DateFrom != nil && match.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && !match.Date.Before(*filter.DateTo) {
			continue
		}
		matches = append(matches, match)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Matchday != matches[j].Matchday {
			return matches[i].Matchday < matches[j].Matchday
		}
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.Before(matches[j].Date)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (m *Memory) UpdateMatchIfStatus(ctx context.Context, match models.Match, expect models.MatchStatus) error {
	defer m.lock()()
	current, ok := m.matches[match.ID]
	if !ok {
		return fmt.Errorf("match %s: %w", match.ID, league.ErrNotFound)
	}
	if current.Status != expect {
		return fmt.Errorf("match %s is no longer %s: %w", match.ID, expect, league.ErrConflict)
	}
	match.CreatedAt = current.CreatedAt
	m.matches[match.ID] = match
	return nil
}

func (m *Memory) DeleteMatch(ctx context.Context, id string) error {
	defer m.lock()()
	if _, ok := m.matches[id]; !ok {
		return fmt.Errorf("match %s: %w", id, league.ErrNotFound)
	}
	delete(m.matches, id)
	return nil
}

func (m *Memory) ReplaceLegResults(ctx context.Context, matchID string, results []models.LegResult) error {
	defer m.lock()()
	saved := make([]models.LegResult, 0, len(results))
	for _, result := range results {
		if result.ID == "" {
			result.ID = uuid.NewString()
		}
		result.MatchID = matchID
		saved = append(saved, result)
	}
	m.legResults[matchID] = saved
	return nil
}

func (m *Memory) ListLegResults(ctx context.Context, matchID string) ([]models.LegResult, error) {
	defer m.lock()()
	return append([]models.LegResult(nil), m.legResults[matchID]...), nil
}

func (m *Memory) DeleteLegResults(ctx context.Context, matchID string) error {
	defer m.lock()()
	delete(m.legResults, matchID)
	return nil
}

func (m *Memory) GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error) {
	defer m.lock()()
	stats, ok := m.playerStats[playerID]
	if !ok {
		return models.PlayerStats{}, fmt.Errorf("player stats %s: %w", playerID, league.ErrNotFound)
	}
	return stats, nil
}

func (m *Memory) UpsertPlayerStats(ctx context.Context, stats models.PlayerStats) error {
	defer m.lock()()
	m.playerStats[stats.PlayerID] = stats
	return nil
}

func (m *Memory) ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error) {
	defer m.lock()()
	all := make([]models.PlayerStats, 0, len(m.playerStats))
	for _, stats := range m.playerStats {
		all = append(all, stats)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LegDifference != all[j].LegDifference {
			return all[i].LegDifference > all[j].LegDifference
		}
		if all[i].LegsWon != all[j].LegsWon {
			return all[i].LegsWon > all[j].LegsWon
		}
		return all[i].PlayerID < all[j].PlayerID
	})
	return all, nil
}

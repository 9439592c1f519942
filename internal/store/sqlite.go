// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite implements Store on a SQLite database. A transaction-bound copy
// (db nil, q holding the *sql.Tx) is handed to RunInTx callbacks.
type SQLite struct {
	db *sql.DB
	q  dbtx
}

// OpenSQLite opens the database at the given DSN, ensures foreign keys are
// enforced, and applies the embedded migrations.
func OpenSQLite(dataSourceName string) (*SQLite, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && !strings.Contains(dataSourceName, ":memory:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}
	dataSourceName = ensureForeignKeysEnabledDSN(dataSourceName)

	sqlDB, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &SQLite{db: sqlDB, q: sqlDB}, nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for migrations tooling and tests.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// ensureForeignKeysEnabledDSN adds `_fk=1` to the DSN if missing.
func ensureForeignKeysEnabledDSN(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_fk=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_fk=1"
	}
	return dataSourceName + "?_fk=1"
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not create source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// RunInTx runs fn inside a transaction. When called on a transaction-bound
// store it reuses the open transaction instead of nesting.
func (s *SQLite) RunInTx(ctx context.Context, fn func(league.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&SQLite{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}
	return nil
}

const teamColumns = `id, name, captain_name, captain_email, captain_phone, status, tier,
points, wins, draws, losses, legs_won, legs_lost, sets_won, sets_lost, created_at, updated_at`

func scanTeam(row interface{ Scan(dest ...any) error }) (models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.CaptainName, &t.CaptainEmail, &t.CaptainPhone,
		&t.Status, &t.Tier, &t.Points, &t.Wins, &t.Draws, &t.Losses,
		&t.LegsWon, &t.LegsLost, &t.SetsWon, &t.SetsLost, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *SQLite) CreateTeam(ctx context.Context, team models.Team) (models.Team, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now

	_, err := s.q.ExecContext(ctx, `INSERT INTO teams (`+teamColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		team.ID, team.Name, team.CaptainName, team.CaptainEmail, team.CaptainPhone,
		team.Status, team.Tier, team.Points, team.Wins, team.Draws, team.Losses,
		team.LegsWon, team.LegsLost, team.SetsWon, team.SetsLost, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return models.Team{}, fmt.Errorf("error creating team: %w", err)
	}
	return team, nil
}

func (s *SQLite) GetTeam(ctx context.Context, id string) (models.Team, error) {
	team, err := scanTeam(s.q.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, fmt.Errorf("team %s: %w", id, league.ErrNotFound)
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("error loading team: %w", err)
	}
	return team, nil
}

func (s *SQLite) GetTeamByName(ctx context.Context, name string) (models.Team, error) {
	team, err := scanTeam(s.q.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Team{}, fmt.Errorf("team %q: %w", name, league.ErrNotFound)
	}
	if err != nil {
		return models.Team{}, fmt.Errorf("error loading team: %w", err)
	}
	return team, nil
}

func (s *SQLite) ListTeams(ctx context.Context, filter TeamFilter) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams`
	var clauses []string
	var args []any
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Tier != nil {
		clauses = append(clauses, "tier = ?")
		args = append(args, *filter.Tier)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *SQLite) UpdateTeam(ctx context.Context, team models.Team) error {
	team.UpdatedAt = time.Now().UTC()
	result, err := s.q.ExecContext(ctx, `UPDATE teams SET name = ?, captain_name = ?,
		captain_email = ?, captain_phone = ?, status = ?, tier = ?, points = ?, wins = ?,
		draws = ?, losses = ?, legs_won = ?, legs_lost = ?, sets_won = ?, sets_lost = ?,
		updated_at = ? WHERE id = ?`,
		team.Name, team.CaptainName, team.CaptainEmail, team.CaptainPhone,
		team.Status, team.Tier, team.Points, team.Wins, team.Draws, team.Losses,
		team.LegsWon, team.LegsLost, team.SetsWon, team.SetsLost, team.UpdatedAt, team.ID)
	if err != nil {
		return fmt.Errorf("error updating team: %w", err)
	}
	return requireRowAffected(result, "team", team.ID)
}

func (s *SQLite) DeleteTeam(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting team: %w", err)
	}
	return requireRowAffected(result, "team", id)
}

const playerColumns = `id, name, team_id, is_captain, looking_for_team, available_as_substitute, created_at`

func scanPlayer(row interface{ Scan(dest ...any) error }) (models.Player, error) {
	var p models.Player
	var teamID sql.NullString
	err := row.Scan(&p.ID, &p.Name, &teamID, &p.IsCaptain, &p.LookingForTeam,
		&p.AvailableAsSubstitute, &p.CreatedAt)
	p.TeamID = teamID.String
	return p, err
}

func nullableID(id string) sql.NullString {
	if id == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: id, Valid: true}
}

func (s *SQLite) CreatePlayer(ctx context.Context, player models.Player) (models.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	player.CreatedAt = time.Now().UTC()

	_, err := s.q.ExecContext(ctx, `INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		player.ID, player.Name, nullableID(player.TeamID), player.IsCaptain,
		player.LookingForTeam, player.AvailableAsSubstitute, player.CreatedAt)
	if err != nil {
		return models.Player{}, fmt.Errorf("error creating player: %w", err)
	}
	return player, nil
}

func (s *SQLite) GetPlayer(ctx context.Context, id string) (models.Player, error) {
	player, err := scanPlayer(s.q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, fmt.Errorf("player %s: %w", id, league.ErrNotFound)
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("error loading player: %w", err)
	}
	return player, nil
}

func (s *SQLite) ListPlayers(ctx context.Context, filter PlayerFilter) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players`
	var clauses []string
	var args []any
	if filter.TeamID != nil {
		clauses = append(clauses, "team_id = ?")
		args = append(args, *filter.TeamID)
	}
	if filter.LookingForTeam != nil {
		clauses = append(clauses, "looking_for_team = ?")
		args = append(args, *filter.LookingForTeam)
	}
	if filter.AvailableAsSubstitute != nil {
		clauses = append(clauses, "available_as_substitute = ?")
		args = append(args, *filter.AvailableAsSubstitute)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (s *SQLite) UpdatePlayer(ctx context.Context, player models.Player) error {
	result, err := s.q.ExecContext(ctx, `UPDATE players SET name = ?, team_id = ?,
		is_captain = ?, looking_for_team = ?, available_as_substitute = ? WHERE id = ?`,
		player.Name, nullableID(player.TeamID), player.IsCaptain,
		player.LookingForTeam, player.AvailableAsSubstitute, player.ID)
	if err != nil {
		return fmt.Errorf("error updating player: %w", err)
	}
	return requireRowAffected(result, "player", player.ID)
}

func (s *SQLite) DeletePlayer(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting player: %w", err)
	}
	return requireRowAffected(result, "player", id)
}

const matchColumns = `id, home_team_id, away_team_id, matchday, date, status,
home_legs, away_legs, home_sets, away_sets, submitted_by_team_id,
needs_confirmation_from, result_photo_url, result_confirmed, created_at, updated_at`

func scanMatch(row interface{ Scan(dest ...any) error }) (models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.Matchday, &m.Date,
		&m.Status, &m.HomeLegs, &m.AwayLegs, &m.HomeSets, &m.AwaySets,
		&m.SubmittedByTeamID, &m.NeedsConfirmationFrom, &m.ResultPhotoURL,
		&m.ResultConfirmed, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *SQLite) CreateMatches(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	created := make([]models.Match, 0, len(matches))
	now := time.Now().UTC()

	insert := func(q dbtx) error {
		for _, match := range matches {
			if match.ID == "" {
				match.ID = uuid.NewString()
			}
			match.CreatedAt = now
			match.UpdatedAt = now
			_, err := q.ExecContext(ctx, `INSERT INTO matches (`+matchColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				match.ID, match.HomeTeamID, match.AwayTeamID, match.Matchday, match.Date,
				match.Status, match.HomeLegs, match.AwayLegs, match.HomeSets, match.AwaySets,
				match.SubmittedByTeamID, match.NeedsConfirmationFrom, match.ResultPhotoURL,
				match.ResultConfirmed, match.CreatedAt, match.UpdatedAt)
			if err != nil {
				return fmt.Errorf("error creating match: %w", err)
			}
			created = append(created, match)
		}
		return nil
	}

	if s.db == nil {
		if err := insert(s.q); err != nil {
			return nil, err
		}
		return created, nil
	}
	err := s.RunInTx(ctx, func(tx league.Store) error {
		return insert(tx.(*SQLite).q)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLite) GetMatch(ctx context.Context, id string) (models.Match, error) {
	match, err := scanMatch(s.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, fmt.Errorf("match %s: %w", id, league.ErrNotFound)
	}
	if err != nil {
		return models.Match{}, fmt.Errorf("error loading match: %w", err)
	}
	return match, nil
}

func (s *SQLite) ListMatches(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches`
	var clauses []string
	var args []any
	if filter.TeamID != nil {
		clauses = append(clauses, "(home_team_id = ? OR away_team_id = ?)")
		args = append(args, *filter.TeamID, *filter.TeamID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Matchday != nil {
		clauses = append(clauses, "matchday = ?")
		args = append(args, *filter.Matchday)
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "date < ?")
		args = append(args, *filter.DateTo)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY matchday, date, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// UpdateMatchIfStatus writes the match only while its stored status still
// equals expect. Zero affected rows means either the match is gone
// (ErrNotFound) or another writer got there first (ErrConflict).
func (s *SQLite) UpdateMatchIfStatus(ctx context.Context, match models.Match, expect models.MatchStatus) error {
	result, err := s.q.ExecContext(ctx, `UPDATE matches SET matchday = ?, date = ?,
		status = ?, home_legs = ?, away_legs = ?, home_sets = ?, away_sets = ?,
		submitted_by_team_id = ?, needs_confirmation_from = ?, result_photo_url = ?,
		result_confirmed = ?, updated_at = ? WHERE id = ? AND status = ?`,
		match.Matchday, match.Date, match.Status, match.HomeLegs, match.AwayLegs,
		match.HomeSets, match.AwaySets, match.SubmittedByTeamID, match.NeedsConfirmationFrom,
		match.ResultPhotoURL, match.ResultConfirmed, match.UpdatedAt, match.ID, expect)
	if err != nil {
		return fmt.Errorf("error updating match: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking match update: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetMatch(ctx, match.ID); err != nil {
			return err
		}
		return fmt.Errorf("match %s is no longer %s: %w", match.ID, expect, league.ErrConflict)
	}
	return nil
}

func (s *SQLite) DeleteMatch(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting match: %w", err)
	}
	return requireRowAffected(result, "match", id)
}

func (s *SQLite) ReplaceLegResults(ctx context.Context, matchID string, results []models.LegResult) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM leg_results WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("error clearing leg results: %w", err)
	}
	for _, result := range results {
		id := result.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := s.q.ExecContext(ctx, `INSERT INTO leg_results (id, match_id,
			home_player_id, away_player_id, home_legs, away_legs, home_average,
			away_average, home_high_finish, away_high_finish, home_centuries, away_centuries)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, matchID, result.HomePlayerID, result.AwayPlayerID,
			result.HomeLegs, result.AwayLegs, result.HomeAverage, result.AwayAverage,
			result.HomeHighFinish, result.AwayHighFinish, result.HomeCenturies, result.AwayCenturies)
		if err != nil {
			return fmt.Errorf("error saving leg result: %w", err)
		}
	}
	return nil
}

func (s *SQLite) ListLegResults(ctx context.Context, matchID string) ([]models.LegResult, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, match_id, home_player_id, away_player_id,
		home_legs, away_legs, home_average, away_average, home_high_finish,
		away_high_finish, home_centuries, away_centuries
		FROM leg_results WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("error listing leg results: %w", err)
	}
	defer rows.Close()

	var results []models.LegResult
	for rows.Next() {
		var r models.LegResult
		if err := rows.Scan(&r.ID, &r.MatchID, &r.HomePlayerID, &r.AwayPlayerID,
			&r.HomeLegs, &r.AwayLegs, &r.HomeAverage, &r.AwayAverage,
			&r.HomeHighFinish, &r.AwayHighFinish, &r.HomeCenturies, &r.AwayCenturies); err != nil {
			return nil, fmt.Errorf("error scanning leg result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLite) DeleteLegResults(ctx context.Context, matchID string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM leg_results WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("error deleting leg results: %w", err)
	}
	return nil
}

const playerStatsColumns = `player_id, matches_played, matches_won, matches_lost,
legs_won, legs_lost, leg_difference, average, high_finish, century_count, updated_at`

func scanPlayerStats(row interface{ Scan(dest ...any) error }) (models.PlayerStats, error) {
	var ps models.PlayerStats
	err := row.Scan(&ps.PlayerID, &ps.MatchesPlayed, &ps.MatchesWon, &ps.MatchesLost,
		&ps.LegsWon, &ps.LegsLost, &ps.LegDifference, &ps.Average, &ps.HighFinish,
		&ps.CenturyCount, &ps.UpdatedAt)
	return ps, err
}

func (s *SQLite) GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error) {
	stats, err := scanPlayerStats(s.q.QueryRowContext(ctx,
		`SELECT `+playerStatsColumns+` FROM player_stats WHERE player_id = ?`, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlayerStats{}, fmt.Errorf("player stats %s: %w", playerID, league.ErrNotFound)
	}
	if err != nil {
		return models.PlayerStats{}, fmt.Errorf("error loading player stats: %w", err)
	}
	return stats, nil
}

func (s *SQLite) UpsertPlayerStats(ctx context.Context, stats models.PlayerStats) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO player_stats (`+playerStatsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			matches_played = excluded.matches_played,
			matches_won = excluded.matches_won,
			matches_lost = excluded.matches_lost,
			legs_won = excluded.legs_won,
			legs_lost = excluded.legs_lost,
			leg_difference = excluded.leg_difference,
			average = excluded.average,
			high_finish = excluded.high_finish,
			century_count = excluded.century_count,
			updated_at = excluded.updated_at`,
		stats.PlayerID, stats.MatchesPlayed, stats.MatchesWon, stats.MatchesLost,
		stats.LegsWon, stats.LegsLost, stats.LegDifference, stats.Average,
		stats.HighFinish, stats.CenturyCount, stats.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting player stats: %w", err)
	}
	return nil
}

func (s *SQLite) ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+playerStatsColumns+` FROM player_stats
		ORDER BY leg_difference DESC, legs_won DESC, player_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing player stats: %w", err)
	}
	defer rows.Close()

	var all []models.PlayerStats
	for rows.Next() {
		stats, err := scanPlayerStats(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning player stats: %w", err)
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

func requireRowAffected(result sql.Result, kind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking %s write: %w", kind, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, league.ErrNotFound)
	}
	return nil
}

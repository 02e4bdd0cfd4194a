package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/migrations"
	"github.com/tobeck/manasink/models"
)

// psql builds queries with Postgres-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// remoteBackend is the Postgres-backed implementation of [Backend].
// Every row it touches is scoped by user_id equality against the
// identity supplied by the [UserResolver], so one connection can serve
// whichever user is currently signed in.
//
// The resolved user is cached after the first lookup; the backend
// selector discards the whole instance on auth-state changes, which is
// what invalidates the cache.
type remoteBackend struct {
	db       *sql.DB
	resolver UserResolver
	logger   *logger.Logger

	mu   sync.Mutex
	user *models.User
}

// NewRemoteBackend connects to the remote store, runs pending schema
// migrations, and returns the remote [Backend] variant.
func NewRemoteBackend(ctx context.Context, cfg config.Remote, resolver UserResolver, log *logger.Logger) (Backend, error) {
	conn, err := sql.Open("pgx", cfg.DatabaseURI)
	if err != nil {
		log.Err(err).Str("func", "NewRemoteBackend").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewRemoteBackend").Msg("error connecting database (ping)")
		return nil, err
	}

	if err = migrations.MigratePostgres(conn); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Str("func", "NewRemoteBackend").Msg("connected to database successfully")

	return &remoteBackend{db: conn, resolver: resolver, logger: log}, nil
}

// CurrentUser resolves and caches the authenticated user. Resolution
// failures are logged and reported as "no user" so the caller can treat
// any outcome as a plain presence check.
func (r *remoteBackend) CurrentUser(ctx context.Context) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.user != nil {
		return r.user, nil
	}

	user, err := r.resolver.CurrentUser(ctx)
	if err != nil {
		r.logger.Err(err).Str("func", "remoteBackend.CurrentUser").Msg("failed to resolve user")
		return nil, nil
	}
	r.user = user
	return r.user, nil
}

func (r *remoteBackend) GetLikedCommanders(ctx context.Context) ([]models.Card, error) {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return []models.Card{}, nil
	}

	query, args, err := psql.Select("commander_data").
		From("liked_commanders").
		Where(sq.Eq{"user_id": user.ID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.GetLikedCommanders").
			Str("user_id", user.ID).
			Msg("failed to execute query for liked commanders")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	liked := make([]models.Card, 0, 50)
	for rows.Next() {
		var raw []byte
		if scanErr := rows.Scan(&raw); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		var card models.Card
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		liked = append(liked, card)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}
	return liked, nil
}

func (r *remoteBackend) LikeCommander(ctx context.Context, commander models.Card) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return ErrNotAuthenticated
	}

	raw, err := json.Marshal(commander)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("liked_commanders").
		Columns("user_id", "commander_id", "commander_data").
		Values(user.ID, commander.ID, raw).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		// a duplicate like means the desired end-state already holds
		if postgresError(err) == pgerrcode.UniqueViolation {
			return nil
		}
		r.logger.Err(err).
			Str("func", "remoteBackend.LikeCommander").
			Str("user_id", user.ID).
			Str("commander_id", commander.ID).
			Msg("failed to insert liked commander")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteBackend) UnlikeCommander(ctx context.Context, commanderID string) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return ErrNotAuthenticated
	}

	query, args, err := psql.Delete("liked_commanders").
		Where(sq.Eq{"user_id": user.ID, "commander_id": commanderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.UnlikeCommander").
			Str("user_id", user.ID).
			Str("commander_id", commanderID).
			Msg("failed to delete liked commander")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteBackend) GetDecks(ctx context.Context) ([]models.Deck, error) {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return []models.Deck{}, nil
	}

	query, args, err := psql.Select("id", "name", "commander_data", "cards", "created_at", "updated_at").
		From("decks").
		Where(sq.Eq{"user_id": user.ID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.GetDecks").
			Str("user_id", user.ID).
			Msg("failed to execute query for decks")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	decks := make([]models.Deck, 0, 10)
	for rows.Next() {
		var (
			deck         models.Deck
			commanderRaw []byte
			cardsRaw     []byte
			createdAt    time.Time
			updatedAt    time.Time
		)
		if scanErr := rows.Scan(&deck.ID, &deck.Name, &commanderRaw, &cardsRaw, &createdAt, &updatedAt); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		if err := json.Unmarshal(commanderRaw, &deck.Commander); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err := json.Unmarshal(cardsRaw, &deck.Cards); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		deck.CreatedAt = createdAt.UnixMilli()
		deck.UpdatedAt = updatedAt.UnixMilli()

		decks = append(decks, deck)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}
	return decks, nil
}

func (r *remoteBackend) CreateDeck(ctx context.Context, commander models.Card, cards []models.Card) (string, error) {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return "", ErrNotAuthenticated
	}

	commanderRaw, err := json.Marshal(commander)
	if err != nil {
		return "", err
	}
	if cards == nil {
		cards = []models.Card{}
	}
	cardsRaw, err := json.Marshal(cards)
	if err != nil {
		return "", err
	}

	deckID := uuid.NewString()
	now := time.Now().UTC()

	query, args, err := psql.Insert("decks").
		Columns("id", "user_id", "name", "commander_id", "commander_data", "cards", "created_at", "updated_at").
		Values(deckID, user.ID, models.DefaultDeckName(commander), commander.ID, commanderRaw, cardsRaw, now, now).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.CreateDeck").
			Str("user_id", user.ID).
			Str("commander_id", commander.ID).
			Msg("failed to insert deck")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return deckID, nil
}

func (r *remoteBackend) UpdateDeck(ctx context.Context, deckID string, update models.DeckUpdate) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return ErrNotAuthenticated
	}

	builder := psql.Update("decks").Set("updated_at", time.Now().UTC())

	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.Cards != nil {
		raw, err := json.Marshal(*update.Cards)
		if err != nil {
			return err
		}
		builder = builder.Set("cards", raw)
	}
	if update.Commander != nil {
		raw, err := json.Marshal(*update.Commander)
		if err != nil {
			return err
		}
		builder = builder.Set("commander_data", raw).Set("commander_id", update.Commander.ID)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": deckID, "user_id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.UpdateDeck").
			Str("user_id", user.ID).
			Str("deck_id", deckID).
			Msg("failed to update deck")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	// zero affected rows covers both "not found" and "not owned"; the
	// contract treats either as a silent no-op
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		r.logger.Debug().
			Str("func", "remoteBackend.UpdateDeck").
			Str("user_id", user.ID).
			Str("deck_id", deckID).
			Msg("update matched no rows")
	}
	return nil
}

func (r *remoteBackend) DeleteDeck(ctx context.Context, deckID string) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return ErrNotAuthenticated
	}

	query, args, err := psql.Delete("decks").
		Where(sq.Eq{"id": deckID, "user_id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.DeleteDeck").
			Str("user_id", user.ID).
			Str("deck_id", deckID).
			Msg("failed to delete deck")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteBackend) GetPreferences(ctx context.Context) (models.Preferences, error) {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return models.DefaultPreferences(), nil
	}

	query, args, err := psql.Select("color_filters").
		From("user_preferences").
		Where(sq.Eq{"user_id": user.ID}).
		ToSql()
	if err != nil {
		return models.Preferences{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var raw []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.GetPreferences").
			Str("user_id", user.ID).
			Msg("failed to read preferences")
		return models.Preferences{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var prefs models.Preferences
	if err := json.Unmarshal(raw, &prefs.ColorFilters); err != nil {
		return models.Preferences{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return prefs, nil
}

func (r *remoteBackend) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		// saving preferences unauthenticated is a silent degrade, not
		// a failure of the caller's critical path
		return nil
	}

	raw, err := json.Marshal(prefs.ColorFilters)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("user_preferences").
		Columns("user_id", "color_filters").
		Values(user.ID, raw).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET color_filters = EXCLUDED.color_filters").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.SavePreferences").
			Str("user_id", user.ID).
			Msg("failed to upsert preferences")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteBackend) RecordSwipeAction(ctx context.Context, action models.SwipeAction) error {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return nil
	}

	var raw []byte
	if action.Commander != nil {
		var err error
		if raw, err = json.Marshal(action.Commander); err != nil {
			return err
		}
	}

	query, args, err := psql.Insert("swipe_history").
		Columns("user_id", "commander_id", "action", "commander_data").
		Values(user.ID, action.CommanderID, string(action.Action), raw).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.RecordSwipeAction").
			Str("user_id", user.ID).
			Str("commander_id", action.CommanderID).
			Msg("failed to insert swipe record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *remoteBackend) GetSwipeHistory(ctx context.Context) ([]models.SwipeAction, error) {
	user, _ := r.CurrentUser(ctx)
	if user == nil {
		return []models.SwipeAction{}, nil
	}

	query, args, err := psql.Select("commander_id", "action", "commander_data", "created_at").
		From("swipe_history").
		Where(sq.Eq{"user_id": user.ID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).
			Str("func", "remoteBackend.GetSwipeHistory").
			Str("user_id", user.ID).
			Msg("failed to execute query for swipe history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	history := make([]models.SwipeAction, 0, 50)
	for rows.Next() {
		var (
			action    models.SwipeAction
			verb      string
			raw       []byte
			createdAt time.Time
		)
		if scanErr := rows.Scan(&action.CommanderID, &verb, &raw, &createdAt); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		action.Action = models.SwipeVerb(verb)
		action.Timestamp = createdAt.UnixMilli()
		if len(raw) > 0 {
			var card models.Card
			if err := json.Unmarshal(raw, &card); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
			}
			action.Commander = &card
		}

		history = append(history, action)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}
	return history, nil
}

// Close releases the database connection.
func (r *remoteBackend) Close() error {
	return r.db.Close()
}

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	// if postgres returns error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

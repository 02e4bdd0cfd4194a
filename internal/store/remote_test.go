package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/models"
)

type staticResolver struct {
	user *models.User
	err  error
}

func (s staticResolver) CurrentUser(context.Context) (*models.User, error) {
	return s.user, s.err
}

func newRemoteForTest(t *testing.T, user *models.User) (*remoteBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &remoteBackend{
		db:       db,
		resolver: staticResolver{user: user},
		logger:   logger.Nop(),
	}, mock
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

const (
	selectLikedSQL   = `SELECT commander_data FROM liked_commanders WHERE user_id = $1 ORDER BY created_at DESC`
	insertLikedSQL   = `INSERT INTO liked_commanders (user_id,commander_id,commander_data) VALUES ($1,$2,$3)`
	deleteLikedSQL   = `DELETE FROM liked_commanders WHERE commander_id = $1 AND user_id = $2`
	selectDecksSQL   = `SELECT id, name, commander_data, cards, created_at, updated_at FROM decks WHERE user_id = $1 ORDER BY updated_at DESC`
	insertDeckSQL    = `INSERT INTO decks (id,user_id,name,commander_id,commander_data,cards,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	deleteDeckSQL    = `DELETE FROM decks WHERE id = $1 AND user_id = $2`
	selectPrefsSQL   = `SELECT color_filters FROM user_preferences WHERE user_id = $1`
	upsertPrefsSQL   = `INSERT INTO user_preferences (user_id,color_filters) VALUES ($1,$2) ON CONFLICT (user_id) DO UPDATE SET color_filters = EXCLUDED.color_filters`
	insertSwipeSQL   = `INSERT INTO swipe_history (user_id,commander_id,action,commander_data) VALUES ($1,$2,$3,$4)`
	selectHistorySQL = `SELECT commander_id, action, commander_data, created_at FROM swipe_history WHERE user_id = $1 ORDER BY created_at DESC`
)

var testUser = &models.User{ID: "user-1", Email: "alice@example.com"}

// ── current user ─────────────────────────────────────────────────────────────

func TestRemote_CurrentUserIsCached(t *testing.T) {
	b, _ := newRemoteForTest(t, testUser)
	ctx := context.Background()

	u1, err := b.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u1)

	// swap the resolver out; the cached identity must keep winning
	b.resolver = staticResolver{user: nil}
	u2, err := b.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u1, u2)
}

func TestRemote_CurrentUserResolutionFailureMeansNoUser(t *testing.T) {
	b, _ := newRemoteForTest(t, nil)
	b.resolver = staticResolver{err: errors.New("provider down")}

	user, err := b.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
}

// ── liked commanders ─────────────────────────────────────────────────────────

func TestRemote_GetLikedUnauthenticatedReturnsEmpty(t *testing.T) {
	b, mock := newRemoteForTest(t, nil)

	liked, err := b.GetLikedCommanders(context.Background())

	require.NoError(t, err)
	assert.Empty(t, liked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_GetLiked(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	rows := sqlmock.NewRows([]string{"commander_data"}).
		AddRow(mustJSON(t, card("c2", "Meren"))).
		AddRow(mustJSON(t, card("c1", "Atraxa")))
	mock.ExpectQuery(regexp.QuoteMeta(selectLikedSQL)).
		WithArgs("user-1").
		WillReturnRows(rows)

	liked, err := b.GetLikedCommanders(context.Background())

	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, "c2", liked[0].ID)
	assert.Equal(t, "Atraxa", liked[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_LikeUnauthenticated(t *testing.T) {
	b, _ := newRemoteForTest(t, nil)

	err := b.LikeCommander(context.Background(), card("c1", "Atraxa"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRemote_Like(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(insertLikedSQL)).
		WithArgs("user-1", "c1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.LikeCommander(context.Background(), card("c1", "Atraxa")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_LikeDuplicateIsSuccess(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(insertLikedSQL)).
		WithArgs("user-1", "c1", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	require.NoError(t, b.LikeCommander(context.Background(), card("c1", "Atraxa")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_LikeOtherErrorPropagates(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(insertLikedSQL)).
		WithArgs("user-1", "c1", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure})

	err := b.LikeCommander(context.Background(), card("c1", "Atraxa"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestRemote_Unlike(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(deleteLikedSQL)).
		WithArgs("c1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.UnlikeCommander(context.Background(), "c1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// ── decks ────────────────────────────────────────────────────────────────────

func TestRemote_GetDecks(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "commander_data", "cards", "created_at", "updated_at"}).
		AddRow("deck-1", "Atraxa Deck", mustJSON(t, card("c1", "Atraxa")), mustJSON(t, []models.Card{card("x1", "Sol Ring")}), created, updated)
	mock.ExpectQuery(regexp.QuoteMeta(selectDecksSQL)).
		WithArgs("user-1").
		WillReturnRows(rows)

	decks, err := b.GetDecks(context.Background())

	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "deck-1", decks[0].ID)
	assert.Equal(t, "Atraxa Deck", decks[0].Name)
	assert.Equal(t, "c1", decks[0].Commander.ID)
	require.Len(t, decks[0].Cards, 1)
	assert.Equal(t, created.UnixMilli(), decks[0].CreatedAt)
	assert.Equal(t, updated.UnixMilli(), decks[0].UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_GetDecksUnauthenticatedReturnsEmpty(t *testing.T) {
	b, mock := newRemoteForTest(t, nil)

	decks, err := b.GetDecks(context.Background())

	require.NoError(t, err)
	assert.Empty(t, decks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_CreateDeck(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(insertDeckSQL)).
		WithArgs(sqlmock.AnyArg(), "user-1", "Atraxa Deck", "c1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := b.CreateDeck(context.Background(), card("c1", "Atraxa"), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_CreateDeckUnauthenticated(t *testing.T) {
	b, _ := newRemoteForTest(t, nil)

	_, err := b.CreateDeck(context.Background(), card("c1", "Atraxa"), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRemote_UpdateDeckNameOnly(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	// only updated_at and name in the SET list; cards and commander
	// stay untouched
	updateSQL := `UPDATE decks SET updated_at = $1, name = $2 WHERE id = $3 AND user_id = $4`
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), "Superfriends", "deck-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "Superfriends"
	require.NoError(t, b.UpdateDeck(context.Background(), "deck-1", models.DeckUpdate{Name: &name}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_UpdateDeckCards(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	updateSQL := `UPDATE decks SET updated_at = $1, cards = $2 WHERE id = $3 AND user_id = $4`
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "deck-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cards := []models.Card{card("x1", "Sol Ring")}
	require.NoError(t, b.UpdateDeck(context.Background(), "deck-1", models.DeckUpdate{Cards: &cards}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_UpdateDeckNotOwnedIsSilentNoop(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	updateSQL := `UPDATE decks SET updated_at = $1, name = $2 WHERE id = $3 AND user_id = $4`
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), "stolen", "deck-9", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "stolen"
	require.NoError(t, b.UpdateDeck(context.Background(), "deck-9", models.DeckUpdate{Name: &name}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_DeleteDeck(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(deleteDeckSQL)).
		WithArgs("deck-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, b.DeleteDeck(context.Background(), "deck-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// ── preferences ──────────────────────────────────────────────────────────────

func TestRemote_GetPreferencesNoRowReturnsDefault(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectQuery(regexp.QuoteMeta(selectPrefsSQL)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"color_filters"}))

	prefs, err := b.GetPreferences(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"W", "U", "B", "R", "G", "C"}, prefs.ColorFilters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_PreferencesRoundTripValues(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)
	ctx := context.Background()

	want := models.Preferences{ColorFilters: []string{"R", "G"}}
	mock.ExpectExec(regexp.QuoteMeta(upsertPrefsSQL)).
		WithArgs("user-1", mustJSON(t, want.ColorFilters)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, b.SavePreferences(ctx, want))

	mock.ExpectQuery(regexp.QuoteMeta(selectPrefsSQL)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"color_filters"}).AddRow(mustJSON(t, want.ColorFilters)))

	got, err := b.GetPreferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_SavePreferencesUnauthenticatedIsSilent(t *testing.T) {
	b, mock := newRemoteForTest(t, nil)

	require.NoError(t, b.SavePreferences(context.Background(), models.DefaultPreferences()))
	require.NoError(t, mock.ExpectationsWereMet())
}

// ── swipe history ────────────────────────────────────────────────────────────

func TestRemote_RecordSwipeAction(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	mock.ExpectExec(regexp.QuoteMeta(insertSwipeSQL)).
		WithArgs("user-1", "c1", "like", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	commander := card("c1", "Atraxa")
	err := b.RecordSwipeAction(context.Background(), models.SwipeAction{
		CommanderID: "c1",
		Action:      models.SwipeLike,
		Timestamp:   time.Now().UnixMilli(),
		Commander:   &commander,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_RecordSwipeActionUnauthenticatedIsSilent(t *testing.T) {
	b, mock := newRemoteForTest(t, nil)

	err := b.RecordSwipeAction(context.Background(), models.SwipeAction{CommanderID: "c1", Action: models.SwipePass})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote_GetSwipeHistory(t *testing.T) {
	b, mock := newRemoteForTest(t, testUser)

	at := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"commander_id", "action", "commander_data", "created_at"}).
		AddRow("c2", "pass", nil, at).
		AddRow("c1", "like", mustJSON(t, card("c1", "Atraxa")), at.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(selectHistorySQL)).
		WithArgs("user-1").
		WillReturnRows(rows)

	history, err := b.GetSwipeHistory(context.Background())

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.SwipePass, history[0].Action)
	assert.Nil(t, history[0].Commander)
	require.NotNil(t, history[1].Commander)
	assert.Equal(t, "Atraxa", history[1].Commander.Name)
	assert.Equal(t, at.UnixMilli(), history[0].Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

var memberCols = []string{
	"id", "hid", "system", "name", "display_name", "description", "pronouns", "color", "avatar_url", "birthday",
	"proxy_tags", "keep_proxy", "member_visibility", "description_privacy", "pronoun_privacy", "birthday_privacy", "created",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupMemberRepo(t *testing.T) (*memberRepository, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return NewMemberRepository(db), mock
}

func memberRows(id int, hid string, systemID int, name string, created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(memberCols).AddRow(
		id, hid, systemID, name, nil, nil, nil, nil, nil, nil,
		[]byte("[]"), false, "public", "public", "public", "public", created,
	)
}

func TestMemberRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts member with defaults", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		now := time.Now()

		mock.ExpectQuery("INSERT INTO members").
			WithArgs(sqlmock.AnyArg(), 3, "Alice", sqlmock.AnyArg()).
			WillReturnRows(memberRows(1, "abcde", 3, "Alice", now))

		member, err := repo.Create(ctx, 3, "Alice")

		require.NoError(t, err)
		assert.Equal(t, 1, member.ID)
		assert.Equal(t, "abcde", member.HID)
		assert.Equal(t, 3, member.SystemID)
		assert.Equal(t, "Alice", member.Name)
		assert.Nil(t, member.Description)
		assert.Empty(t, member.ProxyTags)
		assert.Equal(t, domain.PrivacyPublic, member.Visibility)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries when the generated hid is taken", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		now := time.Now()

		// ON CONFLICT DO NOTHING returns no row on a hid collision
		mock.ExpectQuery("INSERT INTO members").
			WithArgs(sqlmock.AnyArg(), 3, "Alice", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(memberCols))
		mock.ExpectQuery("INSERT INTO members").
			WithArgs(sqlmock.AnyArg(), 3, "Alice", sqlmock.AnyArg()).
			WillReturnRows(memberRows(2, "fghij", 3, "Alice", now))

		member, err := repo.Create(ctx, 3, "Alice")

		require.NoError(t, err)
		assert.Equal(t, "fghij", member.HID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown system maps to not found", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)

		mock.ExpectQuery("INSERT INTO members").
			WithArgs(sqlmock.AnyArg(), 99, "Alice", sqlmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, err := repo.Create(ctx, 99, "Alice")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		for i := 0; i < maxHIDAttempts; i++ {
			mock.ExpectQuery("INSERT INTO members").WillReturnRows(sqlmock.NewRows(memberCols))
		}

		_, err := repo.Create(ctx, 3, "Alice")

		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemberRepository_GetByHID(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes every column", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		now := time.Now()
		birthday := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(memberCols).AddRow(
			4, "abcde", 3, "Alice", "Al", "desc", "she/her", "ff00ff", "https://example.com/a.png", birthday,
			[]byte(`[{"prefix":"a:","suffix":null}]`), true, "private", "private", "public", "private", now,
		)
		mock.ExpectQuery("SELECT (.+) FROM members WHERE hid = \\$1").
			WithArgs("abcde").
			WillReturnRows(rows)

		member, err := repo.GetByHID(ctx, "abcde")

		require.NoError(t, err)
		assert.Equal(t, "Al", *member.DisplayName)
		assert.Equal(t, "ff00ff", *member.Color)
		assert.Equal(t, birthday, *member.Birthday)
		require.Len(t, member.ProxyTags, 1)
		assert.Equal(t, "a:", *member.ProxyTags[0].Prefix)
		assert.Nil(t, member.ProxyTags[0].Suffix)
		assert.True(t, member.KeepProxy)
		assert.Equal(t, domain.PrivacyPrivate, member.Visibility)
		assert.Equal(t, domain.PrivacyPublic, member.PronounPrivacy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing member", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM members WHERE hid = \\$1").
			WithArgs("zzzzz").
			WillReturnRows(sqlmock.NewRows(memberCols))

		member, err := repo.GetByHID(ctx, "zzzzz")

		assert.Nil(t, member)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestMemberRepository_CountForSystem(t *testing.T) {
	repo, mock := setupMemberRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM members WHERE system = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountForSystem(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_ApplyPatch(t *testing.T) {
	ctx := context.Background()

	t.Run("writes only present fields in one statement", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		now := time.Now()
		private := domain.PrivacyPrivate

		p := domain.MemberPatch{
			Name:        domain.SetTo("Bob"),
			Description: domain.Cleared[string](),
			Visibility:  domain.Optional[domain.Privacy]{Set: true, Value: &private},
		}

		mock.ExpectQuery(regexp.QuoteMeta("SET name = $2, description = $3, member_visibility = $4")).
			WithArgs(7, "Bob", nil, "private").
			WillReturnRows(memberRows(7, "abcde", 3, "Bob", now))

		member, err := repo.ApplyPatch(ctx, 7, p)

		require.NoError(t, err)
		assert.Equal(t, "Bob", member.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("encodes proxy tags and resets cleared privacy", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		prefix := "a:"

		p := domain.MemberPatch{
			ProxyTags:       domain.SetTo([]domain.ProxyTag{{Prefix: &prefix}}),
			KeepProxy:       domain.SetTo(true),
			BirthdayPrivacy: domain.Cleared[domain.Privacy](),
		}

		mock.ExpectQuery(regexp.QuoteMeta("SET proxy_tags = $2, keep_proxy = $3, birthday_privacy = $4")).
			WithArgs(7, `[{"prefix":"a:","suffix":null}]`, true, "public").
			WillReturnRows(memberRows(7, "abcde", 3, "Alice", time.Now()))

		_, err := repo.ApplyPatch(ctx, 7, p)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch reads the member back without writing", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM members WHERE id = \\$1").
			WithArgs(7).
			WillReturnRows(memberRows(7, "abcde", 3, "Alice", time.Now()))

		member, err := repo.ApplyPatch(ctx, 7, domain.MemberPatch{})

		require.NoError(t, err)
		assert.Equal(t, "Alice", member.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure surfaces unchanged", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)
		dbErr := errors.New("connection reset")

		mock.ExpectQuery("UPDATE members").WillReturnError(dbErr)

		_, err := repo.ApplyPatch(ctx, 7, domain.MemberPatch{Name: domain.SetTo("Bob")})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestMemberRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)

		mock.ExpectExec("DELETE FROM members WHERE id = \\$1").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already gone", func(t *testing.T) {
		repo, mock := setupMemberRepo(t)

		mock.ExpectExec("DELETE FROM members WHERE id = \\$1").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 7), repository.ErrNotFound)
	})
}

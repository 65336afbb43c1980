package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

const systemColumns = `s.id, s.hid, s.name, s.description, s.tag, s.avatar_url, s.description_privacy, s.created`

type systemRepository struct {
	executor DBExecutor
}

func NewSystemRepository(db *sql.DB) *systemRepository {
	return &systemRepository{executor: db}
}

func (r *systemRepository) GetByAccount(ctx context.Context, accountID uint64) (*domain.System, error) {
	// Upstream account ids are snowflakes and always fit in BIGINT.
	if accountID > math.MaxInt64 {
		return nil, repository.ErrNotFound
	}

	query := `
		SELECT ` + systemColumns + `
		FROM accounts a
		JOIN systems s ON s.id = a.system
		WHERE a.uid = $1
	`

	return scanSystem(r.executor.QueryRowContext(ctx, query, int64(accountID)))
}

func (r *systemRepository) GetByID(ctx context.Context, id int) (*domain.System, error) {
	query := `
		SELECT ` + systemColumns + `
		FROM systems s
		WHERE s.id = $1
	`

	return scanSystem(r.executor.QueryRowContext(ctx, query, id))
}

func scanSystem(row rowScanner) (*domain.System, error) {
	system := &domain.System{}
	var name, description, tag, avatarURL sql.NullString
	var privacy string
	err := row.Scan(
		&system.ID,
		&system.HID,
		&name,
		&description,
		&tag,
		&avatarURL,
		&privacy,
		&system.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	system.Name = nullStringPtr(name)
	system.Description = nullStringPtr(description)
	system.Tag = nullStringPtr(tag)
	system.AvatarURL = nullStringPtr(avatarURL)
	system.DescriptionPrivacy = domain.Privacy(privacy).OrDefault()
	return system, nil
}

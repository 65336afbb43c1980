package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository"
)

const memberColumns = `id, hid, system, name, display_name, description, pronouns, color, avatar_url, birthday,
	proxy_tags, keep_proxy, member_visibility, description_privacy, pronoun_privacy, birthday_privacy, created`

// maxHIDAttempts bounds retries when a freshly generated hid is already taken.
const maxHIDAttempts = 10

type memberRepository struct {
	executor DBExecutor
}

func NewMemberRepository(db *sql.DB) *memberRepository {
	return &memberRepository{executor: db}
}

func NewMemberRepositoryWithTx(tx *sql.Tx) *memberRepository {
	return &memberRepository{executor: tx}
}

func (r *memberRepository) Create(ctx context.Context, systemID int, name string) (*domain.Member, error) {
	query := `
		INSERT INTO members (hid, system, name, created)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hid) DO NOTHING
		RETURNING ` + memberColumns

	now := time.Now().UTC()
	for attempt := 0; attempt < maxHIDAttempts; attempt++ {
		hid, err := domain.NewHID()
		if err != nil {
			return nil, err
		}

		member, err := scanMember(r.executor.QueryRowContext(ctx, query, hid, systemID, name, now))
		if errors.Is(err, repository.ErrNotFound) {
			// hid collision, nothing was inserted
			continue
		}
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}
		return member, nil
	}

	return nil, fmt.Errorf("no free member hid after %d attempts", maxHIDAttempts)
}

func (r *memberRepository) GetByHID(ctx context.Context, hid string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE hid = $1`

	return scanMember(r.executor.QueryRowContext(ctx, query, hid))
}

func (r *memberRepository) CountForSystem(ctx context.Context, systemID int) (int, error) {
	query := `SELECT COUNT(*) FROM members WHERE system = $1`

	var count int
	if err := r.executor.QueryRowContext(ctx, query, systemID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyPatch issues a single UPDATE so every set field is written atomically.
func (r *memberRepository) ApplyPatch(ctx context.Context, memberID int, p domain.MemberPatch) (*domain.Member, error) {
	assignments, err := patchAssignments(p)
	if err != nil {
		return nil, err
	}

	if len(assignments) == 0 {
		query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
		return scanMember(r.executor.QueryRowContext(ctx, query, memberID))
	}

	sets := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments)+1)
	args = append(args, memberID)
	for i, a := range assignments {
		sets = append(sets, fmt.Sprintf("%s = $%d", a.column, i+2))
		args = append(args, a.value)
	}

	query := `
		UPDATE members
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1
		RETURNING ` + memberColumns

	return scanMember(r.executor.QueryRowContext(ctx, query, args...))
}

func (r *memberRepository) Delete(ctx context.Context, memberID int) error {
	query := `DELETE FROM members WHERE id = $1`

	result, err := r.executor.ExecContext(ctx, query, memberID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type assignment struct {
	column string
	value  any
}

// patchAssignments lists column writes in a fixed order so generated SQL is stable.
func patchAssignments(p domain.MemberPatch) ([]assignment, error) {
	var out []assignment

	if p.Name.Set && p.Name.Value != nil {
		out = append(out, assignment{"name", *p.Name.Value})
	}
	out = appendNullable(out, "display_name", p.DisplayName)
	out = appendNullable(out, "description", p.Description)
	out = appendNullable(out, "pronouns", p.Pronouns)
	out = appendNullable(out, "color", p.Color)
	out = appendNullable(out, "avatar_url", p.AvatarURL)
	out = appendNullable(out, "birthday", p.Birthday)

	if p.ProxyTags.Set {
		tags := []domain.ProxyTag{}
		if p.ProxyTags.Value != nil {
			tags = *p.ProxyTags.Value
		}
		encoded, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("encode proxy tags: %w", err)
		}
		out = append(out, assignment{"proxy_tags", string(encoded)})
	}

	if p.KeepProxy.Set && p.KeepProxy.Value != nil {
		out = append(out, assignment{"keep_proxy", *p.KeepProxy.Value})
	}

	out = appendPrivacy(out, "member_visibility", p.Visibility)
	out = appendPrivacy(out, "description_privacy", p.DescriptionPrivacy)
	out = appendPrivacy(out, "pronoun_privacy", p.PronounPrivacy)
	out = appendPrivacy(out, "birthday_privacy", p.BirthdayPrivacy)

	return out, nil
}

func appendNullable[T any](out []assignment, column string, o domain.Optional[T]) []assignment {
	if !o.Set {
		return out
	}
	if o.Value == nil {
		return append(out, assignment{column, nil})
	}
	return append(out, assignment{column, *o.Value})
}

func appendPrivacy(out []assignment, column string, o domain.Optional[domain.Privacy]) []assignment {
	if !o.Set {
		return out
	}
	privacy := domain.PrivacyPublic
	if o.Value != nil {
		privacy = *o.Value
	}
	return append(out, assignment{column, string(privacy)})
}

func scanMember(row rowScanner) (*domain.Member, error) {
	member := &domain.Member{}
	var displayName, description, pronouns, color, avatarURL sql.NullString
	var birthday sql.NullTime
	var proxyTags []byte
	var visibility, descriptionPrivacy, pronounPrivacy, birthdayPrivacy string

	err := row.Scan(
		&member.ID,
		&member.HID,
		&member.SystemID,
		&member.Name,
		&displayName,
		&description,
		&pronouns,
		&color,
		&avatarURL,
		&birthday,
		&proxyTags,
		&member.KeepProxy,
		&visibility,
		&descriptionPrivacy,
		&pronounPrivacy,
		&birthdayPrivacy,
		&member.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	member.DisplayName = nullStringPtr(displayName)
	member.Description = nullStringPtr(description)
	member.Pronouns = nullStringPtr(pronouns)
	member.Color = nullStringPtr(color)
	member.AvatarURL = nullStringPtr(avatarURL)
	if birthday.Valid {
		b := birthday.Time
		member.Birthday = &b
	}

	member.ProxyTags = []domain.ProxyTag{}
	if len(proxyTags) > 0 {
		if err := json.Unmarshal(proxyTags, &member.ProxyTags); err != nil {
			return nil, fmt.Errorf("decode proxy tags of member %d: %w", member.ID, err)
		}
	}

	member.Visibility = domain.Privacy(visibility).OrDefault()
	member.DescriptionPrivacy = domain.Privacy(descriptionPrivacy).OrDefault()
	member.PronounPrivacy = domain.Privacy(pronounPrivacy).OrDefault()
	member.BirthdayPrivacy = domain.Privacy(birthdayPrivacy).OrDefault()
	return member, nil
}

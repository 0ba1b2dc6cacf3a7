package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
)

type PostgresConfig struct {
	DSN             string        `envconfig:"DSN" split_words:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"4"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" split_words:"true" default:"5m"`
}

type messageRow struct {
	bun.BaseModel `bun:"table:conversation_messages"`

	ID        int64             `bun:"id,pk,autoincrement"`
	UserID    string            `bun:"user_id,notnull"`
	Role      string            `bun:"role,notnull"`
	Content   string            `bun:"content,notnull"`
	Metadata  map[string]string `bun:"metadata,type:jsonb"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type profileRow struct {
	bun.BaseModel `bun:"table:user_profiles"`

	UserID      string         `bun:"user_id,pk"`
	Preferences map[string]any `bun:"preferences,type:jsonb"`
	Portfolio   map[string]any `bun:"portfolio,type:jsonb"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// PostgresStore persists conversation memory through bun. ClearHistory only
// deletes messages; the profile row survives.
type PostgresStore struct {
	db     *bun.DB
	userID string
}

var _ contractx.MemoryStore = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, cfg PostgresConfig, userID string) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: memory dsn is required", contractx.ErrValidation)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("memory: ping postgres: %w", err)
	}

	s := &PostgresStore{db: db, userID: userID}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	for _, model := range []any{(*messageRow)(nil), (*profileRow)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("memory: create table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) AddMessage(ctx context.Context, turn contractx.ConversationTurn) error {
	if turn.Role != contractx.RoleUser && turn.Role != contractx.RoleAssistant {
		return fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, turn.Role)
	}
	row := &messageRow{
		UserID:   s.userID,
		Role:     turn.Role,
		Content:  turn.Content,
		Metadata: turn.Metadata,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("memory: insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, limit int) ([]contractx.ConversationTurn, error) {
	q := s.db.NewSelect().
		Model((*messageRow)(nil)).
		Where("user_id = ?", s.userID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []messageRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("memory: select messages: %w", err)
	}

	// Rows come newest-first; callers expect oldest-first.
	out := make([]contractx.ConversationTurn, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = contractx.ConversationTurn{
			Role:     r.Role,
			Content:  r.Content,
			Metadata: r.Metadata,
		}
	}
	return out, nil
}

func (s *PostgresStore) profile(ctx context.Context) (profileRow, error) {
	var row profileRow
	err := s.db.NewSelect().
		Model(&row).
		Where("user_id = ?", s.userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return profileRow{UserID: s.userID}, nil
	}
	if err != nil {
		return profileRow{}, fmt.Errorf("memory: select profile: %w", err)
	}
	return row, nil
}

func (s *PostgresStore) upsertProfile(ctx context.Context, row profileRow) error {
	row.UpdatedAt = time.Now()
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("preferences = EXCLUDED.preferences").
		Set("portfolio = EXCLUDED.portfolio").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("memory: upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Preferences(ctx context.Context) (map[string]any, error) {
	row, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	if row.Preferences == nil {
		return map[string]any{}, nil
	}
	return row.Preferences, nil
}

func (s *PostgresStore) SavePreferences(ctx context.Context, prefs map[string]any) error {
	row, err := s.profile(ctx)
	if err != nil {
		return err
	}
	if row.Preferences == nil {
		row.Preferences = map[string]any{}
	}
	for k, v := range prefs {
		row.Preferences[k] = v
	}
	return s.upsertProfile(ctx, row)
}

func (s *PostgresStore) SavePortfolio(ctx context.Context, portfolio map[string]any) error {
	row, err := s.profile(ctx)
	if err != nil {
		return err
	}
	row.Portfolio = portfolio
	return s.upsertProfile(ctx, row)
}

func (s *PostgresStore) Portfolio(ctx context.Context) (map[string]any, error) {
	row, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	return row.Portfolio, nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*messageRow)(nil)).
		Where("user_id = ?", s.userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("memory: clear history: %w", err)
	}
	return nil
}

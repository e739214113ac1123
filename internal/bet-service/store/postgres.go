package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
)

var decimalHundred = decimal.NewFromInt(100)

// Postgres implements Store on top of database/sql + lib/pq.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const schema = `
CREATE TABLE IF NOT EXISTS bets (
	id             UUID PRIMARY KEY,
	user_address   TEXT NOT NULL,
	token          TEXT NOT NULL,
	amount         NUMERIC(38,18) NOT NULL,
	direction      TEXT NOT NULL,
	duration       INT NOT NULL,
	start_price    NUMERIC(38,18) NOT NULL,
	end_price      NUMERIC(38,18),
	start_time     TIMESTAMPTZ NOT NULL,
	settled_at     TIMESTAMPTZ,
	status         TEXT NOT NULL DEFAULT 'active',
	is_winner      BOOLEAN NOT NULL DEFAULT FALSE,
	payout         NUMERIC(38,18) NOT NULL DEFAULT 0,
	tx_hash        TEXT NOT NULL UNIQUE,
	settle_tx_hash TEXT,
	commit_hash    TEXT NOT NULL,
	revealed       BOOLEAN NOT NULL DEFAULT FALSE,
	reveal_tx_hash TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bets_user_start   ON bets (user_address, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_bets_status_start ON bets (status, start_time);
CREATE INDEX IF NOT EXISTS idx_bets_token_status ON bets (token, status);

CREATE TABLE IF NOT EXISTS user_accounts (
	address        TEXT PRIMARY KEY,
	total_bets     INT NOT NULL DEFAULT 0,
	total_wins     INT NOT NULL DEFAULT 0,
	total_settled  INT NOT NULL DEFAULT 0,
	total_wagered  NUMERIC(38,18) NOT NULL DEFAULT 0,
	total_won      NUMERIC(38,18) NOT NULL DEFAULT 0,
	last_bet_time  TIMESTAMPTZ,
	first_bet_time TIMESTAMPTZ,
	bets_today     INT NOT NULL DEFAULT 0,
	last_bet_day   DATE,
	notifications  BOOLEAN NOT NULL DEFAULT TRUE,
	newsletter     BOOLEAN NOT NULL DEFAULT FALSE,
	referrer       TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_wagered  ON user_accounts (total_wagered DESC);
CREATE INDEX IF NOT EXISTS idx_users_last_bet ON user_accounts (last_bet_time DESC);
`

// EnsureSchema creates tables and indexes when they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// Ping is the health probe used by /healthz.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

const betColumns = `
	id, user_address, token, trim_scale(amount)::text, direction, duration,
	trim_scale(start_price)::text, trim_scale(end_price)::text,
	start_time, settled_at, status, is_winner, trim_scale(payout)::text,
	tx_hash, settle_tx_hash, commit_hash, revealed, reveal_tx_hash,
	created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(r rowScanner) (*model.Bet, error) {
	var (
		b            model.Bet
		endPrice     sql.NullString
		settledAt    sql.NullTime
		settleTxHash sql.NullString
		revealTxHash sql.NullString
	)
	err := r.Scan(
		&b.ID, &b.UserAddress, &b.Token, &b.Amount, &b.Direction, &b.Duration,
		&b.StartPrice, &endPrice,
		&b.StartTime, &settledAt, &b.Status, &b.IsWinner, &b.Payout,
		&b.TxHash, &settleTxHash, &b.CommitHash, &b.Revealed, &revealTxHash,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endPrice.Valid {
		b.EndPrice = &endPrice.String
	}
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	if settleTxHash.Valid {
		b.SettleTxHash = &settleTxHash.String
	}
	if revealTxHash.Valid {
		b.RevealTxHash = &revealTxHash.String
	}
	return &b, nil
}

func (p *Postgres) CreateBet(ctx context.Context, b *model.Bet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_address, token, amount, direction, duration,
			start_price, start_time, status, payout, tx_hash, commit_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.UserAddress, b.Token, b.Amount, b.Direction, b.Duration,
		b.StartPrice, b.StartTime, b.Status, b.Payout, b.TxHash, b.CommitHash,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrDuplicateSubmission
		}
		return model.StoreError(err)
	}
	return nil
}

func (p *Postgres) GetBet(ctx context.Context, id string) (*model.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, model.StoreError(err)
	}
	return b, nil
}

func (p *Postgres) GetBetByTxHash(ctx context.Context, txHash string) (*model.Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE tx_hash=$1`, txHash))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, model.StoreError(err)
	}
	return b, nil
}

func (p *Postgres) ListUserBets(ctx context.Context, address string, f BetFilter) ([]model.Bet, int, error) {
	where := `user_address=$1 AND ($2='' OR status=$2)`

	var total int
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bets WHERE `+where, address, f.Status).Scan(&total); err != nil {
		return nil, 0, model.StoreError(err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE `+where+`
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4`,
		address, f.Status, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, 0, model.StoreError(err)
	}
	defer rows.Close()

	bets, err := collectBets(rows)
	if err != nil {
		return nil, 0, err
	}
	return bets, total, nil
}

func (p *Postgres) ListActiveBets(ctx context.Context, f ActiveFilter) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE status='active' AND ($1='' OR token=$1)
		ORDER BY start_time ASC
		LIMIT $2`,
		f.Token, f.Limit)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func (p *Postgres) ListActiveExpired(ctx context.Context, now time.Time, limit int) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE status='active' AND start_time + make_interval(secs => duration) < $1
		ORDER BY start_time ASC
		LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func collectBets(rows *sql.Rows) ([]model.Bet, error) {
	var out []model.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, model.StoreError(err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StoreError(err)
	}
	return out, nil
}

// SettleBet is the single conditional write that serializes concurrent
// settlement attempts: only the one observing status='active' wins.
func (p *Postgres) SettleBet(ctx context.Context, id string, s Settlement) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET
			end_price=$2, is_winner=$3, payout=$4, settle_tx_hash=$5,
			revealed = revealed OR $6, reveal_tx_hash = COALESCE($7, reveal_tx_hash),
			status='settled', settled_at=$8, updated_at=NOW()
		WHERE id=$1 AND status='active'`,
		id, s.EndPrice, s.IsWinner, s.Payout, s.SettleTxHash,
		s.RevealTxHash != nil, s.RevealTxHash, s.SettledAt)
	if err != nil {
		return model.StoreError(err)
	}
	return p.transitionOutcome(ctx, res, id)
}

func (p *Postgres) CancelBet(ctx context.Context, id string, now time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status='cancelled', settled_at=$2, updated_at=NOW()
		WHERE id=$1 AND status='active'`, id, now)
	if err != nil {
		return model.StoreError(err)
	}
	return p.transitionOutcome(ctx, res, id)
}

// transitionOutcome distinguishes a lost conditional update: the bet either
// never existed or already left the active state.
func (p *Postgres) transitionOutcome(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return model.StoreError(err)
	}
	if n == 1 {
		return nil
	}
	var status string
	err = p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return model.StoreError(err)
	}
	return model.ErrInvalidState
}

func (p *Postgres) GetUser(ctx context.Context, address string) (*model.UserAccount, error) {
	var (
		u            model.UserAccount
		lastBetTime  sql.NullTime
		firstBetTime sql.NullTime
		lastBetDay   sql.NullTime
		referrer     sql.NullString
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT address, total_bets, total_wins, total_settled,
			trim_scale(total_wagered)::text, trim_scale(total_won)::text,
			last_bet_time, first_bet_time, bets_today, last_bet_day,
			notifications, newsletter, referrer, created_at, updated_at
		FROM user_accounts WHERE address=$1`, address).Scan(
		&u.Address, &u.TotalBets, &u.TotalWins, &u.TotalSettled,
		&u.TotalWagered, &u.TotalWon,
		&lastBetTime, &firstBetTime, &u.BetsToday, &lastBetDay,
		&u.Preferences.Notifications, &u.Preferences.Newsletter, &referrer,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, model.StoreError(err)
	}
	if lastBetTime.Valid {
		t := lastBetTime.Time
		u.LastBetTime = &t
	}
	if firstBetTime.Valid {
		t := firstBetTime.Time
		u.FirstBetTime = &t
	}
	if lastBetDay.Valid {
		t := lastBetDay.Time
		u.LastBetDay = &t
	}
	if referrer.Valid {
		u.Referrer = &referrer.String
	}
	return &u, nil
}

func (p *Postgres) ApplyPlacement(ctx context.Context, address, amount string, now time.Time) error {
	day := model.Day(now.UTC())
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO user_accounts
			(address, total_bets, total_wagered, last_bet_time, first_bet_time, bets_today, last_bet_day)
		VALUES ($1, 1, $2, $3, $3, 1, $4)
		ON CONFLICT (address) DO UPDATE SET
			total_bets     = user_accounts.total_bets + 1,
			total_wagered  = user_accounts.total_wagered + EXCLUDED.total_wagered,
			last_bet_time  = EXCLUDED.last_bet_time,
			first_bet_time = COALESCE(user_accounts.first_bet_time, EXCLUDED.first_bet_time),
			bets_today     = CASE
				WHEN user_accounts.last_bet_day IS NULL OR user_accounts.last_bet_day < EXCLUDED.last_bet_day
				THEN 1
				ELSE user_accounts.bets_today + 1
			END,
			last_bet_day   = EXCLUDED.last_bet_day,
			updated_at     = NOW()`,
		address, amount, now, day)
	if err != nil {
		return model.StoreError(err)
	}
	return nil
}

func (p *Postgres) ApplySettlement(ctx context.Context, address string, isWinner bool, payout string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE user_accounts SET
			total_settled = total_settled + 1,
			total_wins    = total_wins + CASE WHEN $2 THEN 1 ELSE 0 END,
			total_won     = total_won + CASE WHEN $2 THEN $3::numeric ELSE 0 END,
			updated_at    = NOW()
		WHERE address=$1`,
		address, isWinner, payout)
	if err != nil {
		return model.StoreError(err)
	}
	return nil
}

func (p *Postgres) SetPreferences(ctx context.Context, address string, prefs model.Preferences, referrer *string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE user_accounts SET
			notifications=$2, newsletter=$3, referrer=COALESCE($4, referrer), updated_at=NOW()
		WHERE address=$1`,
		address, prefs.Notifications, prefs.Newsletter, referrer)
	if err != nil {
		return model.StoreError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.StoreError(err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (p *Postgres) ReplaceCounters(ctx context.Context, address string, c Counters) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE user_accounts SET
			total_bets=$2, total_wins=$3, total_settled=$4,
			total_wagered=$5::numeric, total_won=$6::numeric, updated_at=NOW()
		WHERE address=$1`,
		address, c.TotalBets, c.TotalWins, c.TotalSettled, c.TotalWagered, c.TotalWon)
	if err != nil {
		return model.StoreError(err)
	}
	return nil
}

// winRateExpr orders accounts the same way CountBetter compares them.
const winRateExpr = `(CASE WHEN total_bets=0 THEN 0 ELSE total_wins::numeric/total_bets END)`

func orderClause(s SortBy) string {
	switch s {
	case SortTotalWon:
		return `total_won DESC`
	case SortTotalBets:
		return `total_bets DESC`
	case SortProfit:
		return `(total_won - total_wagered) DESC`
	default:
		return winRateExpr + ` DESC, total_bets DESC`
	}
}

func (p *Postgres) RankedUsers(ctx context.Context, q RankQuery) ([]model.UserAccount, int, error) {
	where := `total_bets >= $1 AND ($2::timestamptz IS NULL OR last_bet_time >= $2)`

	var total int
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_accounts WHERE `+where,
		q.MinBets, q.Since).Scan(&total); err != nil {
		return nil, 0, model.StoreError(err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT address, total_bets, total_wins, total_settled,
			trim_scale(total_wagered)::text, trim_scale(total_won)::text,
			last_bet_time, created_at
		FROM user_accounts
		WHERE `+where+`
		ORDER BY `+orderClause(q.SortBy)+`
		LIMIT $3 OFFSET $4`,
		q.MinBets, q.Since, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, 0, model.StoreError(err)
	}
	defer rows.Close()

	var out []model.UserAccount
	for rows.Next() {
		var (
			u           model.UserAccount
			lastBetTime sql.NullTime
		)
		if err := rows.Scan(&u.Address, &u.TotalBets, &u.TotalWins, &u.TotalSettled,
			&u.TotalWagered, &u.TotalWon, &lastBetTime, &u.CreatedAt); err != nil {
			return nil, 0, model.StoreError(err)
		}
		if lastBetTime.Valid {
			t := lastBetTime.Time
			u.LastBetTime = &t
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, model.StoreError(err)
	}
	return out, total, nil
}

func (p *Postgres) CountBetter(ctx context.Context, u *model.UserAccount, sortBy SortBy, minBets int) (int, error) {
	var (
		cond string
		arg  any
	)
	switch sortBy {
	case SortTotalWon:
		cond = `total_won > $2::numeric`
		arg = u.TotalWon
	case SortTotalBets:
		cond = `total_bets > $2`
		arg = u.TotalBets
	case SortProfit:
		cond = `(total_won - total_wagered) > $2::numeric`
		arg = u.Profit().String()
	default:
		cond = winRateExpr + ` > $2::numeric`
		arg = u.WinRate().Div(decimalHundred).String()
	}

	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_accounts WHERE total_bets >= $1 AND `+cond,
		minBets, arg).Scan(&n)
	if err != nil {
		return 0, model.StoreError(err)
	}
	return n, nil
}

func (p *Postgres) CountBets(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets`).Scan(&n); err != nil {
		return 0, model.StoreError(err)
	}
	return n, nil
}

func (p *Postgres) CountBetsByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bets WHERE status=$1`, status).Scan(&n); err != nil {
		return 0, model.StoreError(err)
	}
	return n, nil
}

func (p *Postgres) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_accounts`).Scan(&n); err != nil {
		return 0, model.StoreError(err)
	}
	return n, nil
}

func (p *Postgres) GlobalVolume(ctx context.Context) (VolumeTotals, error) {
	var v VolumeTotals
	err := p.db.QueryRowContext(ctx, `
		SELECT trim_scale(COALESCE(SUM(amount),0))::text,
		       trim_scale(COALESCE(SUM(payout),0))::text
		FROM bets`).Scan(&v.Wagered, &v.Paid)
	if err != nil {
		return VolumeTotals{}, model.StoreError(err)
	}
	return v, nil
}

func (p *Postgres) GlobalSettledOutcomes(ctx context.Context) (int, int, error) {
	var settled, wins int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_winner)
		FROM bets WHERE status='settled'`).Scan(&settled, &wins)
	if err != nil {
		return 0, 0, model.StoreError(err)
	}
	return settled, wins, nil
}

func (p *Postgres) TokenAggregates(ctx context.Context) ([]TokenAggregate, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT token,
			COUNT(*),
			COUNT(*) FILTER (WHERE status='active'),
			COUNT(*) FILTER (WHERE status='settled'),
			COUNT(*) FILTER (WHERE is_winner),
			COUNT(*) FILTER (WHERE direction='up'),
			COUNT(*) FILTER (WHERE direction='down'),
			trim_scale(COALESCE(SUM(amount),0))::text,
			trim_scale(COALESCE(SUM(payout),0))::text
		FROM bets
		GROUP BY token
		ORDER BY SUM(amount) DESC`)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()

	var out []TokenAggregate
	for rows.Next() {
		var t TokenAggregate
		if err := rows.Scan(&t.Token, &t.TotalBets, &t.ActiveBets, &t.SettledBets,
			&t.Wins, &t.UpBets, &t.DownBets, &t.Volume, &t.Payout); err != nil {
			return nil, model.StoreError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StoreError(err)
	}
	return out, nil
}

func (p *Postgres) UserTokenBreakdown(ctx context.Context, address string) ([]TokenBreakdown, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT token,
			COUNT(*),
			COUNT(*) FILTER (WHERE is_winner),
			trim_scale(COALESCE(SUM(amount),0))::text,
			trim_scale(COALESCE(SUM(payout - amount),0))::text
		FROM bets
		WHERE user_address=$1
		GROUP BY token
		ORDER BY SUM(amount) DESC`, address)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()

	var out []TokenBreakdown
	for rows.Next() {
		var t TokenBreakdown
		if err := rows.Scan(&t.Token, &t.Bets, &t.Wins, &t.Volume, &t.Profit); err != nil {
			return nil, model.StoreError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StoreError(err)
	}
	return out, nil
}

func (p *Postgres) UserDurationBreakdown(ctx context.Context, address string) ([]DurationBreakdown, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT duration, COUNT(*), COUNT(*) FILTER (WHERE is_winner)
		FROM bets
		WHERE user_address=$1
		GROUP BY duration
		ORDER BY duration ASC`, address)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()

	var out []DurationBreakdown
	for rows.Next() {
		var d DurationBreakdown
		if err := rows.Scan(&d.Duration, &d.Bets, &d.Wins); err != nil {
			return nil, model.StoreError(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StoreError(err)
	}
	return out, nil
}

func (p *Postgres) RecentSettled(ctx context.Context, address string, limit int) ([]model.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets
		WHERE user_address=$1 AND status='settled'
		ORDER BY settled_at DESC
		LIMIT $2`, address, limit)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func (p *Postgres) HourlyActivity(ctx context.Context, since time.Time) ([]ActivityBucket, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT date_trunc('hour', start_time) AS hour,
			COUNT(*),
			trim_scale(COALESCE(SUM(amount),0))::text
		FROM bets
		WHERE start_time >= $1
		GROUP BY 1
		ORDER BY 1 ASC`, since)
	if err != nil {
		return nil, model.StoreError(err)
	}
	defer rows.Close()

	var out []ActivityBucket
	for rows.Next() {
		var b ActivityBucket
		if err := rows.Scan(&b.Hour, &b.Count, &b.Volume); err != nil {
			return nil, model.StoreError(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StoreError(err)
	}
	return out, nil
}

func (p *Postgres) RebuildCounters(ctx context.Context, address string) (Counters, error) {
	var c Counters
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status='settled' AND is_winner),
			COUNT(*) FILTER (WHERE status='settled'),
			trim_scale(COALESCE(SUM(amount),0))::text,
			trim_scale(COALESCE(SUM(payout) FILTER (WHERE status='settled' AND is_winner),0))::text
		FROM bets WHERE user_address=$1`, address).Scan(
		&c.TotalBets, &c.TotalWins, &c.TotalSettled, &c.TotalWagered, &c.TotalWon)
	if err != nil {
		return Counters{}, model.StoreError(err)
	}
	return c, nil
}

var _ Store = (*Postgres)(nil)

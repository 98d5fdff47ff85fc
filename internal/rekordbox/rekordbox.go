package rekordbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/time/rate"

	"trackaudit/internal/models"
)

// ErrNotFound reports that no content row embeds the requested external id.
// Routine, unlike connectivity or key failures which come back as ordinary
// errors.
var ErrNotFound = errors.New("rekordbox: content not found")

const driverName = "sqlite3_rekordbox"

var (
	driverOnce sync.Once
	driverKey  string
)

// registerDriver installs a keyed sqlite driver. master.db is encrypted at
// rest, so PRAGMA key has to run on every pooled connection before its first
// query; a ConnectHook is the only place that covers all of them.
func registerDriver(key string) {
	driverOnce.Do(func() {
		driverKey = key
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if driverKey == "" {
					return nil
				}
				quoted := strings.ReplaceAll(driverKey, "'", "''")
				_, err := conn.Exec("PRAGMA key = '"+quoted+"';", nil)
				return err
			},
		})
	})
}

// DB is the external content store client. The pool is capped to the batch
// worker count so each worker holds at most one connection for the duration
// of its lookup; the limiter bounds query pressure on the shared file.
type DB struct {
	db      *sql.DB
	limiter *rate.Limiter
}

// Open connects to a rekordbox master database. key is the SQLCipher secret
// (empty for an unencrypted database). Connectivity and the key are verified
// up front: a store that cannot be read at all is a setup failure, not a
// per-track condition.
func Open(path, key string, maxConns int) (*DB, error) {
	if maxConns < 1 {
		maxConns = 1
	}
	registerDriver(key)

	db, err := sql.Open(driverName, "file:"+path+"?mode=ro&_query_only=1")
	if err != nil {
		return nil, fmt.Errorf("rekordbox: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	// A plain Ping succeeds even with a wrong key; reading a real table does
	// not.
	var n int
	if err := db.QueryRow("SELECT count(*) FROM djmdContent").Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("rekordbox: verify %s: %w", path, err)
	}

	return &DB{
		db:      db,
		limiter: rate.NewLimiter(rate.Limit(maxConns*20), maxConns),
	}, nil
}

// Close releases the connection pool.
func (d *DB) Close() error { return d.db.Close() }

const contentQuery = `SELECT ID, FileNameL, Rating FROM djmdContent WHERE FileNameL LIKE ?`

// Find looks up the content row whose filename embeds the bracketed external
// id token. Zero rows is ErrNotFound; on several rows the first returned by
// the store wins and Matches carries the total so callers can observe the
// ambiguity.
func (d *DB) Find(ctx context.Context, externalID string) (*models.Content, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, contentQuery, "%["+externalID+"]%")
	if err != nil {
		return nil, fmt.Errorf("rekordbox: query content %q: %w", externalID, err)
	}
	defer rows.Close()

	var first *models.Content
	matches := 0
	for rows.Next() {
		var c models.Content
		var rating sql.NullInt64
		if err := rows.Scan(&c.ID, &c.FileName, &rating); err != nil {
			return nil, fmt.Errorf("rekordbox: scan content %q: %w", externalID, err)
		}
		c.Rating = int(rating.Int64)
		matches++
		if first == nil {
			row := c
			first = &row
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rekordbox: read content %q: %w", externalID, err)
	}
	if first == nil {
		return nil, ErrNotFound
	}
	first.Matches = matches
	return first, nil
}

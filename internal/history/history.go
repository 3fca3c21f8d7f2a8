// Package history keeps a write-only SQLite transcript of settled exchanges
// for diagnostics. It is never read back into the conversation: message
// state always starts empty on launch.
package history

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/herbqa/teachat-go/internal/logger"
)

// Entry is one transcript row, retained in memory when SQLite is unavailable.
type Entry struct {
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Recorder appends transcript rows best-effort. Storage failures degrade to
// an in-memory buffer and never surface to the chat flow.
type Recorder struct {
	mu  sync.Mutex
	db  *sql.DB
	mem []Entry
}

// Open prepares the transcript database at path, creating the table when it
// doesn't exist. On any failure the recorder still works, memory-only.
func Open(path string) *Recorder {
	r := &Recorder{}

	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000")
	if err != nil {
		logger.L.Warn("transcript db open failed; recording in memory only", "error", err)
		return r
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS transcript (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT,
        role TEXT,
        content TEXT,
        created_at DATETIME
    );`); err != nil {
		logger.L.Warn("transcript table creation failed; recording in memory only", "error", err)
		if cerr := db.Close(); cerr != nil {
			logger.L.Warn("transcript db close error", "error", cerr)
		}
		return r
	}

	r.db = db
	return r
}

// Record appends one row. It never fails: a SQLite error keeps the row in memory.
func (r *Recorder) Record(sessionID, role, content string) {
	e := Entry{SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		_, err := r.db.Exec(`INSERT INTO transcript (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			e.SessionID, e.Role, e.Content, e.CreatedAt)
		if err == nil {
			return
		}
		logger.L.Error("transcript insert failed; keeping row in memory", "error", err)
	}
	r.mem = append(r.mem, e)
}

// Pending returns the rows that never reached SQLite.
func (r *Recorder) Pending() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.mem...)
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

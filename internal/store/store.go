package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/certify/internal/assessment"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// builder renders SQLite statements for every repository.
var builder = entsql.Dialect(dialect.SQLite)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withConnPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) Skills() *SkillRepo { return &SkillRepo{q: s.db} }
func (s *Store) Challenges() *ChallengeRepo { return &ChallengeRepo{q: s.db} }
func (s *Store) TargetProfiles() *TargetProfileRepo { return &TargetProfileRepo{q: s.db} }
func (s *Store) Assessments() *AssessmentRepo { return &AssessmentRepo{q: s.db} }
func (s *Store) Answers() *AnswerRepo { return &AnswerRepo{q: s.db} }
func (s *Store) KnowledgeElements() *KnowledgeRepo { return &KnowledgeRepo{q: s.db} }
func (s *Store) Courses() *CourseRepo { return &CourseRepo{q: s.db} }
func (s *Store) AssessmentResults() *ResultRepo { return &ResultRepo{q: s.db} }
func (s *Store) CompetenceMarks() *MarkRepo { return &MarkRepo{q: s.db} }
func (s *Store) FlashConfig() *FlashConfigRepo { return &FlashConfigRepo{q: s.db} }
var (
	_ assessment.Transactor       = (*Store)(nil)
	_ assessment.AnswerTransactor = (*Store)(nil)
)

func (s *Store) CertificationAssessments() *CertificationAssessmentRepo {
	return &CertificationAssessmentRepo{q: s.db}
}

// txWriter exposes the scoring repositories bound to one transaction.
type txWriter struct{ tx *sql.Tx }

func (w txWriter) AssessmentResults() assessment.AssessmentResultRepository {
	return &ResultRepo{q: w.tx}
}

func (w txWriter) CompetenceMarks() assessment.CompetenceMarkRepository {
	return &MarkRepo{q: w.tx}
}

func (w txWriter) CertificationCourses() assessment.CertificationCourseRepository {
	return &CourseRepo{q: w.tx}
}

// answerTxWriter exposes the answer repositories bound to one transaction.
type answerTxWriter struct{ tx *sql.Tx }

func (w answerTxWriter) Answers() assessment.AnswerRepository {
	return &AnswerRepo{q: w.tx}
}

func (w answerTxWriter) KnowledgeElements() assessment.KnowledgeElementRepository {
	return &KnowledgeRepo{q: w.tx}
}

// WithinTx runs fn in a transaction. The transaction is rolled back when fn
// returns an error or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(w assessment.ScoringWriter) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error { return fn(txWriter{tx: tx}) })
}

// WithinAnswerTx runs fn in a transaction covering an answer and its
// knowledge elements.
func (s *Store) WithinAnswerTx(ctx context.Context, fn func(w assessment.AnswerWriter) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error { return fn(answerTxWriter{tx: tx}) })
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// withConnPragmas adds the pragmas every pooled connection needs to the DSN.
func withConnPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// applyPragmas configures SQLite for a single-writer workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. CERTIFY_DB environment variable
// 2. $XDG_DATA_HOME/certify/certify.db
// 3. ~/.local/share/certify/certify.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CERTIFY_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "certify", "certify.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// rowsAffected maps a write that touched nothing to ErrNotFound.
func rowsAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, assessment.ErrNotFound)
	}
	return nil
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the store. dbType is "sqlite" or "postgres"; dsn is a file
// path for sqlite (":memory:" allowed) or a connection URL for postgres.
func Connect(dbType, dsn string) (*sqlx.DB, error) {
	switch strings.ToLower(dbType) {
	case "", "sqlite", DriverSQLite:
		return connectSQLite(dsn)
	case DriverPostgres, "postgresql":
		return connectPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

func connectSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		path = filepath.Join("data", "estudos.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers; one connection also keeps
	// an in-memory database alive for the whole process
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func connectPostgres(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres")
	}

	db, err := sqlx.Connect(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT false,
			notification_enabled BOOLEAN NOT NULL DEFAULT true,
			notification_hour INTEGER NOT NULL DEFAULT 9,
			stripe_customer_id TEXT,
			plano_status TEXT NOT NULL DEFAULT 'free',
			plano_expira_em TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"editais_default", `
		CREATE TABLE IF NOT EXISTS editais_default (
			id TEXT PRIMARY KEY,
			nome TEXT NOT NULL,
			orgao TEXT NOT NULL DEFAULT '',
			banca TEXT NOT NULL DEFAULT '',
			ano INTEGER NOT NULL DEFAULT 0,
			publicado BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"disciplinas_default", `
		CREATE TABLE IF NOT EXISTS disciplinas_default (
			id TEXT PRIMARY KEY,
			edital_default_id TEXT NOT NULL REFERENCES editais_default(id) ON DELETE CASCADE,
			nome TEXT NOT NULL,
			ordem INTEGER NOT NULL DEFAULT 0,
			UNIQUE(edital_default_id, nome)
		)`},
	{"topicos_default", `
		CREATE TABLE IF NOT EXISTS topicos_default (
			id TEXT PRIMARY KEY,
			disciplina_default_id TEXT NOT NULL REFERENCES disciplinas_default(id) ON DELETE CASCADE,
			nome TEXT NOT NULL,
			ordem INTEGER NOT NULL DEFAULT 0,
			UNIQUE(disciplina_default_id, nome)
		)`},
	{"flashcards_default", `
		CREATE TABLE IF NOT EXISTS flashcards_default (
			id TEXT PRIMARY KEY,
			topico_default_id TEXT NOT NULL REFERENCES topicos_default(id) ON DELETE CASCADE,
			frente TEXT NOT NULL,
			verso TEXT NOT NULL
		)`},
	{"editais", `
		CREATE TABLE IF NOT EXISTS editais (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			edital_default_id TEXT REFERENCES editais_default(id) ON DELETE SET NULL,
			nome TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`},
	{"disciplinas", `
		CREATE TABLE IF NOT EXISTS disciplinas (
			id TEXT PRIMARY KEY,
			edital_id TEXT NOT NULL REFERENCES editais(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			nome TEXT NOT NULL,
			ordem INTEGER NOT NULL DEFAULT 0
		)`},
	{"topicos", `
		CREATE TABLE IF NOT EXISTS topicos (
			id TEXT PRIMARY KEY,
			disciplina_id TEXT NOT NULL REFERENCES disciplinas(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			nome TEXT NOT NULL,
			ordem INTEGER NOT NULL DEFAULT 0,
			concluido BOOLEAN NOT NULL DEFAULT false
		)`},
	{"flashcards", `
		CREATE TABLE IF NOT EXISTS flashcards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			topico_id TEXT NOT NULL,
			frente TEXT NOT NULL,
			verso TEXT NOT NULL,
			easiness_factor REAL NOT NULL DEFAULT 2.5,
			intervalo INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			last_quality INTEGER NOT NULL DEFAULT 0,
			consecutive_right INTEGER NOT NULL DEFAULT 0,
			last_review_date TIMESTAMP,
			next_review_date TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`},
	{"ciclos", `
		CREATE TABLE IF NOT EXISTS ciclos (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			nome TEXT NOT NULL,
			ativo BOOLEAN NOT NULL DEFAULT true,
			proxima_sessao_manual_id TEXT,
			volta_iniciada_em TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"ciclo_sessoes", `
		CREATE TABLE IF NOT EXISTS ciclo_sessoes (
			id TEXT PRIMARY KEY,
			ciclo_id TEXT NOT NULL REFERENCES ciclos(id) ON DELETE CASCADE,
			disciplina_id TEXT NOT NULL,
			disciplina_nome TEXT NOT NULL DEFAULT '',
			tempo_previsto INTEGER NOT NULL,
			ordem INTEGER NOT NULL
		)`},
	{"sessoes_estudo", `
		CREATE TABLE IF NOT EXISTS sessoes_estudo (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			topico_id TEXT NOT NULL DEFAULT '',
			ciclo_sessao_id TEXT REFERENCES ciclo_sessoes(id) ON DELETE SET NULL,
			tempo_estudado INTEGER NOT NULL,
			data_estudo TIMESTAMP NOT NULL,
			comentarios TEXT,
			created_at TIMESTAMP NOT NULL
		)`},
	{"revisoes", `
		CREATE TABLE IF NOT EXISTS revisoes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			topico_id TEXT NOT NULL,
			data_prevista DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'pendente',
			origem TEXT NOT NULL,
			dificuldade TEXT NOT NULL DEFAULT 'medio',
			data_conclusao TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`},
	{"solicitacoes_editais", `
		CREATE TABLE IF NOT EXISTS solicitacoes_editais (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			nome_edital TEXT NOT NULL,
			orgao TEXT NOT NULL DEFAULT '',
			arquivo_path TEXT,
			status TEXT NOT NULL DEFAULT 'pendente',
			observacao TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"idx_revisoes_status", `CREATE INDEX IF NOT EXISTS idx_revisoes_status ON revisoes(status, data_prevista)`},
	{"idx_sessoes_estudo_ciclo", `CREATE INDEX IF NOT EXISTS idx_sessoes_estudo_ciclo ON sessoes_estudo(ciclo_sessao_id)`},
}

// InitializeSchema creates the tables if they don't exist
func InitializeSchema(db *sqlx.DB) error {
	for _, s := range schema {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}

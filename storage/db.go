package storage

import (
	"backend/models"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Set connection pool settings optimized for light server load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// InitSchema creates the tables the application needs if they do not exist
// yet, and seeds the default exchange rates. Cascades on proyecto_id keep
// partidas, glossary entries and cotizaciones consistent when a project is
// deleted.
func InitSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS proyectos (
			id SERIAL PRIMARY KEY,
			nombre TEXT NOT NULL UNIQUE,
			descripcion TEXT NOT NULL DEFAULT '',
			fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			fecha_modificacion TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS partidas (
			id SERIAL PRIMARY KEY,
			proyecto_id INTEGER NOT NULL REFERENCES proyectos(id) ON DELETE CASCADE,
			categoria TEXT NOT NULL DEFAULT '',
			concepto TEXT NOT NULL DEFAULT '',
			detalle TEXT NOT NULL DEFAULT '',
			proveedor TEXT NOT NULL DEFAULT '',
			unidad TEXT NOT NULL DEFAULT '',
			cantidad DOUBLE PRECISION NOT NULL DEFAULT 0,
			moneda TEXT NOT NULL DEFAULT 'MXN',
			unitario DOUBLE PRECISION NOT NULL DEFAULT 0,
			importe_sin_iva DOUBLE PRECISION NOT NULL DEFAULT 0,
			sobrecosto_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			sobrecosto_monto DOUBLE PRECISION NOT NULL DEFAULT 0,
			iva_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			iva_monto DOUBLE PRECISION NOT NULL DEFAULT 0,
			importe_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			tipo_cambio DOUBLE PRECISION NOT NULL DEFAULT 1,
			total_mxn DOUBLE PRECISION NOT NULL DEFAULT 0,
			notas TEXT NOT NULL DEFAULT '',
			es_parametro TEXT NOT NULL DEFAULT 'PRESUPUESTO',
			torre TEXT NOT NULL DEFAULT '',
			piso TEXT NOT NULL DEFAULT '',
			depto TEXT NOT NULL DEFAULT '',
			fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			fecha_modificacion TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_partidas_proyecto ON partidas(proyecto_id)`,
		`CREATE INDEX IF NOT EXISTS idx_partidas_categoria ON partidas(categoria)`,
		`CREATE INDEX IF NOT EXISTS idx_partidas_concepto ON partidas(concepto)`,
		`CREATE TABLE IF NOT EXISTS categorias_glosario (
			id SERIAL PRIMARY KEY,
			proyecto_id INTEGER NOT NULL REFERENCES proyectos(id) ON DELETE CASCADE,
			nombre TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT idx_glosario_proyecto_nombre UNIQUE (proyecto_id, nombre)
		)`,
		`CREATE TABLE IF NOT EXISTS conceptos_glosario (
			id SERIAL PRIMARY KEY,
			categoria_id INTEGER NOT NULL REFERENCES categorias_glosario(id) ON DELETE CASCADE,
			nombre TEXT NOT NULL,
			posicion INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT idx_glosario_categoria_nombre UNIQUE (categoria_id, nombre)
		)`,
		`CREATE TABLE IF NOT EXISTS tipos_cambio (
			id SERIAL PRIMARY KEY,
			moneda TEXT NOT NULL UNIQUE,
			valor DOUBLE PRECISION NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS cotizaciones (
			id SERIAL PRIMARY KEY,
			proyecto_id INTEGER NOT NULL REFERENCES proyectos(id) ON DELETE CASCADE,
			proveedor TEXT NOT NULL,
			archivo TEXT NOT NULL DEFAULT '',
			fecha TEXT NOT NULL DEFAULT '',
			moneda TEXT NOT NULL DEFAULT 'MXN',
			notas TEXT NOT NULL DEFAULT '',
			num_items INTEGER NOT NULL DEFAULT 0,
			monto_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cotizaciones_proveedor ON cotizaciones(proveedor)`,
		`CREATE TABLE IF NOT EXISTS cotizacion_categorias (
			id SERIAL PRIMARY KEY,
			cotizacion_id INTEGER NOT NULL REFERENCES cotizaciones(id) ON DELETE CASCADE,
			categoria TEXT NOT NULL,
			posicion INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cotizacion_items (
			id SERIAL PRIMARY KEY,
			cotizacion_id INTEGER NOT NULL REFERENCES cotizaciones(id) ON DELETE CASCADE,
			codigo TEXT NOT NULL DEFAULT '',
			descripcion TEXT NOT NULL DEFAULT '',
			unidad TEXT NOT NULL DEFAULT '',
			cantidad DOUBLE PRECISION NOT NULL DEFAULT 0,
			precio_unitario DOUBLE PRECISION NOT NULL DEFAULT 0,
			importe DOUBLE PRECISION NOT NULL DEFAULT 0,
			moneda TEXT NOT NULL DEFAULT 'MXN',
			posicion INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cotizacion_items_cotizacion ON cotizacion_items(cotizacion_id)`,
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			nombre TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS session (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL,
			host_name TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			timestp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			refresh_token TEXT,
			refresh_token_expires_at TIMESTAMPTZ
		)`,
		`INSERT INTO tipos_cambio (moneda, valor) VALUES ('MXN', 1), ('USD', 20.5), ('EUR', 22)
			ON CONFLICT (moneda) DO NOTHING`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to init schema: %v", err)
		}
	}
	return nil
}

// SaveSession saves a new session for a user, handling multiple device support.
// If allowMultipleSessions is false, all existing sessions are removed first.
func SaveSession(db *sql.DB, session *models.Session, allowMultipleSessions bool) error {
	if !allowMultipleSessions {
		deleteAllQuery := `DELETE FROM session WHERE user_id = $1`
		_, err := db.Exec(deleteAllQuery, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete all user sessions: %v", err)
		}
	}

	insertQuery := `INSERT INTO session (user_id, session_id, host_name, ip_address, timestp, expires_at, refresh_token, refresh_token_expires_at)
                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.Exec(insertQuery, session.UserID, session.SessionID, session.HostName, session.IPAddress, session.Timestamp, session.ExpiresAt, session.RefreshToken, session.RefreshTokenExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert new session: %v", err)
	}
	return nil
}

// SaveRefreshToken stores a refresh token bound to a session so each
// device/session keeps its own refresh token.
func SaveRefreshToken(db *sql.DB, userID int, sessionID string, refreshToken string, expiresAt time.Time) error {
	updateQuery := `UPDATE session SET refresh_token = $1, refresh_token_expires_at = $2 WHERE session_id = $3 AND user_id = $4`

	result, err := db.Exec(updateQuery, refreshToken, expiresAt, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found for session_id: %s and user_id: %d", sessionID, userID)
	}

	return nil
}

// GetRefreshTokenBySession retrieves a refresh token for a specific session
func GetRefreshTokenBySession(db *sql.DB, sessionID string) (string, error) {
	var refreshToken string
	err := db.QueryRow(`
		SELECT refresh_token FROM session
		WHERE session_id = $1 AND refresh_token_expires_at > NOW()`, sessionID).Scan(&refreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token not found: %v", err)
	}
	return refreshToken, nil
}

// DeleteRefreshToken removes a refresh token for a session (for logout)
func DeleteRefreshToken(db *sql.DB, sessionID string) error {
	_, err := db.Exec(`UPDATE session SET refresh_token = NULL, refresh_token_expires_at = NULL WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %v", err)
	}
	return nil
}

func DeleteSession(db *sql.DB, userID int) error {
	query := `DELETE FROM session WHERE user_id = $1`
	_, err := db.Exec(query, userID)
	return err
}

func CleanupExpiredSessions(db *sql.DB) error {
	threshold := time.Now().Add(-24 * time.Hour)
	_, err := db.Exec("DELETE FROM session WHERE expires_at < $1", threshold)
	return err
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password, nombre FROM users WHERE LOWER(email) = LOWER($1)`

	err := db.QueryRow(query, email).Scan(&user.ID, &user.Email, &user.Password, &user.Nombre)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to query user: %v", err)
	}

	return &user, nil
}

// GetUserBySessionID retrieves a User by the given session ID.
func GetUserBySessionID(db *sql.DB, sessionID string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.nombre, u.created_at
		FROM session s
		JOIN users u ON s.user_id = u.id
		WHERE s.session_id = $1 AND s.expires_at > NOW()
	`

	var user models.User
	err := db.QueryRow(query, sessionID).Scan(&user.ID, &user.Email, &user.Nombre, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("user not found for the given session ID")
		}
		return nil, err
	}

	return &user, nil
}

// RecalcularCotizacion refreshes the item count and total amount rollups of
// a quotation from its current items. Called after any item write.
func RecalcularCotizacion(db *sql.DB, cotizacionID int) error {
	query := `
		UPDATE cotizaciones SET
			num_items = (SELECT COUNT(*) FROM cotizacion_items WHERE cotizacion_id = $1),
			monto_total = (SELECT COALESCE(SUM(importe), 0) FROM cotizacion_items WHERE cotizacion_id = $1)
		WHERE id = $1
	`
	_, err := db.Exec(query, cotizacionID)
	if err != nil {
		return fmt.Errorf("failed to recalculate cotizacion %d: %v", cotizacionID, err)
	}
	return nil
}

// RecalcularTodasCotizaciones reconciles the rollups of every quotation.
// Run by the daily maintenance job.
func RecalcularTodasCotizaciones(db *sql.DB) error {
	query := `
		UPDATE cotizaciones c SET
			num_items = COALESCE(i.n, 0),
			monto_total = COALESCE(i.total, 0)
		FROM (
			SELECT cotizacion_id, COUNT(*) AS n, SUM(importe) AS total
			FROM cotizacion_items
			GROUP BY cotizacion_id
		) i
		WHERE c.id = i.cotizacion_id
	`
	_, err := db.Exec(query)
	return err
}

package database

import (
	"database/sql"
	"net"
	"net/url"
	"strconv"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresDSN builds a postgres:// URL so credentials with spaces or quotes
// survive intact.
func postgresDSN(cfg config.PostgresConfig) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

// postgresDialector opens the connection with lib/pq and hands the pool
// to gorm.
func postgresDialector(cfg config.PostgresConfig) (gorm.Dialector, error) {
	conn, err := sql.Open("postgres", postgresDSN(cfg))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return postgres.New(postgres.Config{Conn: conn}), nil
}

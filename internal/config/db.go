package config

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// ConnectDB opens and pings the MySQL pool. The DSN needs parseTime for
// DATETIME scanning and clientFoundRows so an UPDATE that matches a row but
// changes nothing still reports one affected row; the gateway reads zero
// affected rows as a permission denial.
func ConnectDB(dsn string) *sql.DB {
	dsn = withDefaults(dsn)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("falha ao abrir o banco: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("falha ao conectar no MySQL: %v", err)
	}

	log.Println("Conectado ao banco MySQL")
	return db
}

func withDefaults(dsn string) string {
	params := []string{"parseTime=true", "clientFoundRows=true", "charset=utf8mb4", "loc=UTC"}
	missing := []string{}
	for _, p := range params {
		key := p[:strings.IndexByte(p, '=')]
		if !strings.Contains(dsn, key+"=") {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

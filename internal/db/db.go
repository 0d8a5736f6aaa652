package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vietanh2810/eventpass-api/internal/config"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
)

const mysqlScheme = "mysql://"

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	sslMode := conf.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		conf.Host, conf.User, conf.Password, conf.DB, conf.Port, sslMode)

	return open(postgres.Open(dsn), &gorm.Config{})
}

// OpenPostgresWithURL opens DATABASE_URL. A mysql:// URL selects the MySQL driver
// with the rest of the URL used as its DSN.
func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	if strings.HasPrefix(url, mysqlScheme) {
		return OpenMySQL(strings.TrimPrefix(url, mysqlScheme))
	}

	return open(postgres.Open(url), &gorm.Config{})
}

// OpenMySQL translates driver errors so duplicate keys surface as gorm.ErrDuplicatedKey.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	return open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

func open(dialector gorm.Dialector, conf *gorm.Config) (*gorm.DB, error) {
	conf.Logger = gormlogger.Default.LogMode(gormlogger.Warn)

	db, err := gorm.Open(dialector, conf)
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

// internal/service/cart/infrastructure/mysql.go
package infrastructure

import (
	"time"

	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMysqlDB 打开 MySQL 连接并迁移购物车表。
func NewMysqlDB(addr, user, password, database string) (*gorm.DB, error) {
	dsnConfig := sqldriver.Config{
		User:                 user,
		Passwd:               password,
		Net:                  "tcp",
		Addr:                 addr,
		DBName:               database,
		ParseTime:            true,
		Loc:                  time.UTC,
		AllowNativePasswords: true,
	}

	db, err := gorm.Open(gormmysql.Open(dsnConfig.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mysql")
	}

	if err := db.AutoMigrate(&CartLineModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate cart tables")
	}
	return db, nil
}

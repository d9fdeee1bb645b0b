package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 数据库连接参数
type Options struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
	Path     string
}

// Open 按驱动打开数据库连接
// 开启 TranslateError，唯一约束冲突统一为 gorm.ErrDuplicatedKey
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "mysql":
		dialector = mysql.Open(mysqlDSN(opts))
	case "postgres":
		dialector = postgres.Open(postgresDSN(opts))
	case "sqlite", "":
		dialector = sqlite.Open(opts.Path)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if opts.Driver == "sqlite" || opts.Driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite 只允许单写者
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func mysqlDSN(opts Options) string {
	charset := opts.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		opts.User, opts.Password, opts.Host, opts.Port, opts.Name, charset)
}

func postgresDSN(opts Options) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		opts.Host, opts.User, opts.Password, opts.Name, opts.Port)
}

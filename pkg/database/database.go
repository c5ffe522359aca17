package database

import (
	"fmt"
	"log"
	"qahub_backend/internal/config"
	"qahub_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Question{},
		&model.Answer{},
		&model.Notification{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认标签（库为空时插入常用标签）
	var tagCount int64
	db.Model(&model.Tag{}).Count(&tagCount)
	if tagCount == 0 {
		defaultTags := []model.Tag{
			{Name: "go", Description: "Go 语言相关问题", Color: "#00add8"},
			{Name: "python", Description: "Python 语言相关问题", Color: "#3776ab"},
			{Name: "javascript", Description: "JavaScript 语言相关问题", Color: "#f7df1e"},
			{Name: "database", Description: "数据库设计与查询", Color: "#336791"},
			{Name: "algorithm", Description: "算法与数据结构", Color: "#e44d26"},
		}
		for _, t := range defaultTags {
			db.Create(&t)
		}
	}

	return db, nil
}

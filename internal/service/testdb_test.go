package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"DawnCall/storage/database"
)

// setupTestDB 用内存 SQLite 代替 PostgreSQL 跑服务层测试。
// 表结构手写，模型 tag 里的 now()/jsonb 默认值是 PostgreSQL 方言，
// 不能靠 AutoMigrate；gorm 创建记录时会自己填时间戳，不依赖库默认值
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// 内存库每个连接各自独立，收紧到单连接
	sqlDB.SetMaxOpenConns(1)

	schemas := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			public_id INTEGER, nickname TEXT DEFAULT '', phone TEXT,
			phone_verified BOOLEAN DEFAULT 0, verified_at DATETIME,
			timezone TEXT DEFAULT 'America/New_York', zip_code TEXT DEFAULT ''
		)`,
		`CREATE TABLE wakeup_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			user_id INTEGER, phone TEXT, timezone TEXT, wakeup_time TEXT,
			frequency TEXT, status TEXT,
			monday BOOLEAN DEFAULT 0, tuesday BOOLEAN DEFAULT 0,
			wednesday BOOLEAN DEFAULT 0, thursday BOOLEAN DEFAULT 0,
			friday BOOLEAN DEFAULT 0, saturday BOOLEAN DEFAULT 0,
			sunday BOOLEAN DEFAULT 0,
			contact_method TEXT, message TEXT DEFAULT '',
			include_weather BOOLEAN DEFAULT 0, zip_code TEXT DEFAULT '',
			next_execution_at DATETIME, last_executed_at DATETIME
		)`,
		`CREATE TABLE call_executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			wakeup_call_id INTEGER, scheduled_at DATETIME,
			started_at DATETIME, completed_at DATETIME,
			status TEXT, provider_sid TEXT DEFAULT '',
			delivery_status TEXT DEFAULT '', user_response TEXT DEFAULT '',
			snoozed BOOLEAN DEFAULT 0,
			error_message TEXT DEFAULT '', retry_count INTEGER DEFAULT 0
		)`,
		`CREATE TABLE notification_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			user_id INTEGER, execution_id INTEGER, wakeup_call_id INTEGER,
			channel TEXT, recipient TEXT, body TEXT DEFAULT '',
			provider TEXT DEFAULT '', provider_sid TEXT DEFAULT '',
			status TEXT, error_code TEXT DEFAULT '',
			error_message TEXT DEFAULT '',
			sent_at DATETIME, delivered_at DATETIME, extra TEXT
		)`,
		`CREATE TABLE phone_verifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME, updated_at DATETIME, deleted_at DATETIME,
			user_id INTEGER, phone TEXT, code TEXT, expires_at DATETIME,
			attempts INTEGER DEFAULT 0, verified_at DATETIME
		)`,
	}
	for _, ddl := range schemas {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatal(err)
		}
	}

	database.SetDB(db)
	t.Cleanup(func() {
		database.SetDB(nil)
		sqlDB.Close()
	})

	return db
}

package repository

// gorm.io/gen 代码生成入口，需要连上真实数据库运行（go run ./cmd/gen）。
// 生成的 query 包不入库，按需在开发环境重新生成；
// 运行时查询走 service 层的 gorm 链式调用。

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"DawnCall/internal/model"
	"DawnCall/storage/database"
)

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 运行数据库迁移（确保表存在）
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "DawnCall/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithoutContext,
		FieldNullable:     true, // 字段可以为 null
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.User{},
		&model.WakeupCall{},
		&model.CallExecution{},
		&model.NotificationLog{},
		&model.PhoneVerification{},
	)

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}

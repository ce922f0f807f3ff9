package main

import (
	"DawnCall/internal/repository"
	"DawnCall/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}

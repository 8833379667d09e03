package main

import (
	"os"

	_ "github.com/courseplatform/backend/docs"
	"github.com/courseplatform/backend/internal/cli"
)

// @title Course Platform API
// @version 1.0
// @description API for course authoring, enrollments, quizzes and reporting

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

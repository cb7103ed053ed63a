package main

import (
	"fmt"
	"os"

	"interiorerp/internal/app"
)

// @title           Interior ERP API
// @version         1.0
// @description     Projects, task approvals, documents, financials and vendor statements.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

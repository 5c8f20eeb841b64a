package main

import (
	"fmt"
	"os"

	"writeq/internal/database"
)

func main() {
	maxVars, err := database.MaxSQLVariables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlvars: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(maxVars)
}

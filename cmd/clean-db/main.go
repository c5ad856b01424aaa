// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command clean-db empties the tenantforms tables of a development database.
// With -drop it removes the schema entirely, including schema_migrations,
// so that the next migrate starts from scratch.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// tables in reverse dependency order
var tables = []string{
	"form_submissions",
	"forms",
	"users",
	"tenants",
}

func main() {
	drop := flag.Bool("drop", false, "drop the tables instead of truncating them")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	connStr := os.Getenv("DATABASE_URL")
	if flag.NArg() > 0 {
		connStr = flag.Arg(0)
	}
	if connStr == "" {
		log.Fatal("usage: clean-db [-drop] <connection-string> (or set DATABASE_URL)")
	}

	ctx := context.Background()
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if *drop {
		for _, table := range append(tables, "schema_migrations") {
			if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
				log.Fatalf("Failed to drop %s: %v", table, err)
			}
			fmt.Printf("Dropped %s\n", table)
		}
		return
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			fmt.Printf("Warning: failed to truncate %s: %v\n", table, err)
			continue
		}
		fmt.Printf("Cleared %s\n", table)
	}
}

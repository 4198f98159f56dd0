// open-year opens the balance cases of a fiscal year for one firm from the
// command line: one case per eligible client, all at the first stage.
//
// Usage:
//
//	DB_USER=... DB_HOST=... REDIS_ADDRESS=... go run ./cmd/open-year --firm-id=<uuid> --year=2025
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"bitbucket.org/mmdatafocus/balances_backend/workflow"
)

func main() {
	firmId := flag.String("firm-id", "", "Required: firm id (uuid)")
	year := flag.Int("year", 0, "Required: fiscal year to open")
	flag.Parse()

	if strings.TrimSpace(*firmId) == "" {
		fmt.Fprintln(os.Stderr, "--firm-id is required")
		os.Exit(1)
	}
	if *year <= 0 {
		fmt.Fprintln(os.Stderr, "--year is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}

	ctx := context.Background()
	if _, err := models.GetFirmById(utils.SetSkipTenantScopeInContext(ctx, true), *firmId); err != nil {
		fmt.Fprintf(os.Stderr, "firm not found: %v\n", err)
		os.Exit(1)
	}

	ctx = utils.SetFirmIdInContext(ctx, *firmId)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "CLI")
	ctx = utils.SetUserRoleInContext(ctx, string(models.UserRoleAdmin))

	opener := workflow.NewYearOpener(models.GormCaseStore{}, models.GormClientSource{}, models.RedisYearLocker{})
	result, err := opener.OpenYear(ctx, *year)
	if err != nil {
		var dup *workflow.DuplicateYearError
		if errors.As(err, &dup) {
			fmt.Fprintf(os.Stderr, "year %d is already open: %d existing cases\n", dup.Year, dup.ExistingCount)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "failed to open year: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Opened year %d: %d cases created\n", result.Year, result.Created)
}

package models

import (
	"bitbucket.org/mmdatafocus/balances_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	logger := config.GetLogger()

	err := db.AutoMigrate(
		&Firm{},
		&User{},
		&Client{},
		&BalanceCase{},
		&StatusHistory{},
		&CaseDocument{},
	)
	if err != nil {
		config.LogError(logger, "models", "MigrateTable", "auto migrate", nil, err)
	}
}

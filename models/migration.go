package models

import (
	"log"

	"bitbucket.org/polifilmdata/films_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Order{},
		&StockItem{}, &StockMovement{},
		&CuttingPlan{}, &CuttingEntry{},
		&ProductionBobin{}, &OrderStockEntry{},
		&AuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

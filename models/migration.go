package models

import (
	"log"

	"github.com/buildtrack/matstock_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Material{}, &Godown{}, &Site{}, &Company{},
		&PurchaseBill{}, &PurchaseBillItem{},
		&MaterialIssue{}, &MaterialIssueItem{},
		&StockTransaction{}, &StockBalance{},
		&User{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

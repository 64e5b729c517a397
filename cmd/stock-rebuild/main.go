// Command stock-rebuild refills the stock_balances cache from the movement
// ledger and prints any material where documents and ledger disagree. Run it
// offline after manual data repair.
package main

import (
	"context"
	"log"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/models"
)

func main() {
	config.ConnectDatabaseWithRetry()

	ctx := context.Background()

	if err := models.RebuildStockBalances(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("stock balances rebuilt from ledger")

	issues, err := models.CheckLedgerDocumentConsistency(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if len(issues) == 0 {
		log.Println("ledger and documents are consistent")
		return
	}
	for _, issue := range issues {
		log.Printf("material %d: document net %s, ledger net %s (diff %s)",
			issue.MaterialId, issue.DocumentNet.String(), issue.LedgerNet.String(), issue.Difference.String())
	}
}

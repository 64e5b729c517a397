package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/models"
	"github.com/buildtrack/matstock_backend/utils"
	"github.com/shopspring/decimal"
)

// End-to-end stock posting: purchase bill receipts, issue consumption,
// BalanceAfter stamping, availability rejection and ledger/document agreement.

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "matstock_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetIsAdminInContext(ctx, true)
	return ctx
}

type fixtures struct {
	material *models.Material
	godown   *models.Godown
	site     *models.Site
	company  *models.Company
}

func seedFixtures(t *testing.T, ctx context.Context, suffix string) fixtures {
	t.Helper()

	material, err := models.CreateMaterial(ctx, &models.NewMaterial{
		Name: "Cement " + suffix, Unit: "bag", Category: "Binder",
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	godown, err := models.CreateGodown(ctx, &models.NewGodown{Name: "Central Godown " + suffix})
	if err != nil {
		t.Fatalf("CreateGodown: %v", err)
	}
	site, err := models.CreateSite(ctx, &models.NewSite{Name: "Tower " + suffix})
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	company, err := models.CreateCompany(ctx, &models.NewCompany{Name: "Suppliers " + suffix})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	return fixtures{material: material, godown: godown, site: site, company: company}
}

func TestStockFlow_PurchaseThenIssue(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedFixtures(t, ctx, "A")
	billDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	bill, err := models.CreatePurchaseBill(ctx, &models.NewPurchaseBill{
		BillNumber:  "SUP-1001",
		CompanyId:   fx.company.ID,
		BillDate:    billDate,
		DeliveredTo: models.DeliveredToGodown,
		GodownId:    &fx.godown.ID,
		Items: []models.NewPurchaseBillItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(100), Rate: decimal.NewFromInt(350)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseBill: %v", err)
	}
	if want := decimal.NewFromInt(35000); !bill.TotalAmount.Equal(want) {
		t.Fatalf("bill total = %s, want %s", bill.TotalAmount, want)
	}

	balance, err := models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if want := decimal.NewFromInt(100); !balance.Qty.Equal(want) {
		t.Fatalf("balance after receipt = %s, want %s", balance.Qty, want)
	}

	// the receipt entry carries the running balance
	entries, _, err := models.ListStockTransaction(ctx, &models.StockTransactionFilter{
		MaterialId: &fx.material.ID,
	})
	if err != nil {
		t.Fatalf("ListStockTransaction: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	if !entries[0].BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance_after = %s, want 100", entries[0].BalanceAfter)
	}

	issue, err := models.CreateMaterialIssue(ctx, &models.NewMaterialIssue{
		SiteId:    fx.site.ID,
		GodownId:  &fx.godown.ID,
		IssueDate: billDate.AddDate(0, 0, 1),
		Items: []models.NewMaterialIssueItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(80)},
		},
	})
	if err != nil {
		t.Fatalf("CreateMaterialIssue: %v", err)
	}
	if !strings.HasPrefix(issue.IssueNumber, "MI-") {
		t.Fatalf("issue number = %q, want MI- prefix", issue.IssueNumber)
	}
	// issued at the pair's average cost
	if want := decimal.NewFromInt(350); !issue.Items[0].Rate.Equal(want) {
		t.Fatalf("issue rate = %s, want %s", issue.Items[0].Rate, want)
	}

	balance, err = models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if want := decimal.NewFromInt(20); !balance.Qty.Equal(want) {
		t.Fatalf("balance after issue = %s, want %s", balance.Qty, want)
	}

	// the newest ledger entry for the pair carries the full-history fold
	entries, _, err = models.ListStockTransaction(ctx, &models.StockTransactionFilter{
		MaterialId: &fx.material.ID,
	})
	if err != nil {
		t.Fatalf("ListStockTransaction: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(entries))
	}
	if !entries[0].BalanceAfter.Equal(balance.Qty) {
		t.Fatalf("newest balance_after = %s, want fold %s", entries[0].BalanceAfter, balance.Qty)
	}

	rows, err := models.GetCurrentInventory(ctx, &models.InventoryFilter{MaterialId: &fx.material.ID})
	if err != nil {
		t.Fatalf("GetCurrentInventory: %v", err)
	}
	if len(rows) != 1 || !rows[0].Qty.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("inventory rows = %+v, want single row qty 20", rows)
	}

	// one unit past the balance is rejected, the exact balance is not
	_, err = models.CreateMaterialIssue(ctx, &models.NewMaterialIssue{
		SiteId:    fx.site.ID,
		GodownId:  &fx.godown.ID,
		IssueDate: billDate.AddDate(0, 0, 2),
		Items: []models.NewMaterialIssueItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(21)},
		},
	})
	var short *models.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("error = %v, want InsufficientStockError for qty one past the balance", err)
	}
	if !short.Available.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("available = %s, want 20", short.Available)
	}

	if _, err = models.CreateMaterialIssue(ctx, &models.NewMaterialIssue{
		SiteId:    fx.site.ID,
		GodownId:  &fx.godown.ID,
		IssueDate: billDate.AddDate(0, 0, 2),
		Items: []models.NewMaterialIssueItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(20)},
		},
	}); err != nil {
		t.Fatalf("issuing the exact balance must succeed: %v", err)
	}
	balance, err = models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !balance.Qty.IsZero() {
		t.Fatalf("balance after exact issue = %s, want 0", balance.Qty)
	}

	issues, err := models.CheckLedgerDocumentConsistency(ctx)
	if err != nil {
		t.Fatalf("CheckLedgerDocumentConsistency: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("consistency issues = %+v, want none", issues)
	}
}

func TestStockFlow_OverIssueRejectedAtomically(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedFixtures(t, ctx, "B")
	billDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	sand, err := models.CreateMaterial(ctx, &models.NewMaterial{Name: "Sand B", Unit: "cft"})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}

	_, err = models.CreatePurchaseBill(ctx, &models.NewPurchaseBill{
		BillNumber:  "SUP-2001",
		CompanyId:   fx.company.ID,
		BillDate:    billDate,
		DeliveredTo: models.DeliveredToGodown,
		GodownId:    &fx.godown.ID,
		Items: []models.NewPurchaseBillItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(50), Rate: decimal.NewFromInt(350)},
			{MaterialId: sand.ID, Qty: decimal.NewFromInt(10), Rate: decimal.NewFromInt(800)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseBill: %v", err)
	}

	// second item exceeds stock; the whole issue must be rejected
	_, err = models.CreateMaterialIssue(ctx, &models.NewMaterialIssue{
		SiteId:    fx.site.ID,
		GodownId:  &fx.godown.ID,
		IssueDate: billDate.AddDate(0, 0, 1),
		Items: []models.NewMaterialIssueItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(30)},
			{MaterialId: sand.ID, Qty: decimal.NewFromInt(25)},
		},
	})
	if err == nil {
		t.Fatal("over-issue must fail")
	}
	var short *models.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("error = %v, want InsufficientStockError", err)
	}
	if short.MaterialId != sand.ID {
		t.Fatalf("short material = %d, want %d", short.MaterialId, sand.ID)
	}
	if !short.Available.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("available = %s, want 10", short.Available)
	}

	// first item must not have been consumed
	balance, err := models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if want := decimal.NewFromInt(50); !balance.Qty.Equal(want) {
		t.Fatalf("balance = %s, want %s (rejected issue must leave no entries)", balance.Qty, want)
	}

	var issueCount int64
	if err := config.GetDB().Model(&models.MaterialIssue{}).Count(&issueCount).Error; err != nil {
		t.Fatalf("count issues: %v", err)
	}
	if issueCount != 0 {
		t.Fatalf("material issues = %d, want 0", issueCount)
	}
}

func TestStockFlow_SiteDeliveryNeverRestsInStock(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedFixtures(t, ctx, "C")
	billDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := models.CreatePurchaseBill(ctx, &models.NewPurchaseBill{
		BillNumber:  "SUP-3001",
		CompanyId:   fx.company.ID,
		BillDate:    billDate,
		DeliveredTo: models.DeliveredToSite,
		SiteId:      &fx.site.ID,
		Items: []models.NewPurchaseBillItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(50), Rate: decimal.NewFromInt(350)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseBill: %v", err)
	}

	entries, total, err := models.ListStockTransaction(ctx, &models.StockTransactionFilter{
		MaterialId: &fx.material.ID,
	})
	if err != nil {
		t.Fatalf("ListStockTransaction: %v", err)
	}
	if total != 2 {
		t.Fatalf("ledger entries = %d, want paired IN and OUT", total)
	}
	for _, entry := range entries {
		if entry.GodownId != nil {
			t.Fatalf("site delivery must post on the direct pair, got godown %d", *entry.GodownId)
		}
		if entry.SiteId == nil || *entry.SiteId != fx.site.ID {
			t.Fatalf("entry must carry the site: %+v", entry)
		}
	}

	rows, err := models.GetCurrentInventory(ctx, &models.InventoryFilter{MaterialId: &fx.material.ID})
	if err != nil {
		t.Fatalf("GetCurrentInventory: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("inventory rows = %+v, want none for a pass-through delivery", rows)
	}

	// the site still shows up in the site-wise report
	reports, err := models.SiteWiseReportQuery(ctx, &fx.site.ID, nil, nil)
	if err != nil {
		t.Fatalf("SiteWiseReportQuery: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Materials) != 1 {
		t.Fatalf("site-wise report = %+v, want one site with one material", reports)
	}
	if !reports[0].Materials[0].Qty.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("site-wise qty = %s, want 50", reports[0].Materials[0].Qty)
	}
}

func TestStockFlow_DeleteBillSurfacesNegativeAndRebuilds(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedFixtures(t, ctx, "D")
	billDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	bill, err := models.CreatePurchaseBill(ctx, &models.NewPurchaseBill{
		BillNumber:  "SUP-4001",
		CompanyId:   fx.company.ID,
		BillDate:    billDate,
		DeliveredTo: models.DeliveredToGodown,
		GodownId:    &fx.godown.ID,
		Items: []models.NewPurchaseBillItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(100), Rate: decimal.NewFromInt(350)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseBill: %v", err)
	}

	_, err = models.CreateMaterialIssue(ctx, &models.NewMaterialIssue{
		SiteId:    fx.site.ID,
		GodownId:  &fx.godown.ID,
		IssueDate: billDate.AddDate(0, 0, 1),
		Items: []models.NewMaterialIssueItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("CreateMaterialIssue: %v", err)
	}

	if _, err := models.DeletePurchaseBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeletePurchaseBill: %v", err)
	}

	balance, err := models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if want := decimal.NewFromInt(-60); !balance.Qty.Equal(want) {
		t.Fatalf("balance = %s, want %s (negatives are surfaced, not clamped)", balance.Qty, want)
	}

	if err := models.RebuildStockBalances(ctx); err != nil {
		t.Fatalf("RebuildStockBalances: %v", err)
	}
	var cached models.StockBalance
	if err := config.GetDB().Where("material_id = ? AND godown_id = ?", fx.material.ID, fx.godown.ID).
		First(&cached).Error; err != nil {
		t.Fatalf("load rebuilt balance: %v", err)
	}
	if !cached.CurrentQty.Equal(balance.Qty) {
		t.Fatalf("rebuilt cache %s != ledger fold %s", cached.CurrentQty, balance.Qty)
	}

	// the surviving OUT entry was stamped against the deleted receipt; the
	// rebuild must restamp it with the running total of what remains
	entries, _, err := models.ListStockTransaction(ctx, &models.StockTransactionFilter{
		MaterialId: &fx.material.ID,
	})
	if err != nil {
		t.Fatalf("ListStockTransaction: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want the surviving issue entry only", len(entries))
	}
	if want := decimal.NewFromInt(-60); !entries[0].BalanceAfter.Equal(want) {
		t.Fatalf("restamped balance_after = %s, want %s", entries[0].BalanceAfter, want)
	}
}

func TestStockFlow_IdempotencyKeyRejectsReplay(t *testing.T) {
	ctx := setupIntegration(t)
	fx := seedFixtures(t, ctx, "E")
	billDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	key := "req-abc-123"
	input := &models.NewPurchaseBill{
		BillNumber:  "SUP-5001",
		CompanyId:   fx.company.ID,
		BillDate:    billDate,
		DeliveredTo: models.DeliveredToGodown,
		GodownId:    &fx.godown.ID,
		Items: []models.NewPurchaseBillItem{
			{MaterialId: fx.material.ID, Qty: decimal.NewFromInt(10), Rate: decimal.NewFromInt(350)},
		},
		IdempotencyKey: &key,
	}
	if _, err := models.CreatePurchaseBill(ctx, input); err != nil {
		t.Fatalf("CreatePurchaseBill: %v", err)
	}

	retry := *input
	retry.BillNumber = "SUP-5002"
	_, err := models.CreatePurchaseBill(ctx, &retry)
	if err == nil {
		t.Fatal("replayed idempotency key must be rejected")
	}
	if !strings.Contains(err.Error(), "duplicate request") {
		t.Fatalf("error = %v, want duplicate request", err)
	}

	balance, err := models.GetBalance(ctx, fx.material.ID, &fx.godown.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if want := decimal.NewFromInt(10); !balance.Qty.Equal(want) {
		t.Fatalf("balance = %s, want %s (replay must not post stock)", balance.Qty, want)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("matstock-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("matstock-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=matstock_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}

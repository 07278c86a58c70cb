package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
)

// setupIntegration boots throwaway mysql+redis containers and connects the
// globals against them. Callers get a context carrying a user identity.
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
	t.Setenv("DB_NAME", "facility_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	return ctx
}

func seedReceivingFixtures(t *testing.T, ctx context.Context) (*models.Company, *models.Item, *models.Warehouse, *models.Employee) {
	t.Helper()

	supplier, err := models.CreateCompany(ctx, &models.NewCompany{
		Code: "SUP-001",
		Name: "Acme Supplies",
		Type: models.CompanyTypeSupplier,
	})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	item, err := models.CreateItem(ctx, &models.NewItem{
		Code:          "FLT-001",
		Name:          "HVAC Filter",
		UnitOfMeasure: "pcs",
		Cost:          decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{
		Name: "Central Store",
	})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	receiver, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Code: "EMP-001",
		Name: "Store Keeper",
	})
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}
	return supplier, item, warehouse, receiver
}

func TestReceiveGoodsLifecycleAndOverDeliveryRollback(t *testing.T) {
	ctx := setupIntegration(t)
	supplier, item, warehouse, receiver := seedReceivingFixtures(t, ctx)
	db := config.GetDB()

	order, err := models.CreatePurchaseOrder(ctx, &models.NewPurchaseOrder{
		SupplierId: supplier.ID,
		Items: []*models.NewPurchaseOrderItem{
			{ItemId: item.ID, Qty: decimal.NewFromInt(10), Cost: decimal.NewFromInt(25)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if order.Status != models.PurchaseOrderStatusDraft {
		t.Fatalf("new order status = %s; want DRAFT", order.Status)
	}

	// a missing order is NotFound, not a generic failure
	missing := &models.NewGoodsReceipt{
		WarehouseId: warehouse.ID,
		ReceiverId:  receiver.ID,
		CompanyId:   supplier.ID,
		Items: []*models.NewGoodsReceiptItem{
			{ItemId: item.ID, Qty: decimal.NewFromInt(1), Cost: decimal.NewFromInt(25)},
		},
	}
	if _, err := models.ReceiveGoods(ctx, order.ID+1000, missing); utils.KindOf(err) != utils.ErrorKindNotFound {
		t.Fatalf("receive on missing order: expected NotFound; got %v", err)
	}

	// draft orders cannot receive
	receipt := &models.NewGoodsReceipt{
		WarehouseId: warehouse.ID,
		ReceiverId:  receiver.ID,
		CompanyId:   supplier.ID,
		Items: []*models.NewGoodsReceiptItem{
			{ItemId: item.ID, Qty: decimal.NewFromInt(6), Cost: decimal.NewFromInt(25)},
		},
	}
	if _, err := models.ReceiveGoods(ctx, order.ID, receipt); utils.KindOf(err) != utils.ErrorKindInvalidState {
		t.Fatalf("receive on draft: expected InvalidState; got %v", err)
	}

	if _, err := models.IssuePurchaseOrder(ctx, order.ID); err != nil {
		t.Fatalf("IssuePurchaseOrder: %v", err)
	}

	// partial receipt of 6 out of 10
	if _, err := models.ReceiveGoods(ctx, order.ID, receipt); err != nil {
		t.Fatalf("first receipt: %v", err)
	}
	after, err := models.GetPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPurchaseOrder: %v", err)
	}
	if after.Status != models.PurchaseOrderStatusPartiallyReceived {
		t.Fatalf("after partial receipt: status = %s; want PARTIALLY_RECEIVED", after.Status)
	}
	if after.TotalAmount.Cmp(decimal.NewFromInt(150)) != 0 {
		t.Fatalf("after partial receipt: total_amount = %s; want 150", after.TotalAmount)
	}
	onHand, err := models.CurrentStock(ctx, item.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("CurrentStock: %v", err)
	}
	if onHand.Cmp(decimal.NewFromInt(6)) != 0 {
		t.Fatalf("on hand after partial receipt = %s; want 6", onHand)
	}

	var movementsBefore int64
	if err := db.WithContext(ctx).Model(&models.StockMovement{}).Count(&movementsBefore).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	var receiptsBefore int64
	if err := db.WithContext(ctx).Model(&models.GoodsReceipt{}).Count(&receiptsBefore).Error; err != nil {
		t.Fatalf("count receipts: %v", err)
	}

	// 5 against a remaining of 4 must reject and leave no trace
	over := &models.NewGoodsReceipt{
		WarehouseId: warehouse.ID,
		ReceiverId:  receiver.ID,
		CompanyId:   supplier.ID,
		Items: []*models.NewGoodsReceiptItem{
			{ItemId: item.ID, Qty: decimal.NewFromInt(5), Cost: decimal.NewFromInt(25)},
		},
	}
	if _, err := models.ReceiveGoods(ctx, order.ID, over); utils.KindOf(err) != utils.ErrorKindOverDelivery {
		t.Fatalf("over-delivery: expected OverDelivery; got %v", err)
	}

	after, err = models.GetPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPurchaseOrder after rollback: %v", err)
	}
	if after.Status != models.PurchaseOrderStatusPartiallyReceived {
		t.Fatalf("rollback: status = %s; want PARTIALLY_RECEIVED", after.Status)
	}
	if after.TotalAmount.Cmp(decimal.NewFromInt(150)) != 0 {
		t.Fatalf("rollback: total_amount = %s; want 150", after.TotalAmount)
	}
	onHand, _ = models.CurrentStock(ctx, item.ID, warehouse.ID)
	if onHand.Cmp(decimal.NewFromInt(6)) != 0 {
		t.Fatalf("rollback: on hand = %s; want 6", onHand)
	}
	var movementsAfter int64
	if err := db.WithContext(ctx).Model(&models.StockMovement{}).Count(&movementsAfter).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movementsAfter != movementsBefore {
		t.Fatalf("rollback: movement count %d -> %d; ledger must be untouched", movementsBefore, movementsAfter)
	}
	var receiptsAfter int64
	if err := db.WithContext(ctx).Model(&models.GoodsReceipt{}).Count(&receiptsAfter).Error; err != nil {
		t.Fatalf("count receipts: %v", err)
	}
	if receiptsAfter != receiptsBefore {
		t.Fatalf("rollback: receipt count %d -> %d; no receipt row expected", receiptsBefore, receiptsAfter)
	}

	// the exact remainder completes the order
	final := &models.NewGoodsReceipt{
		WarehouseId: warehouse.ID,
		ReceiverId:  receiver.ID,
		CompanyId:   supplier.ID,
		Items: []*models.NewGoodsReceiptItem{
			{ItemId: item.ID, Qty: decimal.NewFromInt(4), Cost: decimal.NewFromInt(25)},
		},
	}
	if _, err := models.ReceiveGoods(ctx, order.ID, final); err != nil {
		t.Fatalf("final receipt: %v", err)
	}
	after, err = models.GetPurchaseOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetPurchaseOrder final: %v", err)
	}
	if after.Status != models.PurchaseOrderStatusReceived {
		t.Fatalf("final: status = %s; want RECEIVED", after.Status)
	}
	if after.TotalAmount.Cmp(decimal.NewFromInt(250)) != 0 {
		t.Fatalf("final: total_amount = %s; want 250", after.TotalAmount)
	}
	onHand, _ = models.CurrentStock(ctx, item.ID, warehouse.ID)
	if onHand.Cmp(decimal.NewFromInt(10)) != 0 {
		t.Fatalf("final: on hand = %s; want 10", onHand)
	}

	// fully received orders reject further receipts
	if _, err := models.ReceiveGoods(ctx, order.ID, final); utils.KindOf(err) != utils.ErrorKindInvalidState {
		t.Fatalf("receive on RECEIVED: expected InvalidState; got %v", err)
	}

	// unloading more than on hand appends nothing
	if err := db.WithContext(ctx).Model(&models.StockMovement{}).Count(&movementsBefore).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	_, err = models.CreateManualStockMovement(ctx, &models.NewStockMovement{
		Type:        models.StockMovementTypeUnload,
		ItemId:      item.ID,
		WarehouseId: warehouse.ID,
		Qty:         decimal.NewFromInt(11),
	})
	if utils.KindOf(err) != utils.ErrorKindInsufficientStock {
		t.Fatalf("manual unload over on-hand: expected InsufficientStock; got %v", err)
	}
	if err := db.WithContext(ctx).Model(&models.StockMovement{}).Count(&movementsAfter).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if movementsAfter != movementsBefore {
		t.Fatalf("insufficient unload: movement count %d -> %d; ledger must be untouched", movementsBefore, movementsAfter)
	}
	onHand, _ = models.CurrentStock(ctx, item.ID, warehouse.ID)
	if onHand.Cmp(decimal.NewFromInt(10)) != 0 {
		t.Fatalf("insufficient unload: on hand = %s; want 10", onHand)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("facility-test-redis-%d", time.Now().UnixNano())
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
	// wait until ready
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
	name := fmt.Sprintf("facility-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=facility_test",
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
	// wait until ready
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
	// Example: "127.0.0.1:49154\n"
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

package workflow_test

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
	"bitbucket.org/mmdatafocus/facility_backend/workflow"
	"github.com/sirupsen/logrus"
)

func TestSweepFiresDueTemplatesAndReschedules(t *testing.T) {
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
	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	if _, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Code: models.SystemEmployeeCode,
		Name: "System",
		Type: models.EmployeeTypeSystem,
	}); err != nil {
		t.Fatalf("seed system employee: %v", err)
	}

	overdue := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	daily := models.FrequencyDaily

	due, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Monthly pump inspection",
		Frequency:   &daily,
		NextRun:     &overdue,
	})
	if err != nil {
		t.Fatalf("create due template: %v", err)
	}
	notDue, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Quarterly belt check",
		Frequency:   &daily,
		NextRun:     &future,
	})
	if err != nil {
		t.Fatalf("create future template: %v", err)
	}
	inactive, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Retired routine",
		Frequency:   &daily,
		NextRun:     &overdue,
	})
	if err != nil {
		t.Fatalf("create inactive template: %v", err)
	}
	if _, err := models.ToggleActivePreventive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("deactivate template: %v", err)
	}

	scheduler := workflow.NewPreventiveScheduler(db, logrus.New())
	scheduler.Sweep(ctx)

	countFor := func(preventiveId int) int64 {
		t.Helper()
		var count int64
		err := db.WithContext(ctx).Model(&models.Maintenance{}).
			Where("prev_maintenance_config_id = ?", preventiveId).
			Count(&count).Error
		if err != nil {
			t.Fatalf("count spawned: %v", err)
		}
		return count
	}

	if got := countFor(due.ID); got != 1 {
		t.Fatalf("due template: spawned %d; want 1", got)
	}
	if got := countFor(notDue.ID); got != 0 {
		t.Fatalf("future template: spawned %d; want 0", got)
	}
	if got := countFor(inactive.ID); got != 0 {
		t.Fatalf("inactive template: spawned %d; want 0", got)
	}

	var spawned models.Maintenance
	err = db.WithContext(ctx).
		Where("prev_maintenance_config_id = ?", due.ID).
		First(&spawned).Error
	if err != nil {
		t.Fatalf("load spawned: %v", err)
	}
	if spawned.Type != models.MaintenanceTypePreventive {
		t.Fatalf("spawned type = %s; want PREVENTIVE", spawned.Type)
	}
	if spawned.Status != models.ProcessStatusPending {
		t.Fatalf("spawned status = %s; want PENDING", spawned.Status)
	}
	if spawned.StartDate == nil || spawned.EndDate == nil {
		t.Fatalf("spawned window not set: start=%v end=%v", spawned.StartDate, spawned.EndDate)
	}

	// next_run must have moved past now, so the next tick cannot double-fire
	var rescheduled models.Preventive
	if err := db.WithContext(ctx).First(&rescheduled, due.ID).Error; err != nil {
		t.Fatalf("reload template: %v", err)
	}
	if rescheduled.NextRun == nil || !rescheduled.NextRun.After(time.Now()) {
		t.Fatalf("next_run = %v; want a future time", rescheduled.NextRun)
	}

	scheduler.Sweep(ctx)
	if got := countFor(due.ID); got != 1 {
		t.Fatalf("second sweep: spawned %d; want still 1", got)
	}
}

func TestSweepIsolatesFailingTemplate(t *testing.T) {
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
	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	sysEmp, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Code: models.SystemEmployeeCode,
		Name: "System",
		Type: models.EmployeeTypeSystem,
	})
	if err != nil {
		t.Fatalf("seed system employee: %v", err)
	}

	daily := models.FrequencyDaily
	overdueFirst := time.Now().Add(-2 * time.Hour)
	overdueSecond := time.Now().Add(-time.Hour)

	failing, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Chiller coil cleaning",
		Frequency:   &daily,
		NextRun:     &overdueFirst,
	})
	if err != nil {
		t.Fatalf("create failing template: %v", err)
	}
	healthy, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Generator load test",
		Frequency:   &daily,
		NextRun:     &overdueSecond,
	})
	if err != nil {
		t.Fatalf("create healthy template: %v", err)
	}

	// a stray work order already holds the code the next spawn will draw, so
	// the first template's spawn transaction fails on the code unique index
	stray := models.Maintenance{
		SequenceNo:  0,
		Code:        "WO-000001",
		Type:        models.MaintenanceTypeCorrective,
		Description: "imported legacy work order",
		Priority:    models.PriorityMedium,
		Status:      models.ProcessStatusPending,
		RequesterId: sysEmp.ID,
	}
	if err := db.WithContext(ctx).Create(&stray).Error; err != nil {
		t.Fatalf("seed stray work order: %v", err)
	}

	countFor := func(preventiveId int) int64 {
		t.Helper()
		var count int64
		err := db.WithContext(ctx).Model(&models.Maintenance{}).
			Where("prev_maintenance_config_id = ?", preventiveId).
			Count(&count).Error
		if err != nil {
			t.Fatalf("count spawned: %v", err)
		}
		return count
	}

	scheduler := workflow.NewPreventiveScheduler(db, logrus.New())
	scheduler.Sweep(ctx)

	// the failing template spawned nothing, the sibling still fired
	if got := countFor(failing.ID); got != 0 {
		t.Fatalf("failing template: spawned %d; want 0", got)
	}
	if got := countFor(healthy.ID); got != 1 {
		t.Fatalf("healthy template: spawned %d; want 1", got)
	}

	// the failed spawn rolled back with its reschedule: next_run stays due
	var reloaded models.Preventive
	if err := db.WithContext(ctx).First(&reloaded, failing.ID).Error; err != nil {
		t.Fatalf("reload failing template: %v", err)
	}
	if reloaded.NextRun == nil || reloaded.NextRun.After(time.Now()) {
		t.Fatalf("failing template next_run = %v; want still due", reloaded.NextRun)
	}

	// once the collision is gone the next sweep recovers it, and the sibling
	// does not double-fire
	if err := db.WithContext(ctx).Delete(&stray).Error; err != nil {
		t.Fatalf("remove stray work order: %v", err)
	}
	scheduler.Sweep(ctx)
	if got := countFor(failing.ID); got != 1 {
		t.Fatalf("after recovery: failing template spawned %d; want 1", got)
	}
	if got := countFor(healthy.ID); got != 1 {
		t.Fatalf("after recovery: healthy template spawned %d; want still 1", got)
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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/entity"
	"github.com/ObsidianSy/ERP-Fabricar-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_fabricar"
	JWTSecret  = "fabricar-jwt-secret-key-2025"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test
// schema. Each test gets an isolated schema that is cleaned up after
// the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "fabricar")
	password := getEnv("DB_PASSWORD", "fabricar123")
	dbname := getEnv("DB_NAME", "fabricar")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing.
func GenerateTestToken(userID, name, email string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"iss":   "fabricar",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default test operator.
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Operator", "operator@test.com")
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedRawMaterial creates a raw material with an opening balance.
func SeedRawMaterial(t *testing.T, db *gorm.DB, sku, name, unit string, quantity float64) *entity.RawMaterial {
	t.Helper()
	material := &entity.RawMaterial{
		ID:       uuid.New().String(),
		SKU:      sku,
		Name:     name,
		Unit:     unit,
		Quantity: quantity,
	}
	if err := db.Create(material).Error; err != nil {
		t.Fatalf("Failed to seed raw material %s: %v", sku, err)
	}
	return material
}

// RecipeLine is one raw-material line when seeding a product.
type RecipeLine struct {
	RawSKU     string
	QtyPerUnit float64
	Unit       string
}

// SeedProduct creates a finished product with the given recipe.
func SeedProduct(t *testing.T, db *gorm.DB, sku, name string, recipe []RecipeLine) *entity.Product {
	t.Helper()
	product := &entity.Product{
		ID:     uuid.New().String(),
		SKU:    sku,
		Name:   name,
		Status: entity.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to seed product %s: %v", sku, err)
	}
	for i, line := range recipe {
		unit := line.Unit
		if unit == "" {
			unit = entity.UnitPiece
		}
		item := &entity.RecipeItem{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			RawSKU:     line.RawSKU,
			QtyPerUnit: line.QtyPerUnit,
			Unit:       unit,
			Sequence:   i,
		}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("Failed to seed recipe line %s: %v", line.RawSKU, err)
		}
		product.Recipe = append(product.Recipe, *item)
	}
	return product
}

// SeedKit creates a kit product with the given component SKUs, one unit
// of each.
func SeedKit(t *testing.T, db *gorm.DB, sku, name string, componentSKUs []string) *entity.Product {
	t.Helper()
	kit := &entity.Product{
		ID:     uuid.New().String(),
		SKU:    sku,
		Name:   name,
		Status: entity.ProductStatusActive,
		IsKit:  true,
	}
	if err := db.Create(kit).Error; err != nil {
		t.Fatalf("Failed to seed kit %s: %v", sku, err)
	}
	for i, componentSKU := range componentSKUs {
		component := &entity.KitComponent{
			ID:           uuid.New().String(),
			ProductID:    kit.ID,
			ComponentSKU: componentSKU,
			QtyPerKit:    1,
			Sequence:     i,
		}
		if err := db.Create(component).Error; err != nil {
			t.Fatalf("Failed to seed kit component %s: %v", componentSKU, err)
		}
		kit.Components = append(kit.Components, *component)
	}
	return kit
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

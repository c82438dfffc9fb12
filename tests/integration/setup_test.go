package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"divvy/internal/handlers"
	"divvy/internal/logger"
	"divvy/internal/middleware"
	"divvy/internal/models"
	"divvy/internal/services"
	"divvy/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Group{},
		&models.Membership{},
		&models.Expense{},
		&models.Split{},
		&models.Settlement{},
		&models.RecurringExpense{},
		&models.RecurringSplit{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	balanceService := services.NewBalanceService(db)
	groupService := services.NewGroupService(db, balanceService)
	expenseService := services.NewExpenseService(db)
	settlementService := services.NewSettlementService(db)
	recurringService := services.NewRecurringService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService, balanceService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	v1.POST("/users", authHandler.Register)
	v1.POST("/login/access-token", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	users := protected.Group("/users")
	users.GET("/me", authHandler.GetMe)
	users.GET("/search", authHandler.SearchUsers)

	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("", groupHandler.GetUserGroups)
	groups.GET("/summary", groupHandler.GetSummary)
	groups.GET("/:id", groupHandler.GetGroupByID)
	groups.GET("/:id/balances", groupHandler.GetGroupBalances)
	groups.POST("/:id/members/:userId", groupHandler.AddMember)
	groups.DELETE("/:id/members/:userId", groupHandler.RemoveMember)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.GET("/group/:groupId", expenseHandler.GetGroupExpenses)

	settlements := protected.Group("/settlements")
	settlements.POST("", settlementHandler.RecordSettlement)
	settlements.GET("/group/:groupId", settlementHandler.GetGroupSettlements)

	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("/group/:groupId", recurringHandler.GetGroupRecurring)
	recurring.PUT("/:id/status", recurringHandler.SetStatus)
	recurring.POST("/trigger", recurringHandler.Trigger)

	return &testApp{DB: db, Router: router}
}

// request makes a JSON HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a user, logs them in via the form-encoded token
// endpoint, and returns the bearer token and user ID.
func (app *testApp) registerUser(t *testing.T, username string) (token string, userID float64) {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"email":"%s@test.com","password":"password123"}`, username, username)
	rec := app.request("POST", "/api/v1/users", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	userID = parseJSON(t, rec)["id"].(float64)

	form := url.Values{"username": {username}, "password": {"password123"}}
	req := httptest.NewRequest("POST", "/api/v1/login/access-token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	app.Router.ServeHTTP(loginRec, req)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginRec.Code, loginRec.Body.String())
	}
	token = parseJSON(t, loginRec)["access_token"].(string)
	return token, userID
}

// createGroup creates a group and returns its ID.
func (app *testApp) createGroup(t *testing.T, token, name string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/groups", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(float64)
}

// addMember adds a user to a group.
func (app *testApp) addMember(t *testing.T, token string, groupID, userID float64) {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/groups/%.0f/members/%.0f", groupID, userID), "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member failed: %d %s", rec.Code, rec.Body.String())
	}
}

// groupBalances fetches the balances endpoint and returns balances by user ID
// plus the suggested transactions.
func (app *testApp) groupBalances(t *testing.T, token string, groupID float64) (map[float64]float64, []interface{}) {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/groups/%.0f/balances", groupID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get balances failed: %d %s", rec.Code, rec.Body.String())
	}
	body := parseJSON(t, rec)

	byUser := make(map[float64]float64)
	for _, item := range body["balances"].([]interface{}) {
		mb := item.(map[string]interface{})
		byUser[mb["user_id"].(float64)] = mb["balance"].(float64)
	}
	suggested, _ := body["suggested_transactions"].([]interface{})
	return byUser, suggested
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/hash"
	"github.com/sweetshop/backend/internal/middleware/auth"
	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	A      *AuthHandler
	S      *SweetHandler
	Gate   *auth.Gate
	Tokens *token.Service
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// One connection: each pooled connection would otherwise get its
	// own private :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Sweet{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	tokens := token.NewService([]byte("test-secret"))

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		A:      &AuthHandler{DB: db, Tokens: tokens},
		S:      &SweetHandler{DB: db},
		Gate:   &auth.Gate{DB: db, Tokens: tokens},
		Tokens: tokens,
	}
}

func (env *testEnv) doJSONRequest(method, target string, payload interface{}, bearer string) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)

	return rec, c
}

func (env *testEnv) createUser(email, password string, isAdmin bool) (models.User, string) {
	env.T.Helper()

	passwordHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{Email: email, PasswordHash: passwordHash, IsAdmin: isAdmin}
	require.NoError(env.T, env.DB.Create(&user).Error)

	bearer, err := env.Tokens.Issue(email)
	require.NoError(env.T, err)

	return user, bearer
}

func (env *testEnv) createSweet(name, category string, price float64, quantity int) models.Sweet {
	env.T.Helper()

	sweet := models.Sweet{Name: name, Category: category, Price: price, Quantity: quantity}
	require.NoError(env.T, env.DB.Create(&sweet).Error)
	return sweet
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
	return he
}

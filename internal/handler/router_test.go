package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

type tokenValidatorStub map[string]*models.JWTClaims

func (s tokenValidatorStub) Validate(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doc := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(doc, []byte("note"), 0o600))

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Handlers{
		Leaves:           NewLeaveHandler(&leaveServiceMock{app: sampleApplication(models.LeaveStatusPending)}, &adjustmentsMock{}, &documentLinkerMock{}),
		Balances:         NewBalanceHandler(&balanceServiceMock{}),
		ClassAdjustments: NewClassAdjustmentHandler(&classAdjustmentServiceMock{}),
		Notifications:    NewNotificationHandler(&notificationServiceMock{}),
		Directory:        NewDirectoryHandler(&directoryServiceMock{}),
		Reports:          NewReportHandler(&reportServiceMock{}),
		Documents:        NewDocumentHandler(&documentOpenerMock{path: doc, name: "note.txt"}),
	}, tokenValidatorStub{
		"faculty": {UserID: "fac-1", Role: models.RoleFaculty, DeptID: "cse"},
		"hod":     {UserID: "hod-1", Role: models.RoleHOD, DeptID: "cse"},
		"admin":   {UserID: "adm-1", Role: models.RoleCentralAdmin},
	})
	return router
}

func TestRoutesEnforceAuthentication(t *testing.T) {
	router := buildTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"missing token", http.MethodGet, "/api/v1/leaves/mine", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/v1/leaves/mine", "forged", http.StatusUnauthorized},
		{"own applications", http.MethodGet, "/api/v1/leaves/mine", "faculty", http.StatusOK},
		{"static route beside param", http.MethodGet, "/api/v1/leaves/working-days?start=2024-06-03&end=2024-06-07", "faculty", http.StatusOK},
		{"faculty cannot list pending", http.MethodGet, "/api/v1/leaves/pending", "faculty", http.StatusForbidden},
		{"hod lists pending", http.MethodGet, "/api/v1/leaves/pending", "hod", http.StatusOK},
		{"faculty cannot decide", http.MethodPost, "/api/v1/leaves/app-1/decision", "faculty", http.StatusForbidden},
		{"faculty cannot read reports", http.MethodGet, "/api/v1/reports/leaves", "faculty", http.StatusForbidden},
		{"admin reads reports", http.MethodGet, "/api/v1/reports/leaves", "admin", http.StatusOK},
		{"faculty cannot read summary", http.MethodGet, "/api/v1/departments/summary", "faculty", http.StatusForbidden},
		{"document link needs no bearer", http.MethodGet, "/api/v1/documents/signed", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

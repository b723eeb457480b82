package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/qrattend-backend/internal/model"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindNotBlank(t *testing.T) {
	var req model.StudentLoginRequest
	fields := bindBody(t, `{"id":"   ","password":"arin"}`, &req)
	if fields == nil {
		t.Fatal("blank id accepted")
	}
	if msg := fields["id"]; msg != "id must not be blank" {
		t.Errorf("id message = %q", msg)
	}
}

func TestBindRequired(t *testing.T) {
	var req model.TeacherLoginRequest
	fields := bindBody(t, `{"login":"DMS_teacher"}`, &req)
	if _, ok := fields["password"]; !ok {
		t.Errorf("fields = %v, want password error", fields)
	}
}

func TestBindValid(t *testing.T) {
	var req model.StudentLoginRequest
	if fields := bindBody(t, `{"id":"11","password":"arin"}`, &req); fields != nil {
		t.Fatalf("fields = %v", fields)
	}
	if req.ID != "11" || req.Password != "arin" {
		t.Errorf("req = %+v", req)
	}
}

func TestBindSyntaxError(t *testing.T) {
	var req model.ScanRequest
	fields := bindBody(t, `{"code":`, &req)
	if _, ok := fields["detail"]; !ok {
		t.Errorf("fields = %v, want detail", fields)
	}
}

func TestBindOptionalEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Setup()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	var req model.OpenSessionRequest
	if fields := BindOptional(c, &req); fields != nil {
		t.Fatalf("fields = %v", fields)
	}
	if req.DurationMinutes != 0 {
		t.Errorf("duration = %d", req.DurationMinutes)
	}
}

package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/service/taxonomy"
	"github.com/Xushengqwer/keenmind_auth/service/userList"
	"github.com/Xushengqwer/keenmind_auth/service/userManage"
	"github.com/Xushengqwer/keenmind_auth/testkit"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// newAdminEngine 只挂控制器，守卫由 middleware 包单独测试
func newAdminEngine(t *testing.T) (*gin.Engine, adapter.Adapter) {
	t.Helper()
	require.NoError(t, utils.RegisterCustomValidators())

	db := testkit.NewDB(t)
	_, client := testkit.NewRedis(t)
	logger := testkit.NewLogger(t)
	ad := adapter.NewAdapter(db, rdb.NewUserRepository(db), rdb.NewAccountRepository(db), rdb.NewSessionRepository(db),
		rdb.NewVerificationTokenRepository(db), redis.NewSessionCache(client), metrics.Nop{}, logger, time.Minute)

	engine := gin.New()
	group := engine.Group("/admin/api")
	NewUserListQueryController(userList.NewUserListQueryService(rdb.NewUserQuery(db), logger), logger).RegisterRoutes(group)
	NewUserManageController(userManage.NewUserManageService(ad, logger), logger).RegisterRoutes(group)
	NewTaxonomyController(taxonomy.NewTaxonomyService(rdb.NewDomainRepository(db), rdb.NewTopicRepository(db), logger), logger).RegisterRoutes(group)
	return engine, ad
}

func serve(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestLockUnlockHandlers(t *testing.T) {
	engine, ad := newAdminEngine(t)
	u, err := ad.CreateUser(context.Background(), dto.AdapterUser{Email: testkit.StrPtr("lock@example.com")})
	require.NoError(t, err)

	w := serve(engine, http.MethodPost, "/admin/api/users/abc/lock", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid user id"}`, w.Body.String())

	w = serve(engine, http.MethodPost, "/admin/api/users/999999/lock", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to lock user"}`, w.Body.String())

	w = serve(engine, http.MethodPost, "/admin/api/users/999999/unlock", "")
	assert.JSONEq(t, `{"error":"Failed to unlock user"}`, w.Body.String())

	w = serve(engine, http.MethodPost, "/admin/api/users/"+u.ID.String()+"/lock", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = serve(engine, http.MethodGet, "/admin/api/users?status=LOCKED", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, u.ID.String(), list.Items[0].ID, "ID 以字符串输出")
	assert.Equal(t, string(enums.UserStatusLocked), list.Items[0].Status)

	w = serve(engine, http.MethodPost, "/admin/api/users/"+u.ID.String()+"/unlock", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUsersRejectsBadStatus(t *testing.T) {
	engine, _ := newAdminEngine(t)
	w := serve(engine, http.MethodGet, "/admin/api/users?status=SLEEPING", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(engine, http.MethodGet, "/admin/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}

func TestDomainHandlers(t *testing.T) {
	engine, _ := newAdminEngine(t)

	w := serve(engine, http.MethodPost, "/admin/api/domains", `{"slug":"math","name_zh":"数学","name_en":"Math","sort_order":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "math", created.Slug)

	w = serve(engine, http.MethodPost, "/admin/api/domains", `{"slug":"math","name_zh":"数学","name_en":"Math"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"slug already exists"}`, w.Body.String())

	w = serve(engine, http.MethodPost, "/admin/api/domains", `{"slug":"Bad Slug","name_zh":"x","name_en":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(engine, http.MethodGet, "/admin/api/domains?search=mat", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data  []json.RawMessage `json:"data"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Total)

	w = serve(engine, http.MethodPut, "/admin/api/knowledge/domains/"+created.ID, `{"name_en":"Mathematics"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name_en":"Mathematics"`)
	assert.Contains(t, w.Body.String(), `"name_zh":"数学"`)

	w = serve(engine, http.MethodGet, "/admin/api/knowledge/domains/x1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(engine, http.MethodDelete, "/admin/api/knowledge/domains/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = serve(engine, http.MethodGet, "/admin/api/knowledge/domains/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTopicHandlers(t *testing.T) {
	engine, _ := newAdminEngine(t)

	w := serve(engine, http.MethodPost, "/admin/api/knowledge/topics", `{"domain_id":"12345","slug":"graphs","name_zh":"图","name_en":"Graphs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "引用不存在的领域")

	w = serve(engine, http.MethodPost, "/admin/api/knowledge/topics", `{"slug":"graphs","name_zh":"图","name_en":"Graphs"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = serve(engine, http.MethodGet, "/admin/api/knowledge/topics?slug=graphs&search=nothing-matches", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = serve(engine, http.MethodGet, "/admin/api/knowledge/topics/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"graphs"`)

	w = serve(engine, http.MethodPut, "/admin/api/knowledge/topics/"+created.ID, `{"slug":"Not Valid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(engine, http.MethodDelete, "/admin/api/knowledge/topics/"+created.ID, "")
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	w = serve(engine, http.MethodDelete, "/admin/api/knowledge/topics/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

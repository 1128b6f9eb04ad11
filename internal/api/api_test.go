package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"kalita/internal/dsl"
	"kalita/internal/entry"
	"kalita/internal/lang"
	"kalita/internal/store"
)

const testDSL = `module core

entity Group:
  title: string required

entity Tag:
  name: string required unique

entity User:
  name: string required
  email: string unique
  status: enum[active, banned] default=active
  note: string
  group: ref[Group]
  tags: array[ref[Tag]]

infolist UserCard for User:
  name: text copyable
  status: badge colors=active:success|banned:danger
  group.title: text label=Group
  created_at: text
  tags: repeatable
    name: badge

infolist NoteCard for User:
  note: text date
`

type env struct {
	t      *testing.T
	srv    *Server
	router *gin.Engine
	dir    string
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dsl", "core", "app.dsl"), testDSL)
	writeFile(t, filepath.Join(dir, "lang", "en.yaml"), "labels:\n  created_at: Created\n")
	writeFile(t, filepath.Join(dir, "lang", "ar.yaml"), "labels:\n  created_at: تاريخ الإنشاء\n")

	model, err := dsl.LoadAll(filepath.Join(dir, "dsl"))
	require.NoError(t, err)
	catalogs, err := lang.LoadDir(filepath.Join(dir, "lang"))
	require.NoError(t, err)

	srv := &Server{
		Registry: NewRegistry(model, catalogs),
		Store:    store.NewMemory(),
		AssetURL: entry.AssetBase("https://cdn.test"),
		DSLDir:   filepath.Join(dir, "dsl"),
		LangDir:  filepath.Join(dir, "lang"),
	}
	return &env{t: t, srv: srv, router: srv.Router(), dir: dir}
}

func (e *env) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) create(path, body string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, path, body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "id").String()
}

func TestMeta(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/api/meta", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `["Group","Tag","User"]`, gjson.Get(w.Body.String(), "#.entity").Raw)

	w = e.do(http.MethodGet, "/api/meta/CORE/user", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "core.Group", gjson.Get(body, `fields.#(name=="group").refFQN`).String())
	assert.Equal(t, "core.Tag", gjson.Get(body, `fields.#(name=="tags").refFQN`).String())
	assert.Equal(t, `["core.NoteCard","core.UserCard"]`, gjson.Get(body, "infolists").Raw)

	w = e.do(http.MethodGet, "/api/meta/core/Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetaInfolists(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/api/meta/infolists", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "#").Int())
	card := gjson.Get(body, `#(name=="UserCard")`)
	assert.Equal(t, "core.User", card.Get("entity").String())
	assert.Equal(t, "repeatable", card.Get("entries.4.kind").String())
	assert.Equal(t, "name", card.Get("entries.4.children.0.path").String())
}

func TestCreateAndGet(t *testing.T) {
	e := setup(t)

	id := e.create("/api/core/User", `{"name":"Ann","email":"ann@x.io"}`)

	w := e.do(http.MethodGet, "/api/core/User/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))
	assert.Equal(t, "active", gjson.Get(w.Body.String(), "status").String())

	w = e.do(http.MethodGet, "/api/core/User/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateErrors(t *testing.T) {
	e := setup(t)
	e.create("/api/core/User", `{"name":"Ann","email":"ann@x.io"}`)

	cases := map[string]struct {
		path, body string
		status     int
		code       string
	}{
		"invalid json":   {"/api/core/User", `{`, http.StatusBadRequest, ""},
		"unknown entity": {"/api/core/Ghost", `{}`, http.StatusNotFound, ""},
		"required":       {"/api/core/User", `{"email":"b@x.io"}`, http.StatusBadRequest, "required"},
		"enum":           {"/api/core/User", `{"name":"B","status":"gone"}`, http.StatusBadRequest, "enum_invalid"},
		"unique":         {"/api/core/User", `{"name":"B","email":"ann@x.io"}`, http.StatusConflict, "unique_violation"},
		"dangling ref":   {"/api/core/User", `{"name":"B","group":"nope"}`, http.StatusConflict, "ref_not_found"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := e.do(http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.code != "" {
				assert.Equal(t, tc.code, gjson.Get(w.Body.String(), "errors.0.code").String())
			}
		})
	}
}

func TestList(t *testing.T) {
	e := setup(t)
	for _, n := range []string{"b", "c", "a"} {
		e.create("/api/core/Tag", `{"name":"`+n+`"}`)
	}

	w := e.do(http.MethodGet, "/api/core/Tag?sort=-name&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	assert.Equal(t, `["c","b"]`, gjson.Get(w.Body.String(), "#.name").Raw)

	w = e.do(http.MethodGet, "/api/core/Tag?_sort=name&_offset=1", "")
	assert.Equal(t, `["b","c"]`, gjson.Get(w.Body.String(), "#.name").Raw)

	w = e.do(http.MethodGet, "/api/core/Tag?sort=color", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenderInfolist(t *testing.T) {
	e := setup(t)
	group := e.create("/api/core/Group", `{"title":"Ops"}`)
	vip := e.create("/api/core/Tag", `{"name":"vip"}`)
	beta := e.create("/api/core/Tag", `{"name":"beta"}`)
	user := e.create("/api/core/User", `{"name":"Ann","group":"`+group+`","tags":["`+vip+`","`+beta+`"]}`)

	w := e.do(http.MethodGet, "/api/infolists/core/UserCard/"+user, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()

	assert.Equal(t, "infolist", gjson.Get(body, "component").String())
	assert.Equal(t, "UserCard", gjson.Get(body, "name").String())
	assert.Equal(t, "Ann", gjson.Get(body, "schema.0.state").String())
	assert.Equal(t, "success", gjson.Get(body, "schema.1.color").String())
	assert.Equal(t, "Ops", gjson.Get(body, "schema.2.state").String())
	assert.Equal(t, "Group", gjson.Get(body, "schema.2.label").String())
	assert.Equal(t, "Created", gjson.Get(body, "schema.3.label").String())
	assert.Equal(t, `["vip","beta"]`, gjson.Get(body, "schema.4.items.#.0.state").Raw)
	assert.True(t, strings.HasPrefix(body, `{"component":"infolist","name":"UserCard",`))

	w = e.do(http.MethodGet, "/api/infolists/core/UserCard/"+user, "", "Accept-Language", "ar-IQ,ar;q=0.9")
	assert.Equal(t, "تاريخ الإنشاء", gjson.Get(w.Body.String(), "schema.3.label").String())

	w = e.do(http.MethodGet, "/api/infolists/core/UserCard/"+user+"?locale=fr", "")
	assert.Equal(t, "Created", gjson.Get(w.Body.String(), "schema.3.label").String())
}

func TestRenderInfolistErrors(t *testing.T) {
	e := setup(t)
	user := e.create("/api/core/User", `{"name":"Ann","note":"not a date"}`)

	w := e.do(http.MethodGet, "/api/infolists/core/Ghost/"+user, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/infolists/core/UserCard/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/infolists/core/NoteCard/"+user, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, gjson.Get(w.Body.String(), "details").String(), "note")
}

func TestLang(t *testing.T) {
	e := setup(t)

	w := e.do(http.MethodGet, "/api/lang", "")
	assert.Equal(t, `["ar","en"]`, gjson.Get(w.Body.String(), "locales").Raw)

	w = e.do(http.MethodGet, "/api/lang/en", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Created", gjson.Get(w.Body.String(), "labels.created_at").String())

	w = e.do(http.MethodGet, "/api/lang/xx", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminReload(t *testing.T) {
	e := setup(t)
	var reloaded *dsl.Model
	e.srv.OnReload = func(_ context.Context, m *dsl.Model) error {
		reloaded = m
		return nil
	}

	writeFile(t, filepath.Join(e.dir, "dsl", "core", "extra.dsl"), "module core\n\nentity Note:\n  body: string\n\ninfolist NoteView for Note:\n  body: text\n")
	w := e.do(http.MethodPost, "/api/admin/reload", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(4), gjson.Get(w.Body.String(), "entities").Int())
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "infolists").Int())
	require.NotNil(t, reloaded)

	id := e.create("/api/core/Note", `{"body":"hi"}`)
	w = e.do(http.MethodGet, "/api/infolists/core/NoteView/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminReloadRejectsLintErrors(t *testing.T) {
	e := setup(t)
	bad := filepath.Join(e.dir, "bad")
	writeFile(t, filepath.Join(bad, "x.dsl"), "module core\n\nentity A:\n  b: ref[Ghost]\n\ninfolist Card for A:\n  missing: text\n")

	w := e.do(http.MethodPost, "/api/admin/reload", `{"dsl_root":"`+filepath.ToSlash(bad)+`"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Equal(t, "ref_target_unknown", gjson.Get(body, "issues.0.code").String())
	assert.Equal(t, "field_unknown", gjson.Get(body, "infolistIssues.0.code").String())

	// модель не заменилась
	w = e.do(http.MethodGet, "/api/meta/core/User", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/admin/reload", `{"dsl_root":"`+filepath.ToSlash(filepath.Join(e.dir, "none"))+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

//go:build unit

package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kyuaar/internal/handler/api"
	"kyuaar/internal/handler/middleware"
	"kyuaar/internal/infra/memstore"
	"kyuaar/internal/pkg/artifact"
	"kyuaar/internal/pkg/clock"
	"kyuaar/internal/pkg/config"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	router *gin.Engine
	token  string
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig()
	store := memstore.NewPacketStore()
	log := memstore.NewActivityLog()
	clk := clock.NewMockClock(testNow)

	cmds := commands.NewPacketCommands(store, log, artifact.NewValidator(), clk, cfg)
	packets := queries.NewPacketQueries(store)
	activities := queries.NewActivityQueries(log)

	packetHandler := api.NewPacketHandler(cmds, packets)
	activityHandler := api.NewActivityHandler(activities)
	auth := middleware.NewAdminMiddleware(cfg)

	router := gin.New()
	group := router.Group("/api")
	group.Use(auth.RequireAdmin())
	group.POST("/packets", packetHandler.Create)
	group.GET("/packets", packetHandler.List)
	group.GET("/packets/:id", packetHandler.Get)
	group.POST("/packets/:id/artifact", packetHandler.AttachArtifact)
	group.POST("/packets/:id/sell", packetHandler.Sell)
	group.POST("/packets/:id/reset", packetHandler.Reset)
	group.DELETE("/packets/:id", packetHandler.Delete)
	group.GET("/activities", activityHandler.Recent)

	claims := middleware.AdminClaims{
		Actor: "ops@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	return &adminFixture{router: router, token: token}
}

func (f *adminFixture) do(t *testing.T, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAdminPacketRoutes(t *testing.T) {
	t.Run("rejects unauthenticated requests", func(t *testing.T) {
		f := newAdminFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/packets", nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("full operator walk", func(t *testing.T) {
		f := newAdminFixture(t)

		rec := f.do(t, http.MethodPost, "/api/packets", gin.H{"qr_count": 25})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody(t, rec)
		id, _ := created["id"].(string)
		require.NotEmpty(t, id)
		assert.Equal(t, "setup_pending", created["state"])
		assert.Contains(t, created["management_id"], "MGT-")

		rec = f.do(t, http.MethodPost, "/api/packets/"+id+"/artifact", gin.H{
			"artifact_url": "https://storage.example.com/artifacts/" + id + ".png",
			"content":      base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}),
			"content_type": "image/png",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "setup_done", decodeBody(t, rec)["state"])

		rec = f.do(t, http.MethodPost, "/api/packets/"+id+"/sell", gin.H{
			"buyer_name": "Asha", "sale_price": 500,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		sold := decodeBody(t, rec)
		assert.Equal(t, "config_pending", sold["state"])
		assert.Equal(t, "Asha", sold["buyer_name"])

		rec = f.do(t, http.MethodGet, "/api/packets", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)

		rec = f.do(t, http.MethodPost, "/api/packets/"+id+"/reset", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "setup_pending", decodeBody(t, rec)["state"])

		rec = f.do(t, http.MethodDelete, "/api/packets/"+id, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, "/api/packets/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = f.do(t, http.MethodGet, "/api/activities", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var events []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		require.NotEmpty(t, events)
		// Newest first: the delete is the last thing that happened.
		assert.Equal(t, "packet_deleted", events[0]["event_type"])
		assert.Equal(t, "ops@example.com", events[0]["actor"])
	})

	t.Run("rejects malformed create", func(t *testing.T) {
		f := newAdminFixture(t)

		rec := f.do(t, http.MethodPost, "/api/packets", gin.H{"qr_count": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/packets", gin.H{"qr_count": 101})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sell before artifact conflicts", func(t *testing.T) {
		f := newAdminFixture(t)

		rec := f.do(t, http.MethodPost, "/api/packets", gin.H{"qr_count": 10})
		require.Equal(t, http.StatusCreated, rec.Code)
		id, _ := decodeBody(t, rec)["id"].(string)

		rec = f.do(t, http.MethodPost, "/api/packets/"+id+"/sell", gin.H{"buyer_name": "Asha"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_booking/internal/adapters/auth"
	httpserver "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stack struct {
	t        *testing.T
	ts       *httptest.Server
	verifier *auth.Verifier
	settler  *app.SettlementService
	clock    *clock
}

func startStack(t *testing.T) *stack {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=hotel"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotel?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		res.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		if db, e = sql.Open("mysql", dsn); e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	clk := &clock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	d := app.DepsFrom(repo)
	d.PaymentDelay = 2 * time.Second
	d.Now = clk.Now
	d.Location = time.UTC

	v := auth.NewVerifier("e2e-secret", "hotel-e2e")
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Catalog:     app.NewCatalogService(d),
		Bookings:    app.NewBookingService(d),
		Stats:       app.NewStatsService(d),
		Identity:    app.NewIdentityService(repo, clk.Now),
		Verifier:    v,
		UnpaidAfter: 30 * time.Minute,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	return &stack{
		t: t, ts: ts, verifier: v, clock: clk,
		settler: app.NewSettlementService(repo, app.SettlementConfig{RPS: 100}, clk.Now, nil),
	}
}

func (s *stack) token(sub string, role domain.Role) string {
	s.t.Helper()
	tok, err := s.verifier.Sign(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub, Issuer: "hotel-e2e"},
		Email:            sub + "@example.com",
		Role:             string(role),
	}, time.Hour)
	if err != nil {
		s.t.Fatalf("sign: %v", err)
	}
	return tok
}

func (s *stack) call(want int, method, path, token string, body, out any) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, s.ts.URL+path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode != want {
		s.t.Fatalf("%s %s = %d, want %d: %s", method, path, res.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			s.t.Fatalf("decode %s: %v", raw, err)
		}
	}
}

// ---------- the test ----------

func TestE2E_BookAndSettle(t *testing.T) {
	s := startStack(t)
	merchant := s.token("merch-1", domain.RoleMerchant)
	customer := s.token("cust-1", domain.RoleCustomer)
	admin := s.token("admin-1", domain.RoleAdmin)

	var me domain.User
	s.call(200, "GET", "/api/auth/user", customer, nil, &me)
	if me.ID != "cust-1" || me.Role != domain.RoleCustomer {
		t.Fatalf("me = %+v", me)
	}

	var h domain.Hotel
	s.call(201, "POST", "/api/hotels", merchant, map[string]any{"name": "Sea View", "address": "1 Beach Rd", "city": "Nice"}, &h)
	if h.Status != domain.HotelPending {
		t.Fatalf("new hotel status = %s", h.Status)
	}
	var listed []domain.Hotel
	s.call(200, "GET", "/api/hotels?status=approved", "", nil, &listed)
	if len(listed) != 0 {
		t.Fatalf("pending hotel listed as approved")
	}
	s.call(200, "PUT", "/api/admin/hotels/"+h.ID+"/status", admin, map[string]string{"status": "approved"}, nil)
	s.call(409, "PUT", "/api/admin/hotels/"+h.ID+"/status", admin, map[string]string{"status": "rejected"}, nil)

	var rt domain.RoomType
	s.call(201, "POST", "/api/hotels/"+h.ID+"/room-types", merchant, map[string]any{"name": "Double", "basePrice": 120, "amenities": []string{"wifi", "tv"}}, &rt)
	if rt.MaxOccupancy != domain.DefaultMaxOccupancy || len(rt.Amenities) != 2 {
		t.Fatalf("room type = %+v", rt)
	}
	var r1, r2 domain.Room
	s.call(201, "POST", "/api/hotels/"+h.ID+"/rooms", merchant, map[string]any{"roomTypeId": rt.ID, "roomNumber": "101"}, &r1)
	s.call(201, "POST", "/api/hotels/"+h.ID+"/rooms", merchant, map[string]any{"roomTypeId": rt.ID, "roomNumber": "102"}, &r2)
	s.call(409, "POST", "/api/hotels/"+h.ID+"/rooms", merchant, map[string]any{"roomTypeId": rt.ID, "roomNumber": "101"}, nil)

	var b domain.Booking
	s.call(201, "POST", "/api/bookings", customer, map[string]any{
		"hotelId": h.ID, "roomId": r1.ID, "checkInDate": "2024-06-01", "checkOutDate": "2024-06-05",
		"guests": 2, "totalAmount": 480,
	}, &b)
	s.call(200, "PUT", "/api/bookings/"+b.ID, merchant, map[string]string{"status": "confirmed"}, nil)

	var free []domain.Room
	s.call(200, "GET", "/api/hotels/"+h.ID+"/available-rooms?checkIn=2024-06-03&checkOut=2024-06-04", "", nil, &free)
	if len(free) != 1 || free[0].ID != r2.ID {
		t.Fatalf("available = %+v", free)
	}
	s.call(409, "POST", "/api/bookings", customer, map[string]any{
		"hotelId": h.ID, "roomId": r1.ID, "checkInDate": "2024-06-04", "checkOutDate": "2024-06-06",
		"guests": 1, "totalAmount": 240,
	}, nil)

	var p domain.Payment
	s.call(201, "POST", "/api/payments", customer, map[string]any{"bookingId": b.ID, "amount": 480, "paymentMethod": "card"}, &p)

	s.clock.Advance(3 * time.Second)
	res, err := s.settler.RunOnce(context.Background())
	if err != nil || res.Completed != 1 {
		t.Fatalf("settle = %+v %v", res, err)
	}
	var pays []domain.Payment
	s.call(200, "GET", "/api/bookings/"+b.ID+"/payments", customer, nil, &pays)
	if len(pays) != 1 || pays[0].Status != domain.PaymentCompleted || pays[0].TransactionID == nil {
		t.Fatalf("payments = %+v", pays)
	}

	s.call(201, "POST", "/api/reviews", customer, map[string]any{"hotelId": h.ID, "bookingId": b.ID, "rating": 4}, nil)
	s.call(200, "GET", "/api/hotels/"+h.ID, "", nil, &h)
	if h.Rating != 4 || h.TotalRooms != 2 {
		t.Fatalf("hotel = %+v", h)
	}

	var st domain.HotelStats
	s.call(200, "GET", "/api/hotels/"+h.ID+"/stats", merchant, nil, &st)
	if st != (domain.HotelStats{TotalRooms: 2, TodayCheckIns: 1, TodayRevenue: 480}) {
		t.Fatalf("stats = %+v", st)
	}
	var ps domain.PlatformStats
	s.call(200, "GET", "/api/platform/stats", admin, nil, &ps)
	if ps.TotalMerchants != 1 || ps.TotalUsers != 1 || ps.TotalBookings != 1 || ps.TotalRevenue != 480 {
		t.Fatalf("platform = %+v", ps)
	}
	s.call(403, "GET", "/api/platform/stats", merchant, nil, nil)
}

package www

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/engine"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/livetrack"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/routing"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
)

type nullTransport struct{}

func (nullTransport) SendBatch([]notify.Message) error { return nil }
func (nullTransport) SendSingle(notify.Message) error  { return nil }

type identityProvider struct{}

func (identityProvider) OptimizeWaypoints(origin routing.Waypoint, stops []routing.Waypoint) (*routing.Plan, error) {
	order := make([]int, len(stops))
	for i := range stops {
		order[i] = i
	}
	return &routing.Plan{Order: order, TotalDistanceM: 5000, TotalDurationS: 900}, nil
}

func testServer(t *testing.T) (*httptest.Server, *http.Client, *engine.Engine) {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(engine.Config{
		AppConfig:     config.Defaults(),
		DB:            db,
		Live:          livetrack.NewManager(db, nil),
		Transport:     nullTransport{},
		RouteProvider: identityProvider{},
	})
	eng.Start()
	t.Cleanup(eng.Stop)

	router, stop := NewRouter(eng)
	t.Cleanup(stop)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}
	return srv, client, eng
}

func login(t *testing.T, srv *httptest.Server, client *http.Client) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/login", map[string][]string{
		"username": {"admin"},
		"password": {"admin"},
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestWriteEndpointsRequireAuth(t *testing.T) {
	srv, client, _ := testServer(t)

	resp := postJSON(t, client, srv.URL+"/api/jobs", map[string]any{"customer_name": "Maria"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create = %d, want 401", resp.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, client, _ := testServer(t)

	resp, err := client.PostForm(srv.URL+"/login", map[string][]string{
		"username": {"admin"},
		"password": {"wrong"},
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	srv, client, _ := testServer(t)
	login(t, srv, client)

	var vehicle store.Vehicle
	resp := postJSON(t, client, srv.URL+"/api/vehicles", map[string]any{
		"plate":       "PIM-1001",
		"driver_name": "Carlos",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create vehicle = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &vehicle)

	var job store.Job
	resp = postJSON(t, client, srv.URL+"/api/jobs", map[string]any{
		"customer_name":  "Dona Maria",
		"customer_phone": "+5586999000111",
		"address":        "Av. Itararé 55, Pedro II - PI",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create job = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &job)
	if job.PublicRef == "" || job.Status != store.StatusPending {
		t.Fatalf("bad created job: %+v", job)
	}

	// Slot it
	var moved store.Job
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/move", srv.URL, job.ID), map[string]any{
		"destination": "slot",
		"date":        "2025-06-10",
		"vehicle_id":  vehicle.ID,
		"shift":       "morning",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &moved)
	if moved.Status != store.StatusScheduled {
		t.Fatalf("status = %s", moved.Status)
	}

	// Board shows it
	resp2, err := client.Get(fmt.Sprintf("%s/api/board/slot?date=2025-06-10&vehicle_id=%d&shift=morning", srv.URL, vehicle.ID))
	if err != nil {
		t.Fatalf("board slot: %v", err)
	}
	var slotJobs []store.Job
	decodeBody(t, resp2, &slotJobs)
	if len(slotJobs) != 1 || slotJobs[0].ID != job.ID {
		t.Fatalf("slot jobs = %+v", slotJobs)
	}

	// Hold without a reason is rejected
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/move", srv.URL, job.ID), map[string]any{
		"destination": "hold",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty hold reason = %d, want 422", resp.StatusCode)
	}

	// Deliver without proof is rejected
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/delivered", srv.URL, job.ID), map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("proofless deliver = %d, want 422", resp.StatusCode)
	}

	// Deliver with proof
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/delivered", srv.URL, job.ID), map[string]any{
		"signature_ref": "sig-1",
		"photo_refs":    []string{"foto-1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deliver = %d", resp.StatusCode)
	}
	var delivered store.Job
	decodeBody(t, resp, &delivered)
	if delivered.Status != store.StatusDelivered {
		t.Fatalf("status = %s", delivered.Status)
	}

	// Moving a delivered job conflicts
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/move", srv.URL, job.ID), map[string]any{
		"destination": "triage",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("move delivered = %d, want 409", resp.StatusCode)
	}
}

func TestOptimizeAndApplyOverHTTP(t *testing.T) {
	srv, client, eng := testServer(t)
	login(t, srv, client)

	var vehicle store.Vehicle
	resp := postJSON(t, client, srv.URL+"/api/vehicles", map[string]any{"plate": "PIN-2002"})
	decodeBody(t, resp, &vehicle)

	for _, name := range []string{"Ana", "Bento", "Cícero"} {
		var job store.Job
		resp = postJSON(t, client, srv.URL+"/api/jobs", map[string]any{
			"customer_name": name,
			"address":       "Rua " + name + ", Pedro II - PI",
		})
		decodeBody(t, resp, &job)
		resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/move", srv.URL, job.ID), map[string]any{
			"destination": "slot",
			"date":        "2025-06-11",
			"vehicle_id":  vehicle.ID,
			"shift":       "afternoon",
		})
		resp.Body.Close()
	}

	var prop proposalResponse
	resp = postJSON(t, client, srv.URL+"/api/routes/optimize", map[string]any{
		"date":       "2025-06-11",
		"vehicle_id": vehicle.ID,
		"shift":      "afternoon",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &prop)
	if len(prop.JobIDs) != 3 || !prop.Changed {
		t.Fatalf("proposal = %+v", prop)
	}

	resp = postJSON(t, client, srv.URL+"/api/routes/apply", map[string]any{"job_ids": prop.JobIDs})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply = %d", resp.StatusCode)
	}
	resp.Body.Close()

	for i, id := range prop.JobIDs {
		j, err := eng.DB().GetJob(id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.RouteOrder == nil || *j.RouteOrder != i+1 {
			t.Fatalf("job %d order = %v", id, j.RouteOrder)
		}
	}
}

func TestBulkRescheduleOverHTTP(t *testing.T) {
	srv, client, eng := testServer(t)
	login(t, srv, client)

	var vehicle store.Vehicle
	resp := postJSON(t, client, srv.URL+"/api/vehicles", map[string]any{"plate": "PIO-3003"})
	decodeBody(t, resp, &vehicle)

	var job store.Job
	resp = postJSON(t, client, srv.URL+"/api/jobs", map[string]any{
		"customer_name": "Raimunda",
		"address":       "Morro do Gritador, Pedro II - PI",
	})
	decodeBody(t, resp, &job)
	resp = postJSON(t, client, fmt.Sprintf("%s/api/jobs/%d/move", srv.URL, job.ID), map[string]any{
		"destination": "slot",
		"date":        "2025-06-12",
		"vehicle_id":  vehicle.ID,
		"shift":       "morning",
	})
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/api/board/reschedule", map[string]any{"date": "2025-06-12"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reschedule = %d", resp.StatusCode)
	}
	var result map[string]int
	decodeBody(t, resp, &result)
	if result["moved"] != 1 {
		t.Fatalf("moved = %d", result["moved"])
	}

	got, err := eng.DB().GetJob(job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != store.StatusPending || got.ScheduledDate != "" {
		t.Fatalf("job still slotted: %+v", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, client, _ := testServer(t)

	resp, err := client.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	var health map[string]any
	decodeBody(t, resp, &health)
	if health["status"] != "ok" {
		t.Fatalf("health = %+v", health)
	}
}

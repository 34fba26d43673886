package mockregistry

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Docker Hub reports numeric states; Quay reports phase names.
var (
	dockerHubCodes = []int{0, 3, 10, -1}
	quayPhases     = []string{"waiting", "build-scheduled", "building", "complete", "error"}
)

// mockState tracks status and next change time for a single repository.
type mockState struct {
	statusIdx    int
	started      time.Time
	nextChangeAt time.Time
}

// Registry is an http.Handler answering both registry APIs.
type Registry struct {
	mu     sync.Mutex
	states map[string]*mockState

	minHold    time.Duration
	maxHold    time.Duration
	maxLatency time.Duration
	logger     *slog.Logger
	mux        *http.ServeMux
}

// Option configures a Registry.
type Option func(*Registry)

// WithHold sets how long each status is held before moving on.
// The hold is drawn uniformly from [lo, hi]. Defaults to 20-60 seconds.
func WithHold(lo, hi time.Duration) Option {
	return func(r *Registry) {
		if hi < lo {
			hi = lo
		}
		r.minHold, r.maxHold = lo, hi
	}
}

// WithLatency adds a random delay of up to d to every response.
func WithLatency(d time.Duration) Option {
	return func(r *Registry) {
		r.maxLatency = d
	}
}

// WithLogger sets the logger used for status changes.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Registry serving
//
//	GET /v2/repositories/{org}/{image}/buildhistory/
//	GET /api/v1/repository/{namespace}/{name}/build/
func New(opts ...Option) *Registry {
	r := &Registry{
		states:  make(map[string]*mockState),
		minHold: 20 * time.Second,
		maxHold: 60 * time.Second,
		logger:  slog.Default(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mux.HandleFunc("GET /v2/repositories/{org}/{image}/buildhistory/", r.serveDockerHub)
	r.mux.HandleFunc("GET /api/v1/repository/{namespace}/{name}/build/", r.serveQuay)
	return r
}

// ServeHTTP implements http.Handler.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Registry) serveDockerHub(w http.ResponseWriter, req *http.Request) {
	repo := req.PathValue("org") + "/" + req.PathValue("image")
	state := r.advance("dockerhub:"+repo, len(dockerHubCodes))

	// history is oldest first; the last entry is the latest build
	resp := map[string]any{
		"count": 2,
		"next":  "https://hub.docker.com/v2/repositories/" + repo + "/buildhistory/?page=2",
		"results": []map[string]any{
			{"status": 10, "created_date": state.started.Add(-time.Hour).Format(time.RFC3339Nano)},
			{"status": dockerHubCodes[state.statusIdx], "created_date": state.started.Format(time.RFC3339Nano)},
		},
	}
	r.write(w, resp)
}

func (r *Registry) serveQuay(w http.ResponseWriter, req *http.Request) {
	namespace, name := req.PathValue("namespace"), req.PathValue("name")
	state := r.advance("quay:"+namespace+"/"+name, len(quayPhases))

	// builds are newest first
	resp := map[string]any{
		"builds": []map[string]any{
			{
				"phase":      quayPhases[state.statusIdx],
				"started":    state.started.Format(time.RFC1123Z),
				"repository": map[string]string{"namespace": namespace, "name": name},
			},
			{
				"phase":      "complete",
				"started":    state.started.Add(-time.Hour).Format(time.RFC1123Z),
				"repository": map[string]string{"namespace": namespace, "name": name},
			},
		},
	}
	r.write(w, resp)
}

// advance returns a snapshot of the state for key, moving it to the next
// status when its hold has expired.
func (r *Registry) advance(key string, statusCount int) mockState {
	r.sleep()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	state, exists := r.states[key]
	if !exists {
		state = &mockState{
			started:      now,
			nextChangeAt: now.Add(r.hold()),
		}
		r.states[key] = state
		return *state
	}

	if !now.Before(state.nextChangeAt) {
		from := state.statusIdx
		state.statusIdx = (state.statusIdx + 1) % statusCount
		state.started = now
		state.nextChangeAt = now.Add(r.hold())
		r.logger.Info("status change", "repository", key, "from", from, "to", state.statusIdx)
	}
	return *state
}

func (r *Registry) hold() time.Duration {
	spread := r.maxHold - r.minHold
	if spread <= 0 {
		return r.minHold
	}
	return r.minHold + time.Duration(rand.Int63n(int64(spread)+1))
}

// sleep simulates small latency variance.
func (r *Registry) sleep() {
	if r.maxLatency <= 0 {
		return
	}
	time.Sleep(time.Duration(rand.Int63n(int64(r.maxLatency))))
}

func (r *Registry) write(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		r.logger.Error("failed to write response", "error", err)
	}
}

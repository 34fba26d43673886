package store

import (
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/buildbar"
)

func monitor(t *testing.T, url string) buildbar.Monitor {
	t.Helper()
	m, err := buildbar.NewMonitor(url, buildbar.Quay)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}
	return m
}

func status(m buildbar.Monitor, name string, c buildbar.CanonicalStatus) buildbar.BuildStatus {
	return buildbar.BuildStatus{Name: name, Status: buildbar.Known(c), Monitor: m}
}

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	// should start empty
	if len(store.GetAll()) != 0 {
		t.Errorf("GetAll() = %v items, want 0", len(store.GetAll()))
	}
}

func TestMemoryStore_FirstUpdateIsTransition(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	tr, changed := store.Update(status(m, "acme/widget", buildbar.StatusBuilding))
	if !changed {
		t.Fatal("Update() changed = false, want true")
	}
	if !tr.First {
		t.Error("Transition.First = false, want true")
	}
	if tr.Key != m.URL() || tr.Name != "acme/widget" {
		t.Errorf("Transition = %+v", tr)
	}
	if tr.To.Canonical() != buildbar.StatusBuilding {
		t.Errorf("Transition.To = %v, want building", tr.To)
	}
}

func TestMemoryStore_Transitions(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	tests := []struct {
		name        string
		status      buildbar.Status
		wantChanged bool
		wantFrom    buildbar.Status
	}{
		{"first", buildbar.Known(buildbar.StatusBuilding), true, buildbar.Status{}},
		{"same status", buildbar.Known(buildbar.StatusBuilding), false, buildbar.Status{}},
		{"completed", buildbar.Known(buildbar.StatusComplete), true, buildbar.Known(buildbar.StatusBuilding)},
		{"raw code", buildbar.StatusFromCode(7), true, buildbar.Known(buildbar.StatusComplete)},
		{"same raw code", buildbar.StatusFromCode(7), false, buildbar.Status{}},
		{"different raw code", buildbar.StatusFromCode(8), true, buildbar.StatusFromCode(7)},
	}

	for _, tt := range tests {
		tr, changed := store.Update(buildbar.BuildStatus{Name: "acme/widget", Status: tt.status, Monitor: m})
		if changed != tt.wantChanged {
			t.Fatalf("%s: changed = %v, want %v", tt.name, changed, tt.wantChanged)
		}
		if changed && tr.From != tt.wantFrom {
			t.Errorf("%s: From = %v, want %v", tt.name, tr.From, tt.wantFrom)
		}
	}
}

func TestMemoryStore_GetAllKeepsFirstSeenOrder(t *testing.T) {
	store := NewMemoryStore()
	a := monitor(t, "https://a.example.com/build/")
	b := monitor(t, "https://b.example.com/build/")
	c := monitor(t, "https://c.example.com/build/")

	store.Update(status(b, "b", buildbar.StatusComplete))
	store.Update(status(a, "a", buildbar.StatusComplete))
	store.Update(status(c, "c", buildbar.StatusComplete))
	store.Update(status(b, "b", buildbar.StatusError))

	all := store.GetAll()
	if len(all) != 3 {
		t.Fatalf("GetAll() = %v items, want 3", len(all))
	}
	for i, want := range []string{"b", "a", "c"} {
		if all[i].Name != want {
			t.Errorf("GetAll()[%d].Name = %q, want %q", i, all[i].Name, want)
		}
	}
	if all[0].Status.Canonical() != buildbar.StatusError {
		t.Errorf("GetAll()[0].Status = %v, want error", all[0].Status)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// update should send to subscriber
	go func() {
		store.Update(status(m, "acme/widget", buildbar.StatusComplete))
	}()

	select {
	case tr := <-ch:
		if tr.Name != "acme/widget" {
			t.Errorf("received Name = %v, want %v", tr.Name, "acme/widget")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive transition")
	}
}

func TestMemoryStore_NoTransitionNoNotification(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	store.Update(status(m, "acme/widget", buildbar.StatusComplete))
	ch := store.Subscribe()
	defer store.Unsubscribe(ch)

	store.Update(status(m, "acme/widget", buildbar.StatusComplete))

	select {
	case tr := <-ch:
		t.Errorf("unexpected transition %+v", tr)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	// update should fanout to all subscribers
	go func() {
		store.Update(status(m, "acme/widget", buildbar.StatusComplete))
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 transitions", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}

	// second call is a no-op
	store.Unsubscribe(ch)
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	done := make(chan bool)

	go func() {
		// alternate statuses so every update is a transition
		for i := 0; i < 2*subscriberBuffer; i++ {
			c := buildbar.StatusBuilding
			if i%2 == 1 {
				c = buildbar.StatusComplete
			}
			store.Update(status(m, "acme/widget", c))
		}
		done <- true
	}()

	select {
	case <-done:
		// expected - updates completed without blocking
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	m := monitor(t, "https://quay.io/api/v1/repository/acme/widget/build/")

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(buildbar.BuildStatus{Name: "acme/widget", Status: buildbar.StatusFromCode(j % 3), Monitor: m})
			}
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_ = store.GetAll()
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	if len(store.GetAll()) != 1 {
		t.Errorf("GetAll() = %v items, want 1", len(store.GetAll()))
	}
}

package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != Hash([]byte("hello")) {
		t.Errorf("HashFile = %s, want Hash of the contents", got)
	}
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("HashFile of a missing file should fail")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ak1 := k.ArtifactKey("img", "recipe", ArtifactKeyOpts{Format: "png"})
	ak2 := k.ArtifactKey("img", "recipe", ArtifactKeyOpts{Format: "jpeg", Quality: 90})
	ak3 := k.ArtifactKey("img", "recipe", ArtifactKeyOpts{Format: "png", Box: []float64{1, 2, 3, 4}})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:") {
		t.Errorf("ArtifactKey unexpected: %s", ak1)
	}
	if k.ArtifactKey("img", "recipe", ArtifactKeyOpts{Format: "png"}) != ak1 {
		t.Error("ArtifactKey should be deterministic")
	}

	tk1 := k.TraceKey("recipe", TraceKeyOpts{Width: 640, Height: 480})
	tk2 := k.TraceKey("recipe", TraceKeyOpts{Width: 640, Height: 481})
	if tk1 == tk2 {
		t.Error("Different TraceKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(tk1, "trace:") {
		t.Errorf("TraceKey unexpected: %s", tk1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "team:42:")

	opts := ArtifactKeyOpts{Format: "png"}
	if got, want := scoped.ArtifactKey("a", "b", opts), "team:42:"+inner.ArtifactKey("a", "b", opts); got != want {
		t.Errorf("ArtifactKey = %s, want %s", got, want)
	}
	if got := scoped.TraceKey("r", TraceKeyOpts{}); !strings.HasPrefix(got, "team:42:trace:") {
		t.Errorf("TraceKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().TraceKey("r", TraceKeyOpts{Width: 1, Height: 1})
	if got := scoped.TraceKey("r", TraceKeyOpts{Width: 1, Height: 1}); got != want {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing entry: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("{not json"), 0o644)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestRedisClassify(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	tests := []struct {
		name        string
		in          error
		transient   bool
		unavailable bool
	}{
		{"nil", nil, false, false},
		{"missing key", redis.Nil, false, false},
		{"dial failure", netErr, true, true},
		{"closed client", redis.ErrClosed, true, true},
		{"command error", errors.New("WRONGTYPE Operation against a key"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.in)
			if got := isTransient(err); got != tt.transient {
				t.Errorf("isTransient = %v, want %v", got, tt.transient)
			}
			if got := errors.Is(err, ErrUnavailable); got != tt.unavailable {
				t.Errorf("errors.Is(ErrUnavailable) = %v, want %v", got, tt.unavailable)
			}
			if !tt.transient && err != tt.in {
				t.Errorf("classify changed %v into %v", tt.in, err)
			}
		})
	}
}

func TestWithRetry(t *testing.T) {
	defer func(d time.Duration) { redisBackoff = d }(redisBackoff)
	redisBackoff = time.Millisecond

	down := transient(ErrUnavailable)
	wrongType := errors.New("WRONGTYPE")
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"recovers", 2, down, 3, nil},
		{"gives up", 10, down, redisAttempts, ErrUnavailable},
		{"command error is final", 10, wrongType, 1, wrongType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := withRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, func() error {
		calls++
		return transient(ErrUnavailable)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	defer func(d time.Duration) { redisBackoff = d }(redisBackoff)
	redisBackoff = time.Millisecond

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client, WithKeyPrefix("augment:"))
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "artifact:abc")
	if ok {
		t.Fatal("Get reported a hit from an unreachable server")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get error = %v, want ErrUnavailable", err)
	}
}

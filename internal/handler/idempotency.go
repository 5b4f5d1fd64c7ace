package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	// inProgressMarker is stored while the first request with a key is still
	// being handled.
	inProgressMarker = "__in_progress__"
)

type idempotencyEntry struct {
	Code int    `json:"code"`
	Body []byte `json:"body"`
}

// Idempotency replays the stored response for repeated mutating requests
// carrying the same Idempotency-Key. Requests without the header pass
// through; a concurrent duplicate of an in-flight request is rejected with
// 409. Redis failures fail open.
func Idempotency(rdb *redis.Client, ttl time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			redisKey := "idempotency:" + r.Method + ":" + r.URL.Path + ":" + key
			ctx := r.Context()

			claimed, err := rdb.SetNX(ctx, redisKey, inProgressMarker, ttl).Result()
			if err != nil {
				log.Printf("idempotency claim failed, passing through: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !claimed {
				stored, err := rdb.Get(ctx, redisKey).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("idempotency lookup failed, passing through: %v", err)
					next.ServeHTTP(w, r)
					return
				}
				if stored == inProgressMarker {
					http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
					return
				}

				var entry idempotencyEntry
				if err := json.Unmarshal([]byte(stored), &entry); err != nil {
					next.ServeHTTP(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(entry.Code)
				w.Write(entry.Body)
				return
			}

			rec := &bufferingRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := idempotencyEntry{Code: rec.code, Body: rec.buf.Bytes()}
			data, err := json.Marshal(entry)
			if err == nil {
				if err := rdb.Set(ctx, redisKey, data, ttl).Err(); err != nil {
					log.Printf("idempotency store failed: %v", err)
				}
			}
		})
	}
}

type bufferingRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *bufferingRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bufferingRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

package state

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// fakeConn is a minimal in-memory stand-in for conn, enough to exercise
// RedisStore's logic without a live Redis server.
type fakeConn struct {
	hashes map[string]map[string]string
	lists  map[string][]string
	strs   map[string]string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		hashes: map[string]map[string]string{},
		lists:  map[string][]string{},
		strs:   map[string]string{},
	}
}

func (f *fakeConn) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.strs[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeConn) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.strs[key] = value.(string)
	return nil
}

func (f *fakeConn) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.hashes, k)
		delete(f.lists, k)
		delete(f.strs, k)
	}
	return nil
}

func (f *fakeConn) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			n++
			continue
		}
		if _, ok := f.strs[k]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeConn) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for k := range f.strs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeConn) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	prefix := strings.TrimSuffix(match, "*")
	var out []string
	for k := range f.hashes {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, 0, nil
}

func (f *fakeConn) HSet(ctx context.Context, key string, values ...interface{}) error {
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		k := values[i].(string)
		v := values[i+1].(string)
		h[k] = v
	}
	return nil
}

func (f *fakeConn) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	h, ok := f.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (f *fakeConn) LPush(ctx context.Context, key string, values ...interface{}) error {
	for _, v := range values {
		f.lists[key] = append([]string{v.(string)}, f.lists[key]...)
	}
	return nil
}

func (f *fakeConn) LTrim(ctx context.Context, key string, start, stop int64) error {
	list := f.lists[key]
	if start < 0 || stop < start || int(start) >= len(list) {
		f.lists[key] = nil
		return nil
	}
	end := stop + 1
	if end > int64(len(list)) {
		end = int64(len(list))
	}
	f.lists[key] = list[start:end]
	return nil
}

func (f *fakeConn) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	list := f.lists[key]
	if len(list) == 0 {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	end := stop + 1
	if end > int64(len(list)) || stop < 0 {
		end = int64(len(list))
	}
	if start >= end {
		return nil, nil
	}
	out := make([]string, end-start)
	copy(out, list[start:end])
	return out, nil
}

func (f *fakeConn) LLen(ctx context.Context, key string) (int64, error) {
	return int64(len(f.lists[key])), nil
}

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxBodySize = 4 << 20 // 4MB, transcripts can be long

// date accepts YYYY-MM-DD or an RFC 3339 timestamp.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// patch is a decoded PATCH body. A missing key leaves the field unchanged;
// an explicit null clears it where clearing is allowed.
type patch map[string]json.RawMessage

func bindPatch(c *gin.Context) (patch, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var p patch
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	return p, nil
}

func (p patch) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p patch) isNull(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decode unmarshals key into dst. It reports whether a non-null value was present.
func (p patch) decode(key string, dst any) (bool, error) {
	if !p.has(key) || p.isNull(key) {
		return false, nil
	}
	if err := json.Unmarshal(p[key], dst); err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return true, nil
}

// bindJSON decodes a create body.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = io.NopCloser(io.LimitReader(c.Request.Body, maxBodySize))
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter.
func queryID(c *gin.Context, key string) (*int64, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s %q", key, v))
		return nil, false
	}
	return &id, true
}

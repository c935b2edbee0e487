// Package share implements the stateless share token. A snapshot is
// JSON encoded, lz4 compressed and base64url encoded; the token itself
// is the storage, so nothing is persisted server-side.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/gitpulse/gitpulse/internal/domain"
)

// Encode turns a snapshot into a URL-safe token without padding.
func Encode(snap domain.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode. Corrupt or truncated tokens come back as an
// error, never as a partial snapshot.
func Decode(token string) (domain.Snapshot, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode share token: %w", err)
	}

	zr := lz4.NewReader(bytes.NewReader(raw))
	payload, err := io.ReadAll(zr)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decompress share token: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode share token: %w", err)
	}
	return snap, nil
}

// Package codec turns a configuration into a short shareable token and back.
//
// A token is "<packed>.<checksum>": packed is the deflated JSON envelope
// {"v":1,"data":...} in unpadded URL-safe base64, and checksum is six base-36
// digits of an xxh3 hash of the uncompressed JSON. The checksum only catches
// copy/paste damage; it is not a signature.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/zeebo/xxh3"

	"uma-config/config"
)

// Version is the only envelope version this package reads and writes.
const Version = 1

const (
	separator      = "."
	checksumLen    = 6
	checksumModulo = 36 * 36 * 36 * 36 * 36 * 36
	maxInflated    = 4 << 20
)

var (
	ErrCorrupted          = errors.New("corrupted or incompatible code")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnsupportedVersion = errors.New("unsupported version")
)

var encoding = base64.RawURLEncoding.Strict()

type envelope[T any] struct {
	V    int `json:"v"`
	Data T   `json:"data"`
}

// Encode returns the token for c.
func Encode(c config.Config) (string, error) {
	text, err := json.Marshal(envelope[config.Config]{V: Version, Data: c})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	packed, err := pack(text)
	if err != nil {
		return "", err
	}
	return packed + separator + Checksum(text), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (config.Config, error) {
	var env envelope[*config.Config]
	if err := open(token, &env); err != nil {
		return config.Config{}, err
	}
	if env.Data == nil {
		return config.Config{}, fmt.Errorf("%w: empty payload", ErrCorrupted)
	}
	return *env.Data, nil
}

// DecodeRaw parses a token but leaves the configuration as a decoded JSON
// tree, so that partial or older payloads can be migrated by the caller.
func DecodeRaw(token string) (map[string]any, error) {
	var env envelope[map[string]any]
	if err := open(token, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrCorrupted)
	}
	return env.Data, nil
}

// Checksum renders the six-digit base-36 checksum of text.
func Checksum(text []byte) string {
	sum := strconv.FormatUint(xxh3.Hash(text)%checksumModulo, 36)
	return strings.Repeat("0", checksumLen-len(sum)) + sum
}

func open[T any](token string, env *envelope[T]) error {
	token = strings.TrimSpace(token)
	idx := strings.LastIndex(token, separator)
	if idx < 0 {
		return fmt.Errorf("%w: missing checksum", ErrCorrupted)
	}
	packed, sum := token[:idx], token[idx+1:]

	text, err := unpack(packed)
	if err != nil {
		return err
	}
	if Checksum(text) != sum {
		return ErrChecksumMismatch
	}

	var head struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(text, &head); err != nil {
		return fmt.Errorf("%w: bad envelope", ErrCorrupted)
	}
	if v, ok := version(head.V); !ok || v != Version {
		return fmt.Errorf("%w: v=%s", ErrUnsupportedVersion, versionLabel(head.V))
	}
	if err := json.Unmarshal(text, env); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return nil
}

// version reads an envelope's v field. Anything but a JSON number with an
// integral value is rejected.
func version(raw json.RawMessage) (int, bool) {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func versionLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "missing"
	}
	return string(raw)
}

func pack(text []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("create compressor: %w", err)
	}
	if _, err := w.Write(text); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	return encoding.EncodeToString(buf.Bytes()), nil
}

// unpack inflates packed and insists that packing the result again gives
// back the same string, so bits the inflater ignores cannot be altered.
func unpack(packed string) ([]byte, error) {
	if packed == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrCorrupted)
	}
	raw, err := encoding.DecodeString(packed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	text, err := io.ReadAll(io.LimitReader(r, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if len(text) == 0 || len(text) > maxInflated {
		return nil, fmt.Errorf("%w: bad payload size", ErrCorrupted)
	}
	again, err := pack(text)
	if err != nil || again != packed {
		return nil, fmt.Errorf("%w: non-canonical payload", ErrCorrupted)
	}
	return text, nil
}
